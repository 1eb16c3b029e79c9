package ai

import (
	"Relay/core"
	"Relay/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
)

type creditGrants struct {
	Grants *struct {
		Data []creditGrant `json:"data"`
	} `json:"grants"`
}

type creditGrant struct {
	GrantAmount float64 `json:"grant_amount"`
	UsedAmount  float64 `json:"used_amount"`
	ExpiresAt   float64 `json:"expires_at"`
}

// Billing reads the remaining credit of the backend account.
type Billing struct {
	conf   *core.Config
	log    *slog.Logger
	client *resty.Client
}

func NewBilling(conf *core.Config, log *slog.Logger) *Billing {
	client := resty.New().
		SetAuthToken(conf.OpenAIApiKey).
		SetTimeout(conf.RequestTimeout)

	return &Billing{
		conf:   conf,
		log:    log.With(sl.Module("billing")),
		client: client,
	}
}

// RemainingCredit converts the unused amount of every grant into image
// tokens and sums them. Expiration is the earliest expiry among the grants.
func (b *Billing) RemainingCredit(ctx context.Context) (*core.Credit, error) {
	var grants creditGrants
	resp, err := b.client.R().
		SetContext(ctx).
		SetResult(&grants).
		Get(b.conf.BillingURL)
	if err != nil {
		b.log.Error("requesting credit grants", sl.Err(err))
		return nil, core.NewUpstreamFailure(fmt.Errorf("requesting credit grants: %w", err))
	}
	if resp.IsError() {
		b.log.With(
			slog.Int("status", resp.StatusCode()),
			slog.String("body", resp.String()),
		).Error("credit grants rejected")
		return nil, core.NewUpstreamFailure(fmt.Errorf("credit grants: status %d", resp.StatusCode()))
	}
	if grants.Grants == nil || len(grants.Grants.Data) == 0 {
		b.log.With(slog.String("body", resp.String())).Error("credit grants missing")
		return nil, core.NewUpstreamFailure(fmt.Errorf("credit grants: no grants in response"))
	}

	var tokens int
	var expires time.Time
	for _, grant := range grants.Grants.Data {
		tokens += grantTokens(grant.GrantAmount-grant.UsedAmount, b.conf.ImagePrice)
		at := time.Unix(int64(grant.ExpiresAt), 0).UTC()
		if expires.IsZero() || at.Before(expires) {
			expires = at
		}
	}

	credit := &core.Credit{
		Tokens:    tokens,
		ExpiresAt: expires,
	}
	b.log.With(
		slog.Int("tokens", credit.Tokens),
		slog.Time("expires", credit.ExpiresAt),
	).Info("credit balance")
	return credit, nil
}

// grantTokens counts whole images affordable from remaining dollars. Both
// amounts are rounded to cents first so 0.06 at 0.02 is 3, not 2.
func grantTokens(remaining, price float64) int {
	cents := math.Round(remaining * 100)
	priceCents := math.Round(price * 100)
	if cents <= 0 || priceCents <= 0 {
		return 0
	}
	return int(math.Floor(cents / priceCents))
}
