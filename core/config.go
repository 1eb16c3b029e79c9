package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env            string        `yaml:"env" env:"ENV" env-default:"prod"`
	TelegramApiKey string        `yaml:"telegram_api_key" env:"TG_TOKEN" env-required:"true" env-description:"telegram bot token"`
	OpenAIApiKey   string        `yaml:"openai_api_key" env:"OPENAI_API_KEY" env-required:"true" env-description:"key for accessing openai api"`
	OpenAIBaseURL  string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	BillingURL     string        `yaml:"billing_url" env:"OPENAI_BILLING_URL" env-default:"https://api.openai.com/dashboard/billing/credit_grants"`
	Model          string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4"`
	ImageModel     string        `yaml:"image_model" env-default:"dall-e-3"`
	ImageSize      string        `yaml:"image_size" env-default:"1024x1024"`
	ImagePrice     float64       `yaml:"image_price" env-default:"0.02"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"120s"`
	WebhookURL     string        `yaml:"webhook_url" env:"GCLOUD_WEBHOOK_URL" env-default:""`
	Listen         struct {
		BindIP string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
		Port   string `yaml:"port" env:"PORT" env-default:"5002"`
	} `yaml:"listen"`
}

// Load reads the config file at path; a missing file falls back to the environment.
func Load(path string) (*Config, error) {
	conf := &Config{}

	var err error
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(conf)
	} else {
		err = cleanenv.ReadConfig(path, conf)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("config: %s; %s", err, desc)
	}
	return conf, nil
}

func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		panic(err)
	}
	return conf
}

func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Listen.BindIP, c.Listen.Port)
}
