package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

// Config is the process configuration read from the environment.
// Each platform is enabled by setting its connection keys.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gte=0"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=0s" validate:"gte=0"`
	StatusInterval  time.Duration `env:"STATUS_INTERVAL,default=1m" validate:"gte=0"`

	CLIEnabled bool   `env:"CLI_ENABLED,default=false"`
	CLISelfID  string `env:"CLI_SELF_ID,default=-"`
	CLIColor   bool   `env:"CLI_COLOR,default=true"`

	TelegramToken       string        `env:"TELEGRAM_TOKEN"`
	TelegramAPIHost     string        `env:"TELEGRAM_API_HOST,default=api.telegram.org" validate:"required,hostname_port|hostname"`
	TelegramPollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT,default=60s" validate:"gte=0"`
	TelegramRetryDelay  time.Duration `env:"TELEGRAM_RETRY_DELAY,default=3s" validate:"gte=0"`
	TelegramSendRate    float64       `env:"TELEGRAM_SEND_RATE,default=0" validate:"gte=0"`

	OneBotAPIURL         string        `env:"ONEBOT_API_URL" validate:"omitempty,url"`
	OneBotEventURL       string        `env:"ONEBOT_EVENT_URL" validate:"required_with=OneBotAPIURL,omitempty,url"`
	OneBotAccessToken    string        `env:"ONEBOT_ACCESS_TOKEN"`
	OneBotSchema         string        `env:"ONEBOT_SCHEMA" validate:"required_with=OneBotAPIURL,omitempty,oneof=array string"`
	OneBotReconnectDelay time.Duration `env:"ONEBOT_RECONNECT_DELAY,default=3s" validate:"gte=0"`
}

func (c Config) TelegramEnabled() bool { return c.TelegramToken != "" }

func (c Config) OneBotEnabled() bool { return c.OneBotAPIURL != "" }

// TelegramEndpoint is the Bot API base the adapter appends /bot<token>/ to.
func (c Config) TelegramEndpoint() string { return "https://" + c.TelegramAPIHost }

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if !config.CLIEnabled && !config.TelegramEnabled() && !config.OneBotEnabled() {
		return Config{}, fmt.Errorf("no platform configured: set CLI_ENABLED, TELEGRAM_TOKEN or ONEBOT_API_URL")
	}
	return config, nil
}
