package telegram

import (
	"net/http"
	"time"
)

const (
	DefaultEndpoint         = "https://api.telegram.org"
	DefaultPollTimeout      = 60 * time.Second
	DefaultBootstrapTimeout = time.Second
	DefaultRetryDelay       = 3 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
)

type Config struct {
	Name     string `validate:"required"`
	Token    string `validate:"required"`
	Endpoint string `validate:"required,url"`
	// PollTimeout is how long the server may hold a getUpdates request open.
	PollTimeout      time.Duration `validate:"gte=0"`
	BootstrapTimeout time.Duration `validate:"gte=0"`
	RetryDelay       time.Duration `validate:"gte=0"`
	// RequestTimeout bounds every call except the long poll.
	RequestTimeout time.Duration `validate:"gte=0"`
	// SendRate caps outbound sendMessage calls per second, 0 disables it.
	SendRate   float64      `validate:"gte=0"`
	HTTPClient *http.Client `validate:"-"`
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "telegram"
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.BootstrapTimeout == 0 {
		c.BootstrapTimeout = DefaultBootstrapTimeout
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	return c
}
