package onebot

import (
	"net/http"
	"time"
)

// Schema selects how message bodies travel on the wire. Both ends must agree,
// so there is no default.
type Schema string

const (
	// SchemaArray carries messages as a typed segment list.
	SchemaArray Schema = "array"
	// SchemaString carries messages as one CQ-coded text field.
	SchemaString Schema = "string"
)

const DefaultReconnectDelay = 3 * time.Second

type Config struct {
	Name string `validate:"required"`
	// APIURL is the HTTP RPC base, e.g. http://127.0.0.1:5700/
	APIURL string `validate:"required,url"`
	// EventURL is the WebSocket event stream, e.g. ws://127.0.0.1:6700/event
	EventURL       string        `validate:"required,url"`
	AccessToken    string        `validate:"omitempty"`
	Schema         Schema        `validate:"required,oneof=array string"`
	ReconnectDelay time.Duration `validate:"gte=0"`
	HTTPClient     *http.Client  `validate:"-"`
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "onebot"
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}
