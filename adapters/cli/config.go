package cli

import (
	"io"
	"os"
)

// DefaultSelfID is the bot id typed after '@' to mention the bot.
const DefaultSelfID = "-"

type Config struct {
	Name   string `validate:"required"`
	SelfID string `validate:"required"`
	// Color highlights the output fences.
	Color  bool
	Input  io.Reader `validate:"-"`
	Output io.Writer `validate:"-"`
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "cli"
	}
	if c.SelfID == "" {
		c.SelfID = DefaultSelfID
	}
	if c.Input == nil {
		c.Input = os.Stdin
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	return c
}
