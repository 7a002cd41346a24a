package internal

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAdapters_CLIOnly(t *testing.T) {
	req := require.New(t)

	// Given only the console is enabled
	config := Config{CLIEnabled: true, CLISelfID: "bot"}

	// When the adapters are built
	adapters, err := BuildAdapters(context.Background(), slog.Default(), config)

	// Then a single console adapter answers to the configured id
	req.NoError(err)
	req.Len(adapters, 1)
	req.Equal("cli", adapters[0].Name())
	req.Equal("bot", adapters[0].SelfUser().ID)
}

func TestBuildAdapters_OneBotIdentityFailure(t *testing.T) {
	req := require.New(t)

	// Given a OneBot API that rejects every call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	config := Config{
		CLIEnabled:     true,
		CLISelfID:      "bot",
		OneBotAPIURL:   srv.URL,
		OneBotEventURL: "ws" + srv.URL[len("http"):] + "/event",
		OneBotSchema:   "array",
	}

	// When the adapters are built
	adapters, err := BuildAdapters(context.Background(), slog.Default(), config)

	// Then the whole build fails before any adapter is returned
	req.ErrorContains(err, "onebot adapter")
	req.Nil(adapters)
}
