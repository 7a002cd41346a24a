package e2e

import (
	"chat-hub/adapters/onebot"
	"chat-hub/adapters/telegram"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BasePlatformSuite struct {
	suite.Suite
	Config Config
	log    *slog.Logger
}

// SetupSuite loads the environment configuration before running tests
func (s *BasePlatformSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.log = logs.GetLoggerFromString("DEBUG")
}

// header prints a colorized banner for a test step
func (s *BasePlatformSuite) header(name string) {
	line := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		line = color.New(color.BgBlack, color.FgGreen).Render(line)
	}
	s.T().Log(line)
}

// WithTelegram connects a Telegram adapter to the configured account.
func (s *BasePlatformSuite) WithTelegram(name string, fn func(ctx context.Context, tg *telegram.Telegram)) {
	if s.Config.TelegramToken == "" {
		s.T().Skip("TELEGRAM_TOKEN not set")
	}
	s.header(name)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	tg, err := telegram.New(ctx, s.log, telegram.Config{
		Token:       s.Config.TelegramToken,
		Endpoint:    "https://" + s.Config.TelegramAPIHost,
		PollTimeout: 5 * time.Second,
	})
	s.Require().NoError(err, "Failed to reach the Telegram Bot API")
	fn(ctx, tg)
}

// WithOneBot connects a OneBot adapter to the configured implementation.
func (s *BasePlatformSuite) WithOneBot(name string, fn func(ctx context.Context, ob *onebot.OneBot)) {
	if s.Config.OneBotAPIURL == "" || s.Config.OneBotEventURL == "" || s.Config.OneBotSchema == "" {
		s.T().Skip("ONEBOT_API_URL, ONEBOT_EVENT_URL or ONEBOT_SCHEMA not set")
	}
	s.header(name)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ob, err := onebot.New(ctx, s.log, onebot.Config{
		APIURL:      s.Config.OneBotAPIURL,
		EventURL:    s.Config.OneBotEventURL,
		AccessToken: s.Config.OneBotAccessToken,
		Schema:      onebot.Schema(s.Config.OneBotSchema),
	})
	s.Require().NoError(err, "Failed to reach the OneBot API at "+s.Config.OneBotAPIURL)
	fn(ctx, ob)
}
