package internal

import (
	"chat-hub/adapters/cli"
	"chat-hub/adapters/onebot"
	"chat-hub/adapters/telegram"
	"chat-hub/contract"
	"context"
	"fmt"
	"log/slog"
)

// BuildAdapters connects every platform enabled in config. Remote platforms
// are asked for their own identity, so this fails fast on bad credentials.
func BuildAdapters(ctx context.Context, log *slog.Logger, config Config) ([]contract.Adapter, error) {
	var adapters []contract.Adapter

	if config.TelegramEnabled() {
		tg, err := telegram.New(ctx, log, telegram.Config{
			Token:       config.TelegramToken,
			Endpoint:    config.TelegramEndpoint(),
			PollTimeout: config.TelegramPollTimeout,
			RetryDelay:  config.TelegramRetryDelay,
			SendRate:    config.TelegramSendRate,
		})
		if err != nil {
			return nil, fmt.Errorf("telegram adapter: %w", err)
		}
		adapters = append(adapters, tg)
	}

	if config.OneBotEnabled() {
		ob, err := onebot.New(ctx, log, onebot.Config{
			APIURL:         config.OneBotAPIURL,
			EventURL:       config.OneBotEventURL,
			AccessToken:    config.OneBotAccessToken,
			Schema:         onebot.Schema(config.OneBotSchema),
			ReconnectDelay: config.OneBotReconnectDelay,
		})
		if err != nil {
			return nil, fmt.Errorf("onebot adapter: %w", err)
		}
		adapters = append(adapters, ob)
	}

	if config.CLIEnabled {
		c, err := cli.New(log, cli.Config{SelfID: config.CLISelfID, Color: config.CLIColor})
		if err != nil {
			return nil, fmt.Errorf("cli adapter: %w", err)
		}
		adapters = append(adapters, c)
	}

	return adapters, nil
}
