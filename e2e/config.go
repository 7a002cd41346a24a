package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config points the suites at live platform accounts. Suites whose
// platform is not configured are skipped.
type Config struct {
	TelegramToken   string `envconfig:"TELEGRAM_TOKEN"`
	TelegramAPIHost string `envconfig:"TELEGRAM_API_HOST" default:"api.telegram.org"`
	// E2E_TELEGRAM_CHAT receives the outgoing probe message when set
	TelegramChat string `envconfig:"E2E_TELEGRAM_CHAT"`

	OneBotAPIURL      string `envconfig:"ONEBOT_API_URL"`
	OneBotEventURL    string `envconfig:"ONEBOT_EVENT_URL"`
	OneBotAccessToken string `envconfig:"ONEBOT_ACCESS_TOKEN"`
	OneBotSchema      string `envconfig:"ONEBOT_SCHEMA"`
	// E2E_ONEBOT_GROUP is probed for the bot account's admin status when set
	OneBotGroup string `envconfig:"E2E_ONEBOT_GROUP"`

	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
