package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"local"`
	TGAPIID   int    `env:"TG_API_ID,required"`
	TGAPIHash string `env:"TG_API_HASH,required"`

	// Delivery is impossible without a bot token, so it is mandatory.
	BotToken       string `env:"BOT_TOKEN,required"`
	BotSessionPath string `env:"BOT_SESSION_PATH" envDefault:"./bot.session"`

	// The user session is optional; without it only content the bot account
	// can see is relayable.
	TGPhone       string `env:"TG_PHONE"`
	TG2FAPassword string `env:"TG_2FA_PASSWORD"`
	TGSessionPath string `env:"TG_SESSION_PATH" envDefault:"./user.session"`

	HealthPort       int     `env:"HEALTH_PORT" envDefault:"8080"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"0.5"`
	MaxDownloadBytes int64   `env:"MAX_DOWNLOAD_BYTES" envDefault:"52428800"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

// UserSessionEnabled reports whether the elevated-privilege user session is
// configured.
func (c *Config) UserSessionEnabled() bool {
	return c.TGPhone != ""
}
