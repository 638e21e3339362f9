package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Telegram group monitoring
	BotToken         string `env:"BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramUserName string `env:"TELEGRAM_USERNAME"`

	// Reddit weekly-thread feed
	RedditFeedURL      string        `env:"REDDIT_FEED_URL"`
	RedditPollInterval time.Duration `env:"REDDIT_POLL_INTERVAL" envDefault:"5m"`
	RedditFetchRPS     float64       `env:"REDDIT_FETCH_RPS" envDefault:"0.5"`

	// LLM parser (optional; heuristics are always the fallback)
	LLMAPIKey string `env:"LLM_API_KEY"`
	LLMModel  string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	// Estimation core
	ClubTimezone       string        `env:"CLUB_TIMEZONE" envDefault:"Europe/Berlin"`
	MarkerCacheTTL     time.Duration `env:"MARKER_CACHE_TTL" envDefault:"300s"`
	AggregationWindow  time.Duration `env:"AGGREGATION_WINDOW" envDefault:"30m"`
	StatusTickInterval time.Duration `env:"STATUS_TICK_INTERVAL" envDefault:"1m"`

	// Distance-to-time policy v1: one canonical rate plus the qualitative
	// modifier defaults. Heuristic tunables, not validated invariants.
	DistanceRateMinPerMeter float64 `env:"DISTANCE_RATE_MIN_PER_METER" envDefault:"0.3"`
	ModifierPastMeters      int     `env:"MODIFIER_PAST_METERS" envDefault:"20"`
	ModifierBeforeMeters    int     `env:"MODIFIER_BEFORE_METERS" envDefault:"-15"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
