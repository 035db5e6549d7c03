package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USERNAME" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_DATABASE" envDefault:"crowdfund"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// BasePath is where db/schema.sql lives. Empty means the working directory.
	BasePath     string `env:"APP_BASE_PATH"`
	EnsureSchema bool   `env:"ENSURE_SCHEMA" envDefault:"true"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"crowdfund"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"crowdfund_session"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	TelegramToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChat     string `env:"TELEGRAM_CHAT_ID"`
	TelegramThreadID int    `env:"TELEGRAM_CHAT_THREAD_ID"`

	HTTPPort    string   `env:"HTTP_PORT" envDefault:"3000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	StatsCron   string   `env:"STATS_CRON" envDefault:"*/5 * * * *"`

	DisplayCalendar    string `env:"DISPLAY_CALENDAR" envDefault:"gregorian"`
	HideErrorDetails   bool   `env:"HIDE_ERROR_DETAILS" envDefault:"false"`
	OwnerOnlyLifecycle bool   `env:"OWNER_ONLY_LIFECYCLE" envDefault:"false"`
	DebugPprof         bool   `env:"DEBUG_PPROF" envDefault:"false"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionSecret == "" {
		return cfg, errors.New("missing SESSION_SECRET")
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "" {
			return cfg, errors.New("missing database configuration")
		}
	case StoreMongo:
		if cfg.MongoURI == "" || cfg.MongoDatabase == "" {
			return cfg, errors.New("missing MONGO_URI or MONGO_DATABASE")
		}
	case StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if (cfg.TelegramToken == "") != (cfg.TelegramChat == "") {
		return cfg, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// TelegramEnabled reports whether project alerts should be sent.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChat != ""
}

func (c Config) TelegramThread() *int {
	if c.TelegramThreadID == 0 {
		return nil
	}
	id := c.TelegramThreadID
	return &id
}
