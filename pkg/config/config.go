package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		User     int64  `env:"TELEGRAM_USER"`
		BotToken string `env:"TELEGRAM_TOKEN"`
	}
	Vault struct {
		Root             string `env:"VAULT_ROOT" env-default:"./vault"`
		TemplatePath     string `env:"SCRAPBOOK_TEMPLATE" env-default:"default"`
		NoteNamePrefix   string `env:"SCRAPBOOK_NOTE_PREFIX" env-default:"Scrap Page"`
		DatePropertyName string `env:"SCRAPBOOK_DATE_PROPERTY" env-default:"date"`
		DateCreatedName  string `env:"SCRAPBOOK_DATE_CREATED_PROPERTY" env-default:"date-created"`
		PrefacePropName  string `env:"SCRAPBOOK_PREFACE_PROPERTY" env-default:"preface"`
		DecoratedDayDirs bool   `env:"SCRAPBOOK_DECORATED_DAY_DIRS" env-default:"true"`
		AutoCreateHour   int    `env:"SCRAPBOOK_AUTOCREATE_HOUR" env-default:"-1"`
		AutoCreateMinute int    `env:"SCRAPBOOK_AUTOCREATE_MINUTE" env-default:"0"`
	}
	Google struct {
		ClientID        string `env:"GOOGLE_CLIENT_ID"`
		ClientSecret    string `env:"GOOGLE_CLIENT_SECRET"`
		RedirectPort    int    `env:"GOOGLE_REDIRECT_PORT" env-default:"51894"`
		RedirectPath    string `env:"GOOGLE_REDIRECT_PATH" env-default:"/google-photos"`
		AuthURL         string `env:"GOOGLE_AUTH_URL" env-default:"https://accounts.google.com/o/oauth2/v2/auth"`
		TokenURL        string `env:"GOOGLE_TOKEN_URL" env-default:"https://oauth2.googleapis.com/token"`
		PickerBaseURL   string `env:"GOOGLE_PICKER_BASE_URL" env-default:"https://photospicker.googleapis.com"`
		DisableListener bool   `env:"OAUTH_DISABLE_LISTENER" env-default:"false"`
	}
	Download struct {
		BatchSize     int `env:"DOWNLOAD_BATCH_SIZE" env-default:"5"`
		RangeDayLimit int `env:"RANGE_DAY_LIMIT" env-default:"1000"`
		RatePerSecond int `env:"DOWNLOAD_RATE_PER_SECOND" env-default:"4"`
	}
}

// GetDSN returns the postgres connection string used by goose and the
// migration tool.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
