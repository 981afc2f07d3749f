package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/Spok95/graindesk/internal/accounting"
	"github.com/Spok95/graindesk/internal/fetch"
)

// Хранилища справочников.
const (
	StoragePostgres = "postgres"
	StorageRemote   = "remote"
	StorageMemory   = "memory"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
		// SecureCookies — cookie только по HTTPS.
		SecureCookies bool `mapstructure:"secure_cookies"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Storage struct {
		Driver string
		// RemoteURL и RemoteToken — для Data API.
		RemoteURL   string        `mapstructure:"remote_url"`
		RemoteToken string        `mapstructure:"remote_token"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"storage"`

	Session struct {
		Secret string
		TTL    time.Duration `mapstructure:"ttl"`
		// AdminUser/AdminPassword — администратор, создаваемый при старте (если заданы).
		AdminUser     string `mapstructure:"admin_user"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"session"`

	Accounting accounting.Config `mapstructure:"accounting"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Fetch struct {
		StaleAfter time.Duration `mapstructure:"stale_after"`
		MaxRetries uint64        `mapstructure:"max_retries"`
		Backoff    time.Duration `mapstructure:"backoff"`
	} `mapstructure:"fetch"`
}

// FetchOptions — настройки кэша чтений поверх значений по умолчанию.
func (c Config) FetchOptions() fetch.Options {
	o := fetch.DefaultOptions()
	if c.Fetch.StaleAfter > 0 {
		o.StaleAfter = c.Fetch.StaleAfter
	}
	if c.Fetch.MaxRetries > 0 {
		o.MaxRetries = c.Fetch.MaxRetries
	}
	if c.Fetch.Backoff > 0 {
		o.Backoff = c.Fetch.Backoff
	}
	return o
}

// Load читает YAML, затем .env (если есть) и переменные APP_* поверх.
// Ключи Xero можно задать и как XERO_CLIENT_ID и т.п.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "Australia/Sydney")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", StoragePostgres)
	v.SetDefault("storage.timeout", 15*time.Second)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("metrics.enabled", true)
	for _, k := range []string{"client_id", "client_secret", "redirect_uri", "scopes"} {
		_ = v.BindEnv("accounting."+k, "APP_ACCOUNTING_"+strings.ToUpper(k), "XERO_"+strings.ToUpper(k))
	}
	// без BindEnv AutomaticEnv не видит ключи, которых нет в файле
	for _, k := range []string{
		"postgres.dsn", "storage.remote_url", "storage.remote_token",
		"session.secret", "session.admin_user", "session.admin_password",
		"telegram.token", "telegram.admin_chat_id", "http.secure_cookies",
	} {
		_ = v.BindEnv(k)
	}

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required for postgres storage")
		}
	case StorageRemote:
		if c.Storage.RemoteURL == "" {
			return errors.New("config: storage.remote_url is required for remote storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Session.Secret == "" {
		return errors.New("config: session.secret is required")
	}
	return nil
}
