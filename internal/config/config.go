package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/rl1809/storefront/internal/log"
)

const envPrefix = "STOREFRONT"

type Application struct {
	Name string `mapstructure:"name" json:"name"`
	Env  string `mapstructure:"env"  json:"env"`
}

type Log struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file"  json:"file"`
}

type API struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  json:"timeout"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"     json:"addr"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Prefix   string `mapstructure:"prefix"   json:"prefix"`
}

type MySQL struct {
	DSN string `mapstructure:"dsn" json:"-"`
}

type SQLite struct {
	Path string `mapstructure:"path" json:"path"`
}

type Storage struct {
	Driver string `mapstructure:"driver" json:"driver"`
	Key    string `mapstructure:"key"    json:"key"`
	Redis  Redis  `mapstructure:"redis"  json:"redis"`
	MySQL  MySQL  `mapstructure:"mysql"  json:"mysql"`
	SQLite SQLite `mapstructure:"sqlite" json:"sqlite"`
}

type Cart struct {
	DefaultCurrency string `mapstructure:"default_currency" json:"default_currency"`
}

type Checkout struct {
	TaxRate float64 `mapstructure:"tax_rate" json:"tax_rate"`
}

type Server struct {
	Host            string        `mapstructure:"host"             json:"host"`
	Port            int           `mapstructure:"port"             json:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
}

type Otel struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
}

type Config struct {
	Application Application `mapstructure:"application" json:"application"`
	Log         Log         `mapstructure:"log"         json:"log"`
	API         API         `mapstructure:"api"         json:"api"`
	Storage     Storage     `mapstructure:"storage"     json:"storage"`
	Cart        Cart        `mapstructure:"cart"        json:"cart"`
	Checkout    Checkout    `mapstructure:"checkout"    json:"checkout"`
	Server      Server      `mapstructure:"server"      json:"server"`
	Otel        Otel        `mapstructure:"otel"        json:"otel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.name", "storefront")
	v.SetDefault("application.env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.key", "cart")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.database", 0)
	v.SetDefault("storage.redis.prefix", "storefront:")
	v.SetDefault("storage.mysql.dsn", "root:root@tcp(localhost:3306)/storefront?parseTime=true")
	v.SetDefault("storage.sqlite.path", "storefront.db")
	v.SetDefault("cart.default_currency", "USD")
	v.SetDefault("checkout.tax_rate", 0.1)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("otel.endpoint", "")
}

// Load reads configuration from path, or from ./env/storefront.yaml when path
// is empty. A missing default file is not an error; defaults and STOREFRONT_*
// environment variables still apply.
func Load(c context.Context, path string) (Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config Load").
		Str(log.KeyProcess, "loading config").
		Logger()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath("./env")
	}

	logger.Debug().Msg("reading config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		logger.Debug().Msg("no config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	logger.Debug().Any(log.KeyConfig, cfg).Msg("loaded config")
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case "redis", "mysql", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("storage key must not be empty")
	}
	if c.API.BaseURL == "" {
		return errors.New("api base url must not be empty")
	}
	if c.Checkout.TaxRate < 0 {
		return fmt.Errorf("tax rate must not be negative, got %v", c.Checkout.TaxRate)
	}
	return nil
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
