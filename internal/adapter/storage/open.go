package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/log"
	"github.com/rl1809/storefront/internal/port"
)

type CartStorage interface {
	port.CartStorage
	Close() error
}

// Open connects the persistence medium selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (CartStorage, error) {
	logger := zerolog.Ctx(ctx).
		With().
		Str(log.KeyTag, "storage Open").
		Str("driver", cfg.Driver).
		Str(log.KeyStorageKey, cfg.Key).
		Logger()

	switch cfg.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Debug().Msg("connected to redis")
		return NewRedisAdapter(rdb, cfg.Redis.Prefix, cfg.Key), nil

	case "mysql":
		dsn, err := mysql.ParseDSN(cfg.MySQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		dsn.ParseTime = true
		return openSQL(ctx, logger, "mysql", dsn.FormatDSN(), cfg.Key)

	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.SQLite.Path)
		return openSQL(ctx, logger, "sqlite", dsn, cfg.Key)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openSQL(ctx context.Context, logger zerolog.Logger, driver, dsn, key string) (CartStorage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	adapter := NewSQLAdapter(db, key)
	if err := adapter.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug().Msgf("connected to %s", driver)
	return adapter, nil
}
