package storage

import (
	"context"
	"fmt"

	"github.com/trezcool/edumaster/core"
	inmemstore "github.com/trezcool/edumaster/storage/inmem"
	redisstore "github.com/trezcool/edumaster/storage/redis"
	sqlitestore "github.com/trezcool/edumaster/storage/sqlite"
)

// Open returns the durable storage selected by `storage.driver`.
func Open(ctx context.Context, conf *core.Config) (core.Storage, error) {
	switch conf.Storage.Driver {
	case "", "sqlite":
		store, err := sqlitestore.Open(conf.Storage.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		store, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     conf.Storage.RedisAddr,
			Password: conf.Storage.RedisPassword,
			DB:       conf.Storage.RedisDB,
			Prefix:   conf.Storage.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return inmemstore.New(), nil
	default:
		return nil, core.NewArgumentError(fmt.Sprintf("unknown storage driver %q", conf.Storage.Driver))
	}
}
