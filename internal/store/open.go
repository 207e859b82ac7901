package store

import (
	"context"
	"fmt"

	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/charmbracelet/log"
)

// Open builds the store named by the [storage] section.
func Open(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir, logger)
	case "redis":
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Logger:   logger,
		})
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
