// Package bootstrap wires up process-level dependencies shared by the API
// server and the seeding tool.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/toni-krstic/pyjama-portal/internal/cache"
	"github.com/toni-krstic/pyjama-portal/internal/config"
	"github.com/toni-krstic/pyjama-portal/internal/database"
	"github.com/toni-krstic/pyjama-portal/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDevData populates an empty development database with fake users
	// and posts. Ignored outside the development environment.
	SeedDevData bool
}

// InitRuntime connects to the database and Redis and optionally seeds
// development data. The Redis client may be nil when the server is
// unreachable; callers degrade to running without a cache.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDevData && strings.EqualFold(cfg.Env, "development") {
		if err := seedIfEmpty(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed development data: %w", err)
		}
	}

	return db, r, nil
}

// seedIfEmpty fills a fresh development database with a small data set so
// the API has something to serve on first boot. A database with any users
// is left alone.
func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.Table("users").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return seed.NewSeeder(db).Seed(ctx, seed.Options{
		NumUsers: 10,
		NumPosts: 40,
	})
}
