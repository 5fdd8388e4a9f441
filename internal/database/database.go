// Package database opens the store and cache clients used by the service.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/qa-platform/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// newBackOff returns an exponential policy bounded by maxElapsed and ctx
func newBackOff(ctx context.Context, maxElapsed time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed
	return backoff.WithContext(b, ctx)
}

// ping retries op until it succeeds or b gives up
func ping(b backoff.BackOff, logger *zap.Logger, target string, op func() error) error {
	notify := func(err error, wait time.Duration) {
		logger.Warn("Connection attempt failed, retrying",
			zap.String("target", target),
			zap.Error(err),
			zap.Duration("backoff", wait))
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return fmt.Errorf("failed to reach %s: %w", target, err)
	}
	logger.Info("Connected", zap.String("target", target))
	return nil
}

// OpenPostgres connects to PostgreSQL through the pgx stdlib driver
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig, maxElapsed time.Duration, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	err = ping(newBackOff(ctx, maxElapsed), logger, "postgres", func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenMongo connects to MongoDB and waits for the primary to answer
func OpenMongo(ctx context.Context, cfg config.MongoConfig, maxElapsed time.Duration, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	err = ping(newBackOff(ctx, maxElapsed), logger, "mongo", func() error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

// OpenRedis connects to Redis
func OpenRedis(ctx context.Context, cfg config.RedisConfig, maxElapsed time.Duration, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	err := ping(newBackOff(ctx, maxElapsed), logger, "redis", func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
