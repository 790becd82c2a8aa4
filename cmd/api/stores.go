// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/tubely/internal/api"
	"github.com/taibuivan/tubely/internal/platform/config"
	"github.com/taibuivan/tubely/internal/platform/media"
	"github.com/taibuivan/tubely/internal/platform/migration"
	"github.com/taibuivan/tubely/internal/platform/mongodb"
	pgstore "github.com/taibuivan/tubely/internal/platform/postgres"
	"github.com/taibuivan/tubely/internal/social/subscription"
	"github.com/taibuivan/tubely/internal/social/tweet"
	"github.com/taibuivan/tubely/internal/users/auth"
)

// stores bundles the repositories of the selected backend.
type stores struct {
	users         auth.UserRepository
	subscriptions subscription.Repository
	tweets        tweet.Repository

	check api.HealthCheck
	close func()
}

// indexer is implemented by the MongoDB repositories.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// openStores connects the backend named by cfg.StoreBackend.
//
// MongoDB gets its unique indexes created, PostgreSQL gets its migrations applied.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongodb.NewClient(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.MongoDatabase)

		users := auth.NewMongoUserRepository(database)
		subscriptions := subscription.NewMongoRepository(database)
		tweets := tweet.NewMongoRepository(database)

		for _, repository := range []indexer{users, subscriptions, tweets} {
			if err := repository.EnsureIndexes(ctx); err != nil {
				_ = mongodb.Disconnect(context.Background(), client)
				return nil, err
			}
		}

		return &stores{
			users:         users,
			subscriptions: subscriptions,
			tweets:        tweets,
			check: func(ctx context.Context) error {
				return mongodb.Ping(ctx, client)
			},
			close: func() {
				log.Info("closing_mongo_client")
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := mongodb.Disconnect(disconnectCtx, client); err != nil {
					log.Error("mongo_disconnect_failed", slog.Any("error", err))
				}
			},
		}, nil

	case config.BackendPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return nil, err
		}

		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, pgstore.PoolOptions{MaxConns: cfg.DatabaseMaxConns}, log)
		if err != nil {
			return nil, err
		}

		return &stores{
			users:         auth.NewPostgresUserRepository(pool),
			subscriptions: subscription.NewPostgresRepository(pool),
			tweets:        tweet.NewPostgresRepository(pool),
			check: func(ctx context.Context) error {
				return pgstore.Ping(ctx, pool)
			},
			close: func() {
				log.Info("closing_postgres_pool")
				pool.Close()
			},
		}, nil
	}

	return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

// openMediaHost connects the object host named by cfg.MediaBackend.
func openMediaHost(ctx context.Context, cfg *config.Config, log *slog.Logger) (media.Host, error) {
	options := media.Options{
		Bucket:        cfg.MediaBucket,
		Folder:        cfg.MediaFolder,
		PublicBaseURL: cfg.PublicMediaBaseURL(),
		UploadTimeout: cfg.MediaUploadTimeout,
	}

	switch cfg.MediaBackend {
	case config.MediaMinio:
		return media.NewMinioHost(ctx, media.MinioConfig{
			Endpoint:  cfg.MediaEndpoint,
			AccessKey: cfg.MediaAccessKey,
			SecretKey: cfg.MediaSecretKey,
			Region:    cfg.MediaRegion,
			UseSSL:    cfg.MediaUseSSL,
		}, options, log)

	case config.MediaS3:
		return media.NewS3Host(ctx, media.S3Config{
			Region:    cfg.MediaRegion,
			Endpoint:  cfg.MediaEndpoint,
			AccessKey: cfg.MediaAccessKey,
			SecretKey: cfg.MediaSecretKey,
		}, options, log)
	}

	return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
}
