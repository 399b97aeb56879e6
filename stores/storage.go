package stores

import (
	"certificate-designer/config"
	"certificate-designer/core"
	"certificate-designer/stores/aws"
	"certificate-designer/stores/filesystem"
	"certificate-designer/stores/memory"
	"certificate-designer/stores/postgres"
	"certificate-designer/stores/redis"
	"certificate-designer/stores/sqlite"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// GetStore builds the collection store selected by cfg.Type.
func GetStore(ctx context.Context, cfg config.Storage) (core.CollectionStore, error) {
	var (
		store core.CollectionStore
		err   error
	)

	storageField := logrus.Fields{
		"storageType": cfg.Type,
	}

	switch cfg.Type {
	case "filesystem":
		storageField["basePath"] = cfg.LocalPath
		store, err = filesystem.NewStore(cfg.LocalPath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store, err = sqlite.NewStore(cfg.DataSourceName)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.S3Bucket
		store, err = aws.NewStore(ctx, cfg.S3Bucket)
	case "redis":
		storageField["redisAddr"] = cfg.RedisAddr
		store, err = redis.NewStore(ctx, redis.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN environment variable must be set for postgres storage type")
		}
		store, err = postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
