package redis

import (
	"certificate-designer/core"
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// redisStore keeps each collection as one string value under KeyPrefix+key.
type redisStore struct {
	client goredis.UniversalClient
	prefix string
}

// NewStore connects to Redis and pings it once.
func NewStore(ctx context.Context, opts Options) (*redisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}
	return NewStoreWithClient(client, opts.KeyPrefix), nil
}

func NewStoreWithClient(client goredis.UniversalClient, prefix string) *redisStore {
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) LoadCollection(ctx context.Context, key string) ([]byte, error) {
	log := logrus.WithFields(logrus.Fields{"collection": key, "redis_key": s.prefix + key})

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			log.Debug("Collection not found")
			return nil, fmt.Errorf("collection %s: %w", key, core.ErrCollectionNotFound)
		}
		log.WithError(err).Error("Failed to load collection")
		return nil, err
	}

	log.WithField("data_length", len(data)).Debug("Collection loaded")
	return data, nil
}

func (s *redisStore) SaveCollection(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		logrus.WithField("collection", key).WithError(err).Error("Failed to save collection")
		return err
	}
	return nil
}
