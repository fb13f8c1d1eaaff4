package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

// RedisStore keeps each collection as a document key plus a version key.
// Save runs under WATCH on the version key so a concurrent writer aborts the
// transaction and surfaces as ErrConflict.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis using the provided configuration.
func NewRedisStore(cfg config.StorageConfig, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &RedisStore{client: client, prefix: cfg.RedisKeyPrefix}
}

// Close closes the client.
func (s *RedisStore) Close() {
	if s != nil && s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RedisStore) docKey(collection string) string {
	return s.prefix + ":" + collection
}

func (s *RedisStore) verKey(collection string) string {
	return s.prefix + ":" + collection + ":version"
}

// Load reads the document and its version in one MGET so the pair is always
// consistent: two separate reads could pair stale data with a newer version
// and let the next Save pass the version check over another writer's update.
// Missing keys load as an empty snapshot at version 0.
func (s *RedisStore) Load(ctx context.Context, collection string) (Snapshot, error) {
	vals, err := s.client.MGet(ctx, s.docKey(collection), s.verKey(collection)).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: mget %s: %v", ErrUnavailable, collection, err)
	}

	var snap Snapshot
	if raw, ok := vals[0].(string); ok {
		snap.Data = []byte(raw)
	}
	if raw, ok := vals[1].(string); ok {
		version, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: parse %s version: %v", ErrUnavailable, collection, err)
		}
		snap.Version = version
	}
	return snap, nil
}

// Save stores the document when the version key still matches.
func (s *RedisStore) Save(ctx context.Context, collection string, data []byte, expectedVersion int64) error {
	verKey := s.verKey(collection)

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("%w: get %s version: %v", ErrUnavailable, collection, err)
		}
		if current != expectedVersion {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.docKey(collection), data, 0)
			pipe.Set(ctx, verKey, expectedVersion+1, 0)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, verKey)
	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, ErrConflict) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrUnavailable, collection, err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
