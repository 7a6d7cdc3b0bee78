package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"hoopla/pkg/indexer"
	"hoopla/pkg/logger"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

// RedisStore keeps the artifacts as string keys under a prefix. Saves run in
// one MULTI/EXEC transaction and loads read all keys with one MGET, so a load
// never observes half of a save.
type RedisStore struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
	log     *slog.Logger
}

// NewRedisStore creates a client and verifies the connection with a PING.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Prefix == "" {
		opts.Prefix = "hoopla"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		rdb:     rdb,
		prefix:  opts.Prefix,
		timeout: opts.Timeout,
		log:     logger.WithComponent("store").With("backend", "redis", "prefix", opts.Prefix),
	}, nil
}

func (s *RedisStore) Key(artifact string) string {
	return s.prefix + ":" + artifact
}

func (s *RedisStore) Save(snap *indexer.Snapshot) error {
	artifacts, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, a := range artifacts {
			pipe.Set(ctx, s.Key(a.Name), a.Data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}

	s.log.Info("snapshot saved", "build_id", snap.BuildID)
	return nil
}

func (s *RedisStore) Load() (*indexer.Snapshot, error) {
	keys := make([]string, 0, len(Artifacts))
	for _, name := range Artifacts {
		keys = append(keys, s.Key(name))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	vals, mgetErr := s.rdb.MGet(ctx, keys...).Result()

	snap, manifest, err := DecodeSnapshot(func(name string) ([]byte, error) {
		if mgetErr != nil {
			return nil, mgetErr
		}
		for i, n := range Artifacts {
			if n != name {
				continue
			}
			v, ok := vals[i].(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, keys[i])
			}
			return []byte(v), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	})
	if err != nil {
		s.log.Debug("snapshot load failed", "err", err)
		return nil, err
	}

	s.log.Debug("snapshot loaded", "build_id", manifest.BuildID, "docs", manifest.Docs)
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
