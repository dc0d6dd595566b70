package redis

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/banksync/internal/client/store"
	goredis "github.com/redis/go-redis/v9"
)

// Store keeps values in redis under a key prefix, letting several client
// processes on one machine share a session hint.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewStore(rdb goredis.UniversalClient, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

// Open dials addr and verifies the connection.
func Open(ctx context.Context, addr, prefix string) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewStore(rdb, prefix), nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }
