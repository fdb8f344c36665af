package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

// RedisConfig is the `storage: { type: Redis, ... }` shape from the YAML
// config.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// Redis is a Store backed by a Redis key-value server. Ciphertext blobs are
// stored as plain strings; Read/Write still speak in io.Reader/io.ReadCloser
// so upstream code never special-cases this driver against S3.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis store: addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	return &Redis{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *Redis) fullKey(key string) string {
	return s.prefix + key
}

func (s *Redis) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	val, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &FetchError{Key: key, Err: ErrNotFound}
		}
		return nil, &FetchError{Key: key, Err: err}
	}
	return io.NopCloser(bytes.NewReader(val)), nil
}

func (s *Redis) Write(ctx context.Context, key string, r io.Reader) error {
	// SET takes a value, not a stream; buffer the reader before issuing it.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return &PutError{Key: key, Err: fmt.Errorf("buffering upload: %w", err)}
	}
	if err := s.client.Set(ctx, s.fullKey(key), buf.Bytes(), 0).Err(); err != nil {
		return &PutError{Key: key, Err: err}
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *Redis) Close() error {
	return s.client.Close()
}
