// Package redisstore keeps a package mapping table in a Redis hash.
//
// Each hash field is a top-level symbol segment and its value the package
// path. Publishing replaces the whole hash atomically (DEL + HSET inside
// MULTI/EXEC) so that readers never observe a half-written table.
//
//	store, err := redisstore.New(redisstore.Config{Addr: "localhost:6379"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	table, err := store.Load(ctx)
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/apilink/pkg/cache"
	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/observability"
)

// DefaultKey is the hash key used when Config.Key is empty.
const DefaultKey = "apilink:mapping"

// Config configures a Store.
type Config struct {
	Addr     string        // host:port
	Password string        // optional
	DB       int           // database number
	Key      string        // hash key (default DefaultKey)
	Timeout  time.Duration // dial/read/write timeout (default 5s)
}

// Store reads and writes a mapping table in a Redis hash.
type Store struct {
	client redis.Cmdable
	closer func() error
	addr   string
	key    string

	// Backoff controls retries of transient network failures.
	Backoff cache.Backoff
}

// New creates a store connected to cfg.Addr. The connection is established
// lazily on first use.
func New(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "redis address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	s := NewWithClient(client, cfg.Key)
	s.addr = cfg.Addr
	s.closer = client.Close
	return s, nil
}

// NewWithClient creates a store on an existing client. The caller keeps
// ownership of the client; Close does not close it.
func NewWithClient(client redis.Cmdable, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		client:  client,
		closer:  func() error { return nil },
		key:     key,
		Backoff: cache.DefaultBackoff,
	}
}

// Name implements mapping.Source.
func (s *Store) Name() string {
	if s.addr == "" {
		return "redis:" + s.key
	}
	return fmt.Sprintf("redis:%s/%s", s.addr, s.key)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "ping %s", s.Name())
	}
	return nil
}

// Load implements mapping.Source. A missing hash loads as an empty table.
func (s *Store) Load(ctx context.Context) (*mapping.Table, error) {
	var fields map[string]string
	err := s.Backoff.Retry(ctx, func() error {
		var err error
		fields, err = s.client.HGetAll(ctx, s.key).Result()
		return cache.Retryable(err)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load mapping from %s", s.Name())
	}
	return mapping.New(fields)
}

// Publish implements mapping.Publisher, replacing the hash with t.
func (s *Store) Publish(ctx context.Context, t *mapping.Table) error {
	entries := t.Entries()
	args := make([]any, 0, 2*len(entries))
	for _, e := range entries {
		args = append(args, e.Segment, e.Package)
	}
	err := s.Backoff.Retry(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.key)
			if len(args) > 0 {
				pipe.HSet(ctx, s.key, args...)
			}
			return nil
		})
		return cache.Retryable(err)
	})
	if err != nil {
		err = errors.Wrap(errors.ErrCodeNetwork, err, "publish mapping to %s", s.Name())
	}
	observability.Mapping().OnPublish(ctx, s.Name(), t.Len(), err)
	return err
}

// Close closes the client if the store created it.
func (s *Store) Close() error {
	return s.closer()
}

var _ mapping.Publisher = (*Store)(nil)
