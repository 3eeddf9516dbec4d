// Package mongostore keeps a package mapping table in a MongoDB collection.
//
// Each document holds one pair:
//
//	{"segment": "classy", "package": "classy.widgets"}
//
// A unique index on segment is created on first publish. Publishing deletes
// the previous documents and inserts the new ones; readers that load during a
// publish may see an empty or partial table, so publish during deploys only.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/apilink/pkg/buildinfo"
	"github.com/matzehuels/apilink/pkg/cache"
	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/mapping"
	"github.com/matzehuels/apilink/pkg/observability"
)

// Defaults used when Config fields are empty.
const (
	DefaultDatabase   = "apilink"
	DefaultCollection = "package_mapping"
)

// Config configures a Store.
type Config struct {
	URI        string        // mongodb:// or mongodb+srv:// connection string
	Database   string        // default DefaultDatabase
	Collection string        // default DefaultCollection
	Timeout    time.Duration // server selection timeout (default 10s)
}

// document is the stored form of a mapping entry.
type document struct {
	Segment string `bson:"segment"`
	Package string `bson:"package"`
}

// Store reads and writes a mapping table in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection

	// Backoff controls retries of transient network failures.
	Backoff cache.Backoff
}

// New connects to cfg.URI. The driver connects lazily; the first operation
// fails if the server cannot be selected within cfg.Timeout.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(buildinfo.UserAgent()).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongo")
	}
	return &Store{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		Backoff: cache.DefaultBackoff,
	}, nil
}

// Name implements mapping.Source.
func (s *Store) Name() string {
	return fmt.Sprintf("mongo:%s.%s", s.coll.Database().Name(), s.coll.Name())
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "ping %s", s.Name())
	}
	return nil
}

// Load implements mapping.Source.
func (s *Store) Load(ctx context.Context) (*mapping.Table, error) {
	var docs []document
	err := s.Backoff.Retry(ctx, func() error {
		cur, err := s.coll.Find(ctx, bson.D{})
		if err != nil {
			return cache.Retryable(err)
		}
		docs = docs[:0]
		return cache.Retryable(cur.All(ctx, &docs))
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load mapping from %s", s.Name())
	}

	entries := make([]mapping.Entry, len(docs))
	for i, d := range docs {
		entries[i] = mapping.Entry{Segment: d.Segment, Package: d.Package}
	}
	return mapping.FromEntries(entries)
}

// Publish implements mapping.Publisher, replacing all documents with t.
// Transient failures restart the whole replace.
func (s *Store) Publish(ctx context.Context, t *mapping.Table) error {
	err := s.Backoff.Retry(ctx, func() error {
		return cache.Retryable(s.publish(ctx, t))
	})
	observability.Mapping().OnPublish(ctx, s.Name(), t.Len(), err)
	return err
}

func (s *Store) publish(ctx context.Context, t *mapping.Table) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "segment", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.coll.Indexes().CreateOne(ctx, index); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "create index on %s", s.Name())
	}

	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "clear %s", s.Name())
	}

	entries := t.Entries()
	if len(entries) == 0 {
		return nil
	}
	docs := make([]any, len(entries))
	for i, e := range entries {
		docs[i] = document{Segment: e.Segment, Package: e.Package}
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "insert into %s", s.Name())
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ mapping.Publisher = (*Store)(nil)
