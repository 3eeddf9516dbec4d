package mapping

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apilink/pkg/cache"
	"github.com/matzehuels/apilink/pkg/observability"
)

// Source loads a mapping table.
type Source interface {
	// Name identifies the source in logs and cache keys, e.g. "file:mapping.json".
	Name() string

	// Load reads the complete table.
	Load(ctx context.Context) (*Table, error)
}

// Publisher is a Source that can also store a table, replacing its contents.
type Publisher interface {
	Source
	Publish(ctx context.Context, t *Table) error
}

// Load reads the table from src, reporting the result to the mapping hooks
// and to logger (nil uses log.Default()).
func Load(ctx context.Context, src Source, logger *log.Logger) (*Table, error) {
	if logger == nil {
		logger = log.Default()
	}
	start := time.Now()
	t, err := src.Load(ctx)
	elapsed := time.Since(start)
	observability.Mapping().OnLoad(ctx, src.Name(), t.Len(), elapsed, err)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded package mapping", "source", src.Name(), "entries", t.Len(), "duration", elapsed)
	return t, nil
}

// =============================================================================
// Static and file sources
// =============================================================================

// StaticSource serves a table that is already in memory.
type StaticSource struct {
	Table *Table
}

// Name implements Source.
func (s StaticSource) Name() string { return "static" }

// Load implements Source.
func (s StaticSource) Load(ctx context.Context) (*Table, error) {
	if s.Table == nil {
		return New(nil)
	}
	return s.Table, nil
}

// FileSource reads a table from a JSON, TOML or YAML file.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s FileSource) Name() string { return "file:" + s.Path }

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*Table, error) {
	return LoadFile(s.Path)
}

// Publish implements Publisher by rewriting the file.
func (s FileSource) Publish(ctx context.Context, t *Table) error {
	err := WriteFile(s.Path, t)
	observability.Mapping().OnPublish(ctx, s.Name(), t.Len(), err)
	return err
}

// =============================================================================
// Cached source
// =============================================================================

// CachedSource keeps a JSON snapshot of another source's table in a cache.
type CachedSource struct {
	Source Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger

	// Refresh skips the cached snapshot but still stores the fresh one.
	Refresh bool
}

// NewCachedSource wraps src. A nil cache disables snapshots; a nil keyer
// uses cache.NewDefaultKeyer.
func NewCachedSource(src Source, c cache.Cache, ttl time.Duration, logger *log.Logger) *CachedSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedSource{
		Source: src,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		TTL:    ttl,
		Logger: logger,
	}
}

// Name implements Source. The cache is transparent, so the name is the
// wrapped source's.
func (s *CachedSource) Name() string { return s.Source.Name() }

// Load returns the cached snapshot when present, otherwise loads from the
// wrapped source and stores a snapshot. Cache failures are logged and never
// fail the load.
func (s *CachedSource) Load(ctx context.Context) (*Table, error) {
	key := s.Keyer.MappingKey(s.Source.Name())

	if !s.Refresh {
		if t, ok := s.cached(ctx, key); ok {
			return t, nil
		}
	}

	t, err := s.Source.Load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := t.MarshalJSON()
	if err == nil {
		err = s.Cache.Set(ctx, key, data, s.TTL)
	}
	if err != nil {
		s.Logger.Warn("could not store mapping snapshot", "source", s.Source.Name(), "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "mapping", len(data))
	}
	return t, nil
}

func (s *CachedSource) cached(ctx context.Context, key string) (*Table, bool) {
	data, hit, err := s.Cache.Get(ctx, key)
	if err != nil {
		s.Logger.Warn("could not read mapping snapshot", "source", s.Source.Name(), "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "mapping")
		return nil, false
	}
	t, err := Decode(bytes.NewReader(data), FormatJSON)
	if err != nil {
		s.Logger.Warn("discarding corrupt mapping snapshot", "source", s.Source.Name(), "err", err)
		_ = s.Cache.Delete(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "mapping")
	s.Logger.Debug("using cached package mapping", "source", s.Source.Name(), "entries", t.Len())
	return t, true
}
