// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through small hook interfaces instead
// of importing a metrics backend. The defaults are no-ops; the application
// registers real implementations once at startup (the CLI registers
// log-backed hooks for the serve command).
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolveHooks(&myResolveHooks{})
//	    observability.SetMappingHooks(&myMappingHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	link, err := resolve(ref)
//	observability.Resolve().OnResolve(ctx, ref.Name, link.Package, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from link resolution.
type ResolveHooks interface {
	// OnResolve records a single resolution. pkg is empty when err is set.
	OnResolve(ctx context.Context, name, pkg string, duration time.Duration, err error)
}

// =============================================================================
// Mapping Hooks
// =============================================================================

// MappingHooks receives events from mapping table sources.
type MappingHooks interface {
	// OnLoad records a completed table load from source.
	OnLoad(ctx context.Context, source string, entries int, duration time.Duration, err error)

	// OnPublish records a table written to source.
	OnPublish(ctx context.Context, source string, entries int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolve(context.Context, string, string, time.Duration, error) {}

// NoopMappingHooks is a no-op implementation of MappingHooks.
type NoopMappingHooks struct{}

func (NoopMappingHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopMappingHooks) OnPublish(context.Context, string, int, error)             {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolveHooks ResolveHooks = NoopResolveHooks{}
	mappingHooks MappingHooks = NoopMappingHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup before any resolution.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetMappingHooks registers custom mapping hooks.
func SetMappingHooks(h MappingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mappingHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Mapping returns the registered mapping hooks.
func Mapping() MappingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mappingHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolveHooks = NoopResolveHooks{}
	mappingHooks = NoopMappingHooks{}
	cacheHooks = NoopCacheHooks{}
}
