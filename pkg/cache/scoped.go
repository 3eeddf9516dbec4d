package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one cache without reading each other's snapshots.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	prod := NewScopedKeyer(NewDefaultKeyer(), "prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// MappingKey generates a prefixed key for a mapping table snapshot.
func (k *ScopedKeyer) MappingKey(source string) string {
	return k.prefix + k.inner.MappingKey(source)
}
