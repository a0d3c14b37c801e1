package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. when
// one Redis instance backs several deployments of the solve service.
//
// Example usage:
//
//	// Per-project keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:riverside:")
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

// SolveKey generates a prefixed key for solved-layout caching.
func (k *ScopedKeyer) SolveKey(inputHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(inputHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(solutionHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(solutionHash, format)
}
