package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
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

// DocumentKey generates a prefixed document key.
func (k *ScopedKeyer) DocumentKey(url string) string {
	return k.prefix + k.inner.DocumentKey(url)
}

// DOTKey generates a prefixed DOT key.
func (k *ScopedKeyer) DOTKey(docHash string, opts DOTKeyOpts) string {
	return k.prefix + k.inner.DOTKey(docHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(dotHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, format)
}
