package cache

// Keyer generates cache keys.
type Keyer interface {
	// ArrangeKey returns the key for an arrangement of boxes, given the hash
	// of the request and the engine parameters.
	ArrangeKey(requestHash string, minSpace float64, maxPasses int) string
}

// DefaultKeyer produces keys of the form "<kind>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArrangeKey generates "arrange:<sha256>" over the request hash and engine
// parameters.
func (DefaultKeyer) ArrangeKey(requestHash string, minSpace float64, maxPasses int) string {
	return hashKey("arrange", requestHash, minSpace, maxPasses)
}

// ScopedKeyer wraps a Keyer with a prefix, so that several worktime
// servers can share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "home:")
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

// ArrangeKey generates a prefixed arrangement key.
func (k *ScopedKeyer) ArrangeKey(requestHash string, minSpace float64, maxPasses int) string {
	return k.prefix + k.inner.ArrangeKey(requestHash, minSpace, maxPasses)
}
