package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keyer derives cache keys for rendered output.
type Keyer interface {
	// RenderKey identifies the output of engine rendering descriptor in format.
	RenderKey(engine, format, descriptor string) string
}

// DefaultKeyer produces "render:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements Keyer. Each part is length-prefixed, so moving bytes
// between the engine, format and descriptor never yields the same key.
func (DefaultKeyer) RenderKey(engine, format, descriptor string) string {
	h := sha256.New()
	var n [binary.MaxVarintLen64]byte
	for _, part := range []string{engine, format, descriptor} {
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(part)))])
		h.Write([]byte(part))
	}
	return "render:" + hex.EncodeToString(h.Sum(nil))
}

// ScopedKeyer prefixes the keys of another Keyer, for backends such as a
// shared Redis server that also hold unrelated data.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes the keys of inner, or of the default keyer when
// inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(engine, format, descriptor string) string {
	return k.prefix + k.inner.RenderKey(engine, format, descriptor)
}
