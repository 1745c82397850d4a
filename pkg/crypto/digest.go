package crypto

import (
	"hash"

	"github.com/tjfoc/gmsm/sm3"
	"golang.org/x/crypto/sha3"
)

// Digest is a 256-bit hash function.
type Digest interface {
	// Name returns the lower-case algorithm name.
	Name() string
	// New returns a fresh hasher.
	New() hash.Hash
	// Sum256 hashes the concatenation of data.
	Sum256(data ...[]byte) [32]byte
}

type digest struct {
	name  string
	newFn func() hash.Hash
}

func (d digest) Name() string   { return d.name }
func (d digest) New() hash.Hash { return d.newFn() }

func (d digest) Sum256(data ...[]byte) [32]byte {
	h := d.newFn()
	for _, b := range data {
		h.Write(b)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

var (
	// Keccak256 is the standard-suite digest (original Keccak padding, not FIPS SHA3).
	Keccak256 Digest = digest{name: "keccak256", newFn: sha3.NewLegacyKeccak256}
	// SM3 is the national-suite digest.
	SM3 Digest = digest{name: "sm3", newFn: sm3.New}
)

// DigestStandard returns Keccak-256(data).
func DigestStandard(data ...[]byte) [32]byte {
	return Keccak256.Sum256(data...)
}

// DigestNational returns SM3(data).
func DigestNational(data ...[]byte) [32]byte {
	return SM3.Sum256(data...)
}

// StreamHasher accumulates input for one digest at a time.
//
// Sum returns the digest of everything written since the last reset and
// resets the hasher. A StreamHasher must not be shared between goroutines.
type StreamHasher struct {
	h hash.Hash
}

// NewStreamHasher returns a StreamHasher for d.
func NewStreamHasher(d Digest) *StreamHasher {
	return &StreamHasher{h: d.New()}
}

// Write implements io.Writer. It never fails.
func (s *StreamHasher) Write(p []byte) (int, error) {
	return s.h.Write(p)
}

// Sum returns the digest and resets the hasher.
func (s *StreamHasher) Sum() [32]byte {
	var out [32]byte
	s.h.Sum(out[:0])
	s.h.Reset()
	return out
}

// Reset discards any buffered input.
func (s *StreamHasher) Reset() {
	s.h.Reset()
}
