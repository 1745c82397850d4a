package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestDigestVectors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(...[]byte) [32]byte
		in   string
		want string
	}{
		{"keccak empty", DigestStandard, "", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"sm3 abc", DigestNational, "abc", "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn([]byte(tt.in))
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestKeccakMatchesGoEthereum(t *testing.T) {
	for _, in := range []string{"", "add(uint256)", "transfer(address,uint256)"} {
		got := DigestStandard([]byte(in))
		assert.Equal(t, crypto.Keccak256([]byte(in)), got[:], in)
	}
}

func TestDigestConcatenates(t *testing.T) {
	for _, d := range []Digest{Keccak256, SM3} {
		assert.Equal(t, d.Sum256([]byte("hello world")), d.Sum256([]byte("hello"), []byte(" "), []byte("world")), d.Name())
	}
}

func TestStreamHasher(t *testing.T) {
	h := NewStreamHasher(SM3)
	h.Write([]byte("a"))
	h.Write([]byte("bc"))
	assert.Equal(t, DigestNational([]byte("abc")), h.Sum())

	// Sum reset the state.
	assert.Equal(t, DigestNational(), h.Sum())

	h.Write([]byte("discarded"))
	h.Reset()
	h.Write([]byte("abc"))
	assert.Equal(t, DigestNational([]byte("abc")), h.Sum())
}
