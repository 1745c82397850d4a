package crypto

import (
	"bytes"
	"io"
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjfoc/gmsm/sm2"
)

func gmsmPublic(kp *SM2KeyPair) *sm2.PublicKey {
	pub := kp.PublicKey()
	return &sm2.PublicKey{
		Curve: sm2.P256Sm2(),
		X:     new(big.Int).SetBytes(pub[:32]),
		Y:     new(big.Int).SetBytes(pub[32:]),
	}
}

func TestSM2SignVerify(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		kp, err := GenerateSM2KeyPair(rng)
		require.NoError(t, err)
		require.NoError(t, kp.Validate())

		msg := []byte("transfer 100 units")
		r, s, err := kp.Sign(msg, rng)
		require.NoError(t, err)

		assert.True(t, kp.Verify(msg, r, s))
		assert.True(t, sm2.Sm2Verify(gmsmPublic(kp), msg, SM2UserID, r, s), "gmsm must accept the signature")

		verifier, err := SM2KeyPairFromPublic(kp.PublicKey())
		require.NoError(t, err)
		assert.True(t, verifier.Verify(msg, r, s))
		assert.False(t, verifier.Verify([]byte("transfer 101 units"), r, s))
		assert.False(t, verifier.Verify(msg, new(big.Int).Add(r, big.NewInt(1)), s))
	}
}

func TestSM2VerifiesGmsmSignature(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	kp, err := GenerateSM2KeyPair(rng)
	require.NoError(t, err)

	priv := &sm2.PrivateKey{PublicKey: *gmsmPublic(kp), D: new(big.Int).SetBytes(kp.PrivateKey())}
	msg := []byte("from gmsm")
	r, s, err := sm2.Sm2Sign(priv, msg, SM2UserID, rng)
	require.NoError(t, err)
	assert.True(t, kp.Verify(msg, r, s))
}

func TestSM2ZA(t *testing.T) {
	kp, err := GenerateSM2KeyPair(rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	want, err := sm2.ZA(gmsmPublic(kp), SM2UserID)
	require.NoError(t, err)

	got, err := kp.ZA()
	require.NoError(t, err)
	assert.Equal(t, want, got[:])

	fromBytes, err := ZA(kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, got, fromBytes)
}

func TestSM2VerifyRanges(t *testing.T) {
	kp, err := GenerateSM2KeyPair(rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	e, err := kp.MessageDigest([]byte("m"))
	require.NoError(t, err)
	r, s, err := kp.Sign([]byte("m"), rand.New(rand.NewSource(6)))
	require.NoError(t, err)
	require.True(t, kp.VerifyDigest(e, r, s))

	n := sm2Params.N
	assert.False(t, kp.VerifyDigest(e, big.NewInt(0), s))
	assert.False(t, kp.VerifyDigest(e, r, big.NewInt(0)))
	assert.False(t, kp.VerifyDigest(e, new(big.Int).Add(r, n), s))
	assert.False(t, kp.VerifyDigest(e, r, new(big.Int).Add(s, n)))
	assert.False(t, kp.VerifyDigest(e, r, new(big.Int).Sub(n, r)), "r + s = n")
	assert.False(t, kp.VerifyDigest(e, nil, s))
}

func TestSM2PrivateKeyRange(t *testing.T) {
	n := sm2Params.N
	tests := []struct {
		name  string
		d     *big.Int
		valid bool
	}{
		{"one", big.NewInt(1), true},
		{"n-2", new(big.Int).Sub(n, big.NewInt(2)), true},
		{"n-1", new(big.Int).Sub(n, big.NewInt(1)), false},
		{"zero", big.NewInt(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSM2KeyPair(common.LeftPadBytes(tt.d.Bytes(), 32))
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidPrivateKey)
			}
		})
	}

	_, err := NewSM2KeyPair([]byte{1})
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestSM2PublicKeyChecks(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a, err := GenerateSM2KeyPair(rng)
	require.NoError(t, err)
	b, err := GenerateSM2KeyPair(rng)
	require.NoError(t, err)

	_, err = SM2KeyPairFromParts(a.PrivateKey(), a.PublicKey())
	require.NoError(t, err)

	_, err = SM2KeyPairFromParts(a.PrivateKey(), b.PublicKey())
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	offCurve := a.PublicKey()
	offCurve[63] ^= 1
	_, err = SM2KeyPairFromPublic(offCurve)
	assert.ErrorIs(t, err, ErrPointNotOnCurve)

	_, err = SM2KeyPairFromPublic(make([]byte, 64))
	assert.ErrorIs(t, err, ErrPointNotOnCurve)

	_, err = SM2KeyPairFromPublic(append([]byte{4}, a.PublicKey()...))
	require.NoError(t, err)

	verifyOnly, err := SM2KeyPairFromPublic(a.PublicKey())
	require.NoError(t, err)
	assert.False(t, verifyOnly.HasPrivate())
	assert.Nil(t, verifyOnly.PrivateKey())
	_, _, err = verifyOnly.Sign([]byte("x"), rng)
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestSM2SignIsDeterministicInNonces(t *testing.T) {
	kp, err := NewSM2KeyPair(common.LeftPadBytes([]byte{9}, 32))
	require.NoError(t, err)
	msg := []byte("x")

	r1, s1, err := kp.Sign(msg, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	r2, s2, err := kp.Sign(msg, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, s1, s2)

	_, _, err = kp.Sign(msg, bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestNonceBudget(t *testing.T) {
	budget := newNonceBudget(rand.New(rand.NewSource(1)))
	buf := make([]byte, sm2NonceSize)
	for i := 0; i < maxNonceAttempts; i++ {
		_, err := io.ReadFull(budget, buf)
		require.NoError(t, err)
	}
	_, err := io.ReadFull(budget, buf)
	assert.ErrorIs(t, err, ErrNonceExhausted)

	_, err = newNonceBudget(nil).Read(buf)
	assert.Error(t, err)
}
