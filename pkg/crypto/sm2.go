package crypto

import (
	"crypto/elliptic"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tjfoc/gmsm/sm2"
)

// SM2UserID is the signer identity folded into ZA.
var SM2UserID = []byte("1234567812345678")

var (
	sm2Curve  elliptic.Curve = sm2.P256Sm2()
	sm2Params                = sm2Curve.Params()
)

// SM2KeyPair is an SM2 public key with an optional private scalar.
type SM2KeyPair struct {
	d    *big.Int // nil for a verify-only key
	x, y *big.Int
}

// NewSM2KeyPair builds a key pair from a 32-byte private scalar.
// The scalar must be in [1, n-2].
func NewSM2KeyPair(priv []byte) (*SM2KeyPair, error) {
	d, err := sm2Scalar(priv)
	if err != nil {
		return nil, err
	}
	x, y := sm2Curve.ScalarBaseMult(common.LeftPadBytes(d.Bytes(), 32))
	return &SM2KeyPair{d: d, x: x, y: y}, nil
}

// SM2KeyPairFromPublic builds a verify-only key from a 64-byte X || Y
// public key (a 65-byte 0x04-prefixed key is also accepted).
func SM2KeyPairFromPublic(pub []byte) (*SM2KeyPair, error) {
	x, y, err := sm2Point(pub)
	if err != nil {
		return nil, err
	}
	return &SM2KeyPair{x: x, y: y}, nil
}

// SM2KeyPairFromParts builds a key pair from both halves and checks that
// pub == G*priv.
func SM2KeyPairFromParts(priv, pub []byte) (*SM2KeyPair, error) {
	kp, err := NewSM2KeyPair(priv)
	if err != nil {
		return nil, err
	}
	x, y, err := sm2Point(pub)
	if err != nil {
		return nil, err
	}
	if x.Cmp(kp.x) != 0 || y.Cmp(kp.y) != 0 {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "public key does not match private key")
	}
	return kp, nil
}

// GenerateSM2KeyPair draws a key pair from rand, redrawing keys that fall
// outside [1, n-2].
func GenerateSM2KeyPair(rand io.Reader) (*SM2KeyPair, error) {
	budget := newNonceBudget(rand)
	for i := 0; i < maxNonceAttempts; i++ {
		priv, err := sm2.GenerateKey(budget)
		if err != nil {
			return nil, errors.Wrap(err, "generate sm2 key")
		}
		if kp, err := NewSM2KeyPair(common.LeftPadBytes(priv.D.Bytes(), 32)); err == nil {
			return kp, nil
		}
	}
	return nil, ErrNonceExhausted
}

func sm2Scalar(priv []byte) (*big.Int, error) {
	if len(priv) != 32 {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "must be 32 bytes, got %d", len(priv))
	}
	d := new(big.Int).SetBytes(priv)
	upper := new(big.Int).Sub(sm2Params.N, big.NewInt(2))
	if d.Sign() <= 0 || d.Cmp(upper) > 0 {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "scalar out of range")
	}
	return d, nil
}

func sm2Point(pub []byte) (*big.Int, *big.Int, error) {
	if len(pub) == 65 && pub[0] == 0x04 {
		pub = pub[1:]
	}
	if len(pub) != PublicKeyLen {
		return nil, nil, errors.Wrapf(ErrPointNotOnCurve, "unexpected public key length %d", len(pub))
	}
	x := new(big.Int).SetBytes(pub[:32])
	y := new(big.Int).SetBytes(pub[32:])
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, nil, errors.Wrap(ErrPointNotOnCurve, "point at infinity")
	}
	if !sm2Curve.IsOnCurve(x, y) {
		return nil, nil, ErrPointNotOnCurve
	}
	return x, y, nil
}

// HasPrivate reports whether the key pair can sign.
func (kp *SM2KeyPair) HasPrivate() bool { return kp.d != nil }

// PublicKey returns the 64-byte X || Y public key.
func (kp *SM2KeyPair) PublicKey() []byte {
	out := make([]byte, PublicKeyLen)
	kp.x.FillBytes(out[:32])
	kp.y.FillBytes(out[32:])
	return out
}

// PrivateKey returns the 32-byte private scalar, or nil for a verify-only key.
func (kp *SM2KeyPair) PrivateKey() []byte {
	if kp.d == nil {
		return nil
	}
	return common.LeftPadBytes(kp.d.Bytes(), 32)
}

// Validate re-checks the key pair: the point is on the curve, the scalar
// is in range and the point equals G*d.
func (kp *SM2KeyPair) Validate() error {
	if _, _, err := sm2Point(kp.PublicKey()); err != nil {
		return err
	}
	if kp.d == nil {
		return nil
	}
	_, err := SM2KeyPairFromParts(kp.PrivateKey(), kp.PublicKey())
	return err
}

func (kp *SM2KeyPair) gmsmPublic() *sm2.PublicKey {
	return &sm2.PublicKey{Curve: sm2Curve, X: kp.x, Y: kp.y}
}

func (kp *SM2KeyPair) gmsmPrivate() *sm2.PrivateKey {
	return &sm2.PrivateKey{PublicKey: *kp.gmsmPublic(), D: kp.d}
}

// ZA returns the identity digest
//
//	SM3(ENTL || ID || a || b || Gx || Gy || Px || Py)
//
// with ENTL the 16-bit bit length of SM2UserID.
func (kp *SM2KeyPair) ZA() ([32]byte, error) {
	var out [32]byte
	za, err := sm2.ZA(kp.gmsmPublic(), SM2UserID)
	if err != nil {
		return out, errors.Wrap(err, "sm2 identity digest")
	}
	copy(out[:], za)
	return out, nil
}

// ZA returns the identity digest of a 64-byte public key.
func ZA(pub []byte) ([32]byte, error) {
	kp, err := SM2KeyPairFromPublic(pub)
	if err != nil {
		return [32]byte{}, err
	}
	return kp.ZA()
}

// MessageDigest returns SM3(ZA || msg), the value e that Sign signs.
func (kp *SM2KeyPair) MessageDigest(msg []byte) ([32]byte, error) {
	za, err := kp.ZA()
	if err != nil {
		return [32]byte{}, err
	}
	return DigestNational(za[:], msg), nil
}

// Sign signs msg over e = SM3(ZA || msg). Nonces are drawn from nonces;
// a source that keeps yielding unusable nonces fails with
// ErrNonceExhausted.
func (kp *SM2KeyPair) Sign(msg []byte, nonces io.Reader) (r, s *big.Int, err error) {
	if kp.d == nil {
		return nil, nil, errors.Wrap(ErrInvalidPrivateKey, "verify-only key")
	}
	r, s, err = sm2.Sm2Sign(kp.gmsmPrivate(), msg, SM2UserID, newNonceBudget(nonces))
	if err != nil {
		return nil, nil, errors.Wrap(err, "sm2 sign")
	}
	return r, s, nil
}

// Verify checks (r, s) over msg.
func (kp *SM2KeyPair) Verify(msg []byte, r, s *big.Int) bool {
	if r == nil || s == nil {
		return false
	}
	return sm2.Sm2Verify(kp.gmsmPublic(), msg, SM2UserID, r, s)
}

// VerifyDigest checks (r, s) over a precomputed e = SM3(ZA || msg).
func (kp *SM2KeyPair) VerifyDigest(e [32]byte, r, s *big.Int) bool {
	if r == nil || s == nil {
		return false
	}
	return sm2.Verify(kp.gmsmPublic(), e[:], r, s)
}

// sm2NonceSize is what gmsm reads per nonce draw.
var sm2NonceSize = sm2Params.BitSize/8 + 8

// nonceBudget caps the bytes a signing or key generation loop may read, so
// a source that never yields a usable value ends in ErrNonceExhausted
// instead of looping forever.
type nonceBudget struct {
	r    io.Reader
	left int
}

func newNonceBudget(r io.Reader) *nonceBudget {
	return &nonceBudget{r: r, left: maxNonceAttempts * sm2NonceSize}
}

func (b *nonceBudget) Read(p []byte) (int, error) {
	if b.r == nil {
		return 0, errors.New("no nonce source")
	}
	if len(p) > b.left {
		return 0, ErrNonceExhausted
	}
	n, err := b.r.Read(p)
	b.left -= n
	return n, err
}
