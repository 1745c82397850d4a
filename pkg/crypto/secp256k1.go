// Package crypto implements the curve arithmetic, digests and key handling
// of the two transaction suites.
//
// Standard suite: secp256k1 ECDSA with public-key recovery over Keccak-256.
// National suite: SM2 over SM3 with an explicit public key (see sm2.go).
//
// Key formats:
//   - Private keys: raw 32 bytes, hex (optionally 0x-prefixed) or WIF
//   - Public keys: 64 bytes X || Y (no 0x04 prefix) on the wire; 33- and
//     65-byte SEC1 encodings are accepted on input
//   - Signatures: (r, s) scalars plus a recovery id (standard) or the
//     signer's public key (national)
//
// Nonces are drawn from a caller supplied io.Reader. Signing never reads
// from a process-global random source, so tests can pin the output.
//
// References:
//   - SEC 1 v2, section 4.1 (ECDSA) and 4.1.6 (public key recovery)
//   - https://github.com/ethereum/EIPs/blob/master/EIPS/eip-2.md (low-S)
//   - https://github.com/ethereum/EIPs/blob/master/EIPS/eip-155.md (chain id)
package crypto

import (
	"encoding/hex"
	"io"
	"math/big"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	secp256k1N     = ethcrypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// PrivateKeyFromBytes creates a private key from a 32-byte big-endian scalar.
// The scalar must be in [1, n-1].
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "must be 32 bytes, got %d", len(keyBytes))
	}

	var d secp256k1.ModNScalar
	if overflow := d.SetByteSlice(keyBytes); overflow || d.IsZero() {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "scalar out of range")
	}
	return &PrivateKey{key: secp256k1.NewPrivateKey(&d)}, nil
}

// GeneratePrivateKey draws a private key from rand.
func GeneratePrivateKey(rand io.Reader) (*PrivateKey, error) {
	var buf [32]byte
	for i := 0; i < maxNonceAttempts; i++ {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return nil, errors.Wrap(err, "read key material")
		}
		if key, err := PrivateKeyFromBytes(buf[:]); err == nil {
			return key, nil
		}
	}
	return nil, ErrNonceExhausted
}

// ParsePrivateKeyWIF parses a WIF-encoded private key.
func ParsePrivateKeyWIF(wif string) (*PrivateKey, error) {
	decoded, err := decodeWIF(wif)
	if err != nil {
		return nil, err
	}
	return PrivateKeyFromBytes(decoded)
}

// ParsePrivateKey accepts a private key as hex (64 digits, optional 0x
// prefix) or WIF.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	raw, err := DecodePrivateKeyString(s)
	if err != nil {
		return nil, err
	}
	return PrivateKeyFromBytes(raw)
}

// DecodePrivateKeyString returns the raw scalar bytes of a hex or WIF
// private key without checking its range. It is shared by both suites.
func DecodePrivateKeyString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	hexPart := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(hexPart) == 64 {
		if raw, err := hex.DecodeString(hexPart); err == nil {
			return raw, nil
		}
	}
	raw, err := decodeWIF(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "neither 32-byte hex nor WIF")
	}
	return raw, nil
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Bytes returns the raw 32-byte private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Signature is a recoverable secp256k1 signature.
type Signature struct {
	R, S       *big.Int
	RecoveryID byte // 0 or 1
}

// Bytes returns r || s || recoveryId (65 bytes).
func (sig *Signature) Bytes() []byte {
	out := make([]byte, 65)
	sig.R.FillBytes(out[0:32])
	sig.S.FillBytes(out[32:64])
	out[64] = sig.RecoveryID
	return out
}

// SignRecoverable signs a 32-byte digest.
//
// Nonces are read 32 bytes at a time from nonces. A nonce is discarded and
// a new one drawn when it is not a valid scalar, when it yields r = 0 or
// s = 0, or when R.x >= n (recovery ids 2 and 3 are never produced). The
// returned s is always in the lower half of the order; the recovery id is
// flipped accordingly.
func (pk *PrivateKey) SignRecoverable(hash [32]byte, nonces io.Reader) (*Signature, error) {
	var e secp256k1.ModNScalar
	e.SetByteSlice(hash[:])

	var buf [32]byte
	for attempt := 0; attempt < maxNonceAttempts; attempt++ {
		if _, err := io.ReadFull(nonces, buf[:]); err != nil {
			return nil, errors.Wrap(err, "read nonce")
		}

		var k secp256k1.ModNScalar
		if overflow := k.SetBytes(&buf); overflow != 0 || k.IsZero() {
			continue
		}

		var R secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(&k, &R)
		R.ToAffine()
		R.X.Normalize()
		R.Y.Normalize()

		var r secp256k1.ModNScalar
		if overflow := r.SetBytes(R.X.Bytes()); overflow != 0 || r.IsZero() {
			continue
		}
		var recID byte
		if R.Y.IsOdd() {
			recID = 1
		}

		// s = k^-1 * (e + r*d)
		kInv := new(secp256k1.ModNScalar).InverseValNonConst(&k)
		s := new(secp256k1.ModNScalar).Mul2(&r, &pk.key.Key).Add(&e).Mul(kInv)
		if s.IsZero() {
			continue
		}
		if s.IsOverHalfOrder() {
			s.Negate()
			recID ^= 1
		}

		rb, sb := r.Bytes(), s.Bytes()
		return &Signature{
			R:          new(big.Int).SetBytes(rb[:]),
			S:          new(big.Int).SetBytes(sb[:]),
			RecoveryID: recID,
		}, nil
	}
	return nil, ErrNonceExhausted
}

// RecoverPublicKey recovers the signer's public key from a digest and a
// signature. With strict set, s above half the order is rejected with
// ErrMalleableSignature.
func RecoverPublicKey(hash [32]byte, r, s *big.Int, recID byte, strict bool) (*PublicKey, error) {
	if r == nil || s == nil {
		return nil, errors.Wrap(ErrInvalidSignature, "missing r or s")
	}
	if recID > 1 {
		return nil, errors.Wrapf(ErrInvalidSignature, "recovery id %d", recID)
	}
	if !ethcrypto.ValidateSignatureValues(recID, r, s, false) {
		return nil, errors.Wrap(ErrInvalidSignature, "r or s out of range")
	}
	if strict && s.Cmp(secp256k1HalfN) > 0 {
		return nil, ErrMalleableSignature
	}

	sig := (&Signature{R: r, S: s, RecoveryID: recID}).Bytes()
	pub, err := ethcrypto.SigToPub(hash[:], sig)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return ParsePublicKey(ethcrypto.FromECDSAPub(pub))
}

// VerifySignature checks an (r, s) signature over hash without recovery.
func VerifySignature(pubkey *PublicKey, hash [32]byte, r, s *big.Int) bool {
	if r == nil || s == nil || r.Sign() <= 0 || s.Sign() <= 0 ||
		r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	var rs, ss secp256k1.ModNScalar
	rs.SetByteSlice(r.Bytes())
	ss.SetByteSlice(s.Bytes())
	return ecdsa.NewSignature(&rs, &ss).Verify(hash[:], pubkey.key)
}

// Bytes returns the 64-byte X || Y encoding.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeUncompressed()[1:]
}

// SerializeCompressed returns the 33-byte compressed public key.
func (pub *PublicKey) SerializeCompressed() [33]byte {
	var result [33]byte
	copy(result[:], pub.key.SerializeCompressed())
	return result
}

// ParsePublicKey parses a public key in 64-byte raw, 33-byte compressed or
// 65-byte uncompressed form.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	switch len(pubKeyBytes) {
	case 64:
		pubKeyBytes = append([]byte{0x04}, pubKeyBytes...)
	case 33, 65:
	default:
		return nil, errors.Wrapf(ErrPointNotOnCurve, "unexpected public key length %d", len(pubKeyBytes))
	}

	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, errors.Wrap(ErrPointNotOnCurve, err.Error())
	}
	return &PublicKey{key: pubKey}, nil
}

// WIF version bytes.
const (
	wifMainnet = 0x80
	wifTestnet = 0xef
)

// decodeWIF decodes a WIF-encoded private key.
// WIF format: version_byte || private_key (32 bytes) || [compression_flag] || checksum (4 bytes)
func decodeWIF(wif string) ([]byte, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, errors.Wrap(err, "decode WIF")
	}
	if version != wifMainnet && version != wifTestnet {
		return nil, errors.Errorf("invalid WIF version byte: 0x%02x", version)
	}
	switch {
	case len(payload) == 32:
	case len(payload) == 33 && payload[32] == 0x01:
		payload = payload[:32]
	default:
		return nil, errors.New("invalid WIF length")
	}
	return payload, nil
}

// EncodeWIF encodes a private key to WIF format.
func EncodeWIF(privateKey []byte, compressed bool, testnet bool) (string, error) {
	if len(privateKey) != 32 {
		return "", errors.Wrap(ErrInvalidPrivateKey, "must be 32 bytes")
	}

	version := byte(wifMainnet)
	if testnet {
		version = wifTestnet
	}

	payload := append([]byte{}, privateKey...)
	if compressed {
		payload = append(payload, 0x01)
	}
	return base58.CheckEncode(payload, version), nil
}
