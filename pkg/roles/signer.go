package roles

import (
	"bytes"
	"io"
	"math/big"

	"github.com/suffix-labs/bcos-tx/pkg/crypto"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// Signer fills the trailing signature fields of a transaction.
//
// A transaction is signed once. Signing the same transaction from two
// goroutines is not supported; independent transactions can be signed
// concurrently with independent nonce sources.
type Signer interface {
	// Suite returns the suite the signer produces signatures for.
	Suite() tx.Suite
	// Sign signs t in place.
	Sign(t *tx.Transaction) error
}

// StandardSigner signs with secp256k1 over Keccak-256 and a recovery id.
type StandardSigner struct {
	key    *crypto.PrivateKey
	nonces io.Reader
}

// NewStandardSigner creates a StandardSigner. nonces supplies signing
// nonces and is normally crypto/rand.Reader.
func NewStandardSigner(key *crypto.PrivateKey, nonces io.Reader) *StandardSigner {
	return &StandardSigner{key: key, nonces: nonces}
}

// Suite implements Signer.
func (s *StandardSigner) Suite() tx.Suite { return tx.SuiteStandard }

// Sign computes h = Keccak-256(serialize(t, false)), signs it and stores
//
//	v = 27 + recoveryId                      (no chain id)
//	v = 27 + recoveryId + 2*chainId + 8      (chain id bound)
//
// together with r and s. The signature is recovered once before it is
// stored; a signature that does not recover to the signing key is never
// written to t.
func (s *StandardSigner) Sign(t *tx.Transaction) error {
	if t.Seal == nil {
		t.Seal = &tx.StandardSeal{}
	}
	seal, ok := t.Seal.(*tx.StandardSeal)
	if !ok {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeSuiteMismatch}
	}
	if seal.Signed() {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeAlreadySigned, Cause: ErrAlreadySigned}
	}
	if seal.ChainID > tx.MaxChainID {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeChainID, Cause: tx.ErrFieldLengthViolation}
	}

	h, err := crypto.SigningHash(t)
	if err != nil {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeSigningFailed, Cause: err}
	}
	sig, err := s.key.SignRecoverable(h, s.nonces)
	if err != nil {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeSigningFailed, Cause: err}
	}

	pub, err := crypto.RecoverPublicKey(h, sig.R, sig.S, sig.RecoveryID, true)
	if err != nil {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeSelfCheckFailed, Cause: err}
	}
	if !bytes.Equal(pub.Bytes(), s.key.PublicKey().Bytes()) {
		return &SignatureError{Suite: tx.SuiteStandard, Code: ErrCodeSelfCheckFailed, Cause: crypto.ErrInvalidSignature}
	}

	seal.V = encodeV(sig.RecoveryID, seal.ChainID)
	seal.R = sig.R
	seal.S = sig.S
	return nil
}

func encodeV(recID byte, chainID uint64) *big.Int {
	v := new(big.Int).SetUint64(27 + uint64(recID))
	if chainID > 0 {
		v.Add(v, new(big.Int).SetUint64(2*chainID+8))
	}
	return v
}

// NationalSigner signs with SM2 over SM3 and embeds the public key.
type NationalSigner struct {
	key    *crypto.SM2KeyPair
	nonces io.Reader
}

// NewNationalSigner creates a NationalSigner for a key pair holding a
// private key.
func NewNationalSigner(key *crypto.SM2KeyPair, nonces io.Reader) *NationalSigner {
	return &NationalSigner{key: key, nonces: nonces}
}

// Suite implements Signer.
func (s *NationalSigner) Suite() tx.Suite { return tx.SuiteNational }

// Sign signs serialize(t, false) under SM3(ZA || message) and stores the
// public key, r and s. The signature is verified before it is stored.
func (s *NationalSigner) Sign(t *tx.Transaction) error {
	seal, ok := t.Seal.(*tx.NationalSeal)
	if !ok {
		return &SignatureError{Suite: tx.SuiteNational, Code: ErrCodeSuiteMismatch}
	}
	if seal.Signed() {
		return &SignatureError{Suite: tx.SuiteNational, Code: ErrCodeAlreadySigned, Cause: ErrAlreadySigned}
	}
	if !s.key.HasPrivate() {
		return &SignatureError{Suite: tx.SuiteNational, Code: ErrCodeSigningFailed, Cause: crypto.ErrInvalidPrivateKey}
	}

	pub := s.key.PublicKey()
	unsigned, err := tx.Serialize(t, false)
	if err != nil {
		return &SignatureError{Suite: tx.SuiteNational, Code: ErrCodeSigningFailed, Cause: err}
	}
	r, sv, err := s.key.Sign(unsigned, s.nonces)
	if err != nil {
		return &SignatureError{Suite: tx.SuiteNational, Code: ErrCodeSigningFailed, Cause: err}
	}
	if !s.key.Verify(unsigned, r, sv) {
		return &SignatureError{Suite: tx.SuiteNational, Code: ErrCodeSelfCheckFailed, Cause: crypto.ErrInvalidSignature}
	}

	seal.PublicKey = pub
	seal.R = r
	seal.S = sv
	return nil
}

// NewSigner returns the signer for suite from a raw 32-byte private key.
func NewSigner(suite tx.Suite, priv []byte, nonces io.Reader) (Signer, error) {
	switch suite {
	case tx.SuiteNational:
		kp, err := crypto.NewSM2KeyPair(priv)
		if err != nil {
			return nil, err
		}
		return NewNationalSigner(kp, nonces), nil
	case tx.SuiteStandard:
		key, err := crypto.PrivateKeyFromBytes(priv)
		if err != nil {
			return nil, err
		}
		return NewStandardSigner(key, nonces), nil
	default:
		return nil, &SignatureError{Suite: suite, Code: ErrCodeSuiteMismatch, Cause: tx.ErrUnknownSuite}
	}
}
