package crypto

import (
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// DigestFor returns the digest of a suite: Keccak256 for the standard
// suite, SM3 for the national suite.
func DigestFor(suite tx.Suite) Digest {
	if suite == tx.SuiteNational {
		return SM3
	}
	return Keccak256
}

// SigningHash returns the suite digest of the unsigned serialization of t.
//
// For the standard suite this is the digest that is signed. The national
// suite signs SM3(ZA || serialization) instead; see NationalSigningHash.
func SigningHash(t *tx.Transaction) ([32]byte, error) {
	unsigned, err := tx.Serialize(t, false)
	if err != nil {
		return [32]byte{}, errors.WithMessage(err, "serialize unsigned transaction")
	}
	return DigestFor(t.Suite()).Sum256(unsigned), nil
}

// NationalSigningHash returns SM3(ZA(pub) || serialize(t, false)).
func NationalSigningHash(t *tx.Transaction, pub []byte) ([32]byte, error) {
	kp, err := SM2KeyPairFromPublic(pub)
	if err != nil {
		return [32]byte{}, err
	}
	unsigned, err := tx.Serialize(t, false)
	if err != nil {
		return [32]byte{}, errors.WithMessage(err, "serialize unsigned transaction")
	}
	return kp.MessageDigest(unsigned)
}

// TransactionHash returns the suite digest of the full wire encoding.
func TransactionHash(t *tx.Transaction) ([32]byte, error) {
	encoded, err := tx.Serialize(t, true)
	if err != nil {
		return [32]byte{}, errors.WithMessage(err, "serialize transaction")
	}
	return DigestFor(t.Suite()).Sum256(encoded), nil
}
