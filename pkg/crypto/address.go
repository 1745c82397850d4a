package crypto

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// PublicKeyLen is the length of a public key without its 0x04 prefix.
const PublicKeyLen = tx.PublicKeyLength

// AddressOf returns the last 20 bytes of d(pub) for a 64-byte public key.
func AddressOf(d Digest, pub []byte) (common.Address, error) {
	if len(pub) != PublicKeyLen {
		return common.Address{}, errors.Wrapf(ErrPointNotOnCurve, "unexpected public key length %d", len(pub))
	}
	h := d.Sum256(pub)
	return common.BytesToAddress(h[12:]), nil
}

// SuiteAddress returns the address of pub under the suite's digest.
func SuiteAddress(suite tx.Suite, pub []byte) (common.Address, error) {
	return AddressOf(DigestFor(suite), pub)
}

// PrivateKeyToPublic derives the 64-byte public key G*priv on the suite's curve.
func PrivateKeyToPublic(suite tx.Suite, priv []byte) ([]byte, error) {
	switch suite {
	case tx.SuiteStandard:
		key, err := PrivateKeyFromBytes(priv)
		if err != nil {
			return nil, err
		}
		return key.PublicKey().Bytes(), nil
	case tx.SuiteNational:
		kp, err := NewSM2KeyPair(priv)
		if err != nil {
			return nil, err
		}
		return kp.PublicKey(), nil
	default:
		return nil, errors.Wrapf(tx.ErrUnknownSuite, "suite %d", suite)
	}
}

// PrivateKeyToAddress derives the address of a private key.
func PrivateKeyToAddress(suite tx.Suite, priv []byte) (common.Address, error) {
	pub, err := PrivateKeyToPublic(suite, priv)
	if err != nil {
		return common.Address{}, err
	}
	return SuiteAddress(suite, pub)
}
