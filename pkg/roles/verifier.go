package roles

import (
	stderrors "errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/crypto"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// Verifier checks signed transactions.
type Verifier struct {
	strict bool // reject high-s standard signatures
}

// NewVerifier creates a Verifier. With strict set, standard-suite
// signatures whose s exceeds half the curve order are rejected with
// crypto.ErrMalleableSignature.
func NewVerifier(strict bool) *Verifier {
	return &Verifier{strict: strict}
}

// RecoverSender returns the address that signed t.
//
// Standard suite: the recovery id is taken from v after removing the
// chain-id adjustment of the transaction's bound chain id, and the public
// key is recovered from the signing digest. A v that does not belong to the
// bound chain id is rejected.
//
// National suite: the embedded public key is checked against the
// signature and its address is returned.
func (v *Verifier) RecoverSender(t *tx.Transaction) (common.Address, error) {
	if !t.Signed() {
		return common.Address{}, errors.WithStack(tx.ErrUnsigned)
	}

	switch seal := t.Seal.(type) {
	case *tx.StandardSeal:
		recID, err := decodeV(seal.V, seal.ChainID)
		if err != nil {
			return common.Address{}, err
		}
		h, err := crypto.SigningHash(t)
		if err != nil {
			return common.Address{}, err
		}
		pub, err := crypto.RecoverPublicKey(h, seal.R, seal.S, recID, v.strict)
		if err != nil {
			return common.Address{}, err
		}
		return crypto.SuiteAddress(tx.SuiteStandard, pub.Bytes())

	case *tx.NationalSeal:
		key, err := crypto.SM2KeyPairFromPublic(seal.PublicKey)
		if err != nil {
			return common.Address{}, err
		}
		h, err := crypto.NationalSigningHash(t, seal.PublicKey)
		if err != nil {
			return common.Address{}, err
		}
		if !key.VerifyDigest(h, seal.R, seal.S) {
			return common.Address{}, errors.WithStack(crypto.ErrInvalidSignature)
		}
		return crypto.SuiteAddress(tx.SuiteNational, seal.PublicKey)
	}
	return common.Address{}, errors.WithStack(tx.ErrUnknownSuite)
}

// decodeV removes the chain-id adjustment from v and returns the recovery id.
func decodeV(v *big.Int, chainID uint64) (byte, error) {
	base := new(big.Int).SetUint64(27)
	if chainID > 0 {
		base.Add(base, new(big.Int).SetUint64(2*chainID+8))
	}
	rec := new(big.Int).Sub(v, base)
	if rec.Sign() < 0 || rec.Cmp(big.NewInt(1)) > 0 {
		return 0, errors.Wrapf(crypto.ErrInvalidSignature, "v %s does not match chain id %d", v, chainID)
	}
	return byte(rec.Uint64()), nil
}

// Verify reports whether RecoverSender succeeds.
func (v *Verifier) Verify(t *tx.Transaction) bool {
	_, err := v.RecoverSender(t)
	return err == nil
}

// VerifySender reports whether t was signed by from.
func (v *Verifier) VerifySender(t *tx.Transaction, from common.Address) (bool, error) {
	sender, err := v.RecoverSender(t)
	if err != nil {
		return false, err
	}
	return sender == from, nil
}

// ErrInsufficientGas is reported by Validate when the gas limit is below
// the intrinsic gas of the transaction.
var ErrInsufficientGas = errors.New("gas limit below base fee")

// Validate checks that the signature verifies and that the gas limit
// covers the base fee. Every failed check is reported; the result is nil
// when both pass.
func (v *Verifier) Validate(t *tx.Transaction) error {
	var errs []error
	if _, err := v.RecoverSender(t); err != nil {
		errs = append(errs, errors.WithMessage(err, "invalid signature"))
	}
	base := t.BaseFee()
	limit := t.GasLimit
	if limit == nil {
		limit = new(big.Int)
	}
	if base.Cmp(limit) > 0 {
		errs = append(errs, errors.Wrapf(ErrInsufficientGas, "gas limit is too low, need at least %s", base))
	}
	return stderrors.Join(errs...)
}
