package roles

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/crypto"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// TxExtractor produces the submission form of a signed transaction.
//
// This is the last role. The bytes it returns are handed to the transport
// layer unchanged.
type TxExtractor struct {
	tx *tx.Transaction
}

// NewTxExtractor creates a TxExtractor.
func NewTxExtractor(t *tx.Transaction) *TxExtractor {
	return &TxExtractor{tx: t}
}

// Extract returns the wire encoding of the signed transaction.
func (e *TxExtractor) Extract() ([]byte, error) {
	if !e.tx.Signed() {
		return nil, errors.WithStack(tx.ErrUnsigned)
	}
	out, err := tx.Serialize(e.tx, true)
	if err != nil {
		return nil, errors.WithMessage(err, "serialize signed transaction")
	}
	return out, nil
}

// ExtractHex returns Extract as a 0x-prefixed hex string, the form
// accepted by a node's raw-transaction endpoint.
func (e *TxExtractor) ExtractHex() (string, error) {
	out, err := e.Extract()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(out), nil
}

// Hash returns the transaction hash: the suite digest of the signed
// wire encoding.
func (e *TxExtractor) Hash() ([32]byte, error) {
	if !e.tx.Signed() {
		return [32]byte{}, errors.WithStack(tx.ErrUnsigned)
	}
	return crypto.TransactionHash(e.tx)
}
