package roles

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/abi"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// Constructor sets the recipient, value and payload of a transaction.
//
// Every setter fails with ErrAlreadySigned once the transaction carries a
// signature, since any change would invalidate it.
type Constructor struct {
	tx *tx.Transaction
}

// NewConstructor creates a Constructor for a transaction made by Creator.
func NewConstructor(t *tx.Transaction) *Constructor {
	return &Constructor{tx: t}
}

// SetCall targets a contract function.
//
// The parameter types are taken from the signature text, e.g.
//
//	c.SetCall(addr, "transfer(address,uint256)", to, amount)
func (c *Constructor) SetCall(to common.Address, signature string, params ...interface{}) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	data, err := abi.EncodeCallFromSignature(signature, params...)
	if err != nil {
		return err
	}
	c.tx.To = &to
	c.tx.Data = data
	return nil
}

// SetCallData targets to with a prebuilt payload (possibly empty, for a
// plain transfer).
func (c *Constructor) SetCallData(to common.Address, data []byte) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	c.tx.To = &to
	c.tx.Data = append([]byte(nil), data...)
	return nil
}

// SetDeploy turns the transaction into a contract creation: the recipient
// is cleared and the payload is code followed by the encoded constructor
// arguments.
func (c *Constructor) SetDeploy(code []byte, types []string, params []interface{}) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	data, err := abi.EncodeDeploy(code, types, params)
	if err != nil {
		return err
	}
	c.tx.To = nil
	c.tx.Data = data
	return nil
}

// SetValue sets the transferred value. nil means zero.
func (c *Constructor) SetValue(v *big.Int) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	if v == nil {
		v = new(big.Int)
	}
	if v.Sign() < 0 {
		return &tx.FieldError{Field: "value", Code: tx.ErrCodeNegative}
	}
	c.tx.Value = new(big.Int).Set(v)
	return nil
}

// Finish returns the constructed transaction.
func (c *Constructor) Finish() *tx.Transaction {
	return c.tx
}

func (c *Constructor) checkMutable() error {
	if c.tx.Signed() {
		return errors.WithStack(ErrAlreadySigned)
	}
	return nil
}
