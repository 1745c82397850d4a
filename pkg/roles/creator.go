// Package roles assembles, signs, checks and extracts transactions.
//
// Building a transaction is split into roles that each own one step:
//   - Creator: fixes the suite, chain id, gas and block limit and draws
//     the random id
//   - Constructor: sets the recipient, value and call or deployment payload
//   - Signer: fills the trailing signature fields (StandardSigner or
//     NationalSigner)
//   - Verifier: recovers or checks the sender, validates fees
//   - TxExtractor: produces the wire bytes for submission
//
// Roles never log and never touch the network. Obtaining the current block
// height, submitting the extracted bytes and retrying are left to callers.
package roles

import (
	"io"
	"math/big"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

const (
	// DefaultGasLimit is the gas limit used when none is set.
	DefaultGasLimit = 100000000
	// DefaultBlockLimitOffset is added to the current block height to form
	// the block limit.
	DefaultBlockLimitOffset = 1000
)

// Creator initializes an unsigned transaction.
type Creator struct {
	suite      tx.Suite
	chainID    uint64
	gasPrice   *big.Int
	gasLimit   *big.Int
	blockLimit *big.Int
	randomID   *big.Int
	random     io.Reader // source of the random id
}

// NewCreator creates a Creator.
//
// Parameters:
//   - suite: cryptographic suite of the transaction
//   - chainID: chain id bound into standard-suite signatures (0 = unbound);
//     must be 0 for the national suite
//   - random: source for the random id, normally crypto/rand.Reader
func NewCreator(suite tx.Suite, chainID uint64, random io.Reader) *Creator {
	return &Creator{
		suite:    suite,
		chainID:  chainID,
		gasPrice: new(big.Int),
		gasLimit: big.NewInt(DefaultGasLimit),
		random:   random,
	}
}

// WithGasPrice sets the gas price.
func (c *Creator) WithGasPrice(price *big.Int) *Creator {
	c.gasPrice = price
	return c
}

// WithGasLimit sets the gas limit.
func (c *Creator) WithGasLimit(limit *big.Int) *Creator {
	c.gasLimit = limit
	return c
}

// WithBlockLimit sets the highest block at which the transaction is valid.
func (c *Creator) WithBlockLimit(limit *big.Int) *Creator {
	c.blockLimit = limit
	return c
}

// WithBlockHeight sets the block limit to height + offset.
func (c *Creator) WithBlockHeight(height, offset uint64) *Creator {
	c.blockLimit = new(big.Int).Add(new(big.Int).SetUint64(height), new(big.Int).SetUint64(offset))
	return c
}

// WithRandomID fixes the random id instead of drawing one.
func (c *Creator) WithRandomID(id *big.Int) *Creator {
	c.randomID = id
	return c
}

// Create returns an unsigned transaction with no recipient and no payload.
//
// The random id is a version 4 UUID drawn from the Creator's random source,
// read as a 128-bit big-endian integer.
func (c *Creator) Create() (*tx.Transaction, error) {
	if !c.suite.Valid() {
		return nil, errors.Wrapf(tx.ErrUnknownSuite, "suite %d", c.suite)
	}
	if c.suite == tx.SuiteNational && c.chainID != 0 {
		return nil, errors.Wrap(tx.ErrMalformedTransaction, "national transactions carry no chain id")
	}
	if c.chainID > tx.MaxChainID {
		return nil, errors.Wrapf(tx.ErrFieldLengthViolation, "chain id %d does not fit in v (max %d)", c.chainID, tx.MaxChainID)
	}

	id := c.randomID
	if id == nil {
		if c.random == nil {
			return nil, errors.New("no random source for random id")
		}
		u, err := uuid.NewRandomFromReader(c.random)
		if err != nil {
			return nil, errors.Wrap(err, "draw random id")
		}
		id = new(big.Int).SetBytes(u[:])
	}

	t := tx.New(c.suite, c.chainID)
	t.RandomID = new(big.Int).Set(id)
	t.GasPrice = copyInt(c.gasPrice)
	t.GasLimit = copyInt(c.gasLimit)
	t.BlockLimit = copyInt(c.blockLimit)
	t.Value = new(big.Int)
	return t, nil
}

func copyInt(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n)
}
