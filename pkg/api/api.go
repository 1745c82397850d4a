// Package api provides the high-level entry point for building, signing
// and checking BCOS transactions.
//
// An Engine is configured once with an explicit Config (suite, chain id,
// strict mode, random source, logger, metrics registerer) and then used
// for any number of transactions. There is no package-level state.
//
// Functions, in pipeline order:
//
//  1. EncodeCall - Builds call data from a function signature
//  2. NewCall / NewDeploy / NewTransfer - Assembles an unsigned transaction
//  3. Sign / SignHex - Signs and returns the submission form
//  4. Decode / DecodeHex - Parses a wire-encoded transaction
//  5. RecoverSender / Verify / Validate - Checks a signed transaction
//  6. Address / GenerateKey - Key and address helpers
//
// The engine is safe for concurrent use when its random source is (the
// default crypto/rand.Reader is). A single transaction must not be signed
// from two goroutines.
package api

import (
	cryptorand "crypto/rand"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/suffix-labs/bcos-tx/pkg/abi"
	"github.com/suffix-labs/bcos-tx/pkg/crypto"
	"github.com/suffix-labs/bcos-tx/pkg/roles"
	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// Config configures an Engine.
type Config struct {
	Suite   tx.Suite // cryptographic suite of every transaction
	ChainID uint64   // bound into standard signatures; 0 = unbound
	Strict  bool     // reject standard signatures with s > n/2

	Rand       io.Reader             // nonce and random id source; nil = crypto/rand.Reader
	Logger     *zap.Logger           // nil = no logging
	Registerer prometheus.Registerer // nil = metrics are not exported
}

// TxOptions carries the optional fields of a new transaction.
type TxOptions struct {
	GasPrice *big.Int // default 0
	GasLimit *big.Int // default roles.DefaultGasLimit
	Value    *big.Int // default 0

	// BlockLimit is used as is when set. Otherwise the block limit is
	// BlockHeight + BlockLimitOffset (offset defaults to
	// roles.DefaultBlockLimitOffset).
	BlockLimit       *big.Int
	BlockHeight      uint64
	BlockLimitOffset uint64

	RandomID *big.Int // default: drawn from the engine's random source
}

// Engine builds, signs and verifies transactions of one suite.
type Engine struct {
	cfg     Config
	log     *zap.Logger
	metrics *Metrics
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if !cfg.Suite.Valid() {
		return nil, errors.Wrapf(tx.ErrUnknownSuite, "suite %d", cfg.Suite)
	}
	if cfg.Suite == tx.SuiteNational && cfg.ChainID != 0 {
		return nil, errors.Wrap(tx.ErrMalformedTransaction, "national transactions carry no chain id")
	}
	if cfg.ChainID > tx.MaxChainID {
		return nil, errors.Wrapf(tx.ErrFieldLengthViolation, "chain id %d exceeds %d", cfg.ChainID, tx.MaxChainID)
	}
	if cfg.Rand == nil {
		cfg.Rand = cryptorand.Reader
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics, err := NewMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:     cfg,
		log:     logger.With(zap.Stringer("suite", cfg.Suite)),
		metrics: metrics,
	}, nil
}

// Suite returns the engine's suite.
func (e *Engine) Suite() tx.Suite { return e.cfg.Suite }

// ============================================================================
// API Function 1: EncodeCall
// ============================================================================

// EncodeCall builds call data from a function signature and values.
//
// Parameters:
//   - signature: function signature text, e.g. "transfer(address,uint256)"
//   - params: one value per parameter type
//
// Returns:
//   - selector || encoded parameters
//   - abi.ErrUnsupportedType, abi.ErrArityMismatch or abi.ErrInvalidArgument
func (e *Engine) EncodeCall(signature string, params ...interface{}) ([]byte, error) {
	return abi.EncodeCallFromSignature(signature, params...)
}

// ============================================================================
// API Function 2: NewCall / NewDeploy / NewTransfer
// ============================================================================

// NewCall assembles an unsigned contract call.
//
// Parameters:
//   - to: contract address
//   - signature, params: see EncodeCall
//   - opts: gas, value, block limit and random id
func (e *Engine) NewCall(to common.Address, signature string, params []interface{}, opts TxOptions) (*tx.Transaction, error) {
	return e.build(opts, func(c *roles.Constructor) error {
		return c.SetCall(to, signature, params...)
	})
}

// NewDeploy assembles an unsigned contract creation whose payload is code
// followed by the encoded constructor arguments.
func (e *Engine) NewDeploy(code []byte, types []string, params []interface{}, opts TxOptions) (*tx.Transaction, error) {
	return e.build(opts, func(c *roles.Constructor) error {
		return c.SetDeploy(code, types, params)
	})
}

// NewTransfer assembles an unsigned transaction with a prebuilt payload
// (nil for a plain value transfer).
func (e *Engine) NewTransfer(to common.Address, data []byte, opts TxOptions) (*tx.Transaction, error) {
	return e.build(opts, func(c *roles.Constructor) error {
		return c.SetCallData(to, data)
	})
}

func (e *Engine) build(opts TxOptions, construct func(*roles.Constructor) error) (*tx.Transaction, error) {
	creator := roles.NewCreator(e.cfg.Suite, e.cfg.ChainID, e.cfg.Rand)
	if opts.GasPrice != nil {
		creator.WithGasPrice(opts.GasPrice)
	}
	if opts.GasLimit != nil {
		creator.WithGasLimit(opts.GasLimit)
	}
	if opts.RandomID != nil {
		creator.WithRandomID(opts.RandomID)
	}
	if opts.BlockLimit != nil {
		creator.WithBlockLimit(opts.BlockLimit)
	} else {
		offset := opts.BlockLimitOffset
		if offset == 0 {
			offset = roles.DefaultBlockLimitOffset
		}
		creator.WithBlockHeight(opts.BlockHeight, offset)
	}

	created, err := creator.Create()
	if err != nil {
		return nil, errors.WithMessage(err, "create transaction")
	}

	constructor := roles.NewConstructor(created)
	if err := construct(constructor); err != nil {
		return nil, errors.WithMessage(err, "construct transaction")
	}
	if err := constructor.SetValue(opts.Value); err != nil {
		return nil, err
	}
	return constructor.Finish(), nil
}

// ============================================================================
// API Function 3: Sign / SignHex
// ============================================================================

// Sign signs t in place with a raw 32-byte private key.
//
// Parameters:
//   - t: unsigned transaction of the engine's suite
//   - priv: private scalar (secp256k1 or SM2 depending on the suite)
//
// Returns an error if the key is out of range, the transaction belongs to
// the other suite or is already signed, or a field violates its length.
// A failed Sign leaves t unsigned.
func (e *Engine) Sign(t *tx.Transaction, priv []byte) error {
	signer, err := roles.NewSigner(e.cfg.Suite, priv, e.cfg.Rand)
	if err != nil {
		return err
	}
	if err := signer.Sign(t); err != nil {
		return err
	}
	e.metrics.Signed.WithLabelValues(e.cfg.Suite.String()).Inc()

	if ce := e.log.Check(zap.DebugLevel, "signed transaction"); ce != nil {
		fields := []zap.Field{zap.Bool("creation", t.IsContractCreation())}
		if h, err := crypto.TransactionHash(t); err == nil {
			fields = append(fields, zap.String("hash", hexutil.Encode(h[:])))
		}
		ce.Write(fields...)
	}
	return nil
}

// SignHex signs t and returns its 0x-prefixed wire encoding.
func (e *Engine) SignHex(t *tx.Transaction, priv []byte) (string, error) {
	if err := e.Sign(t, priv); err != nil {
		return "", err
	}
	return roles.NewTxExtractor(t).ExtractHex()
}

// ============================================================================
// API Function 4: Decode / DecodeHex
// ============================================================================

// Decode parses a wire-encoded transaction of the engine's suite.
func (e *Engine) Decode(raw []byte) (*tx.Transaction, error) {
	return tx.Parse(raw, e.cfg.Suite)
}

// DecodeHex parses a 0x-prefixed hex transaction.
func (e *Engine) DecodeHex(s string) (*tx.Transaction, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrap(tx.ErrMalformedTransaction, err.Error())
	}
	return e.Decode(raw)
}

// ============================================================================
// API Function 5: RecoverSender / Verify / Validate
// ============================================================================

// RecoverSender returns the address that signed t.
//
// A standard transaction must be bound to the engine's chain id; one
// signed for another chain, or for no chain, is rejected.
//
// Returns:
//   - sender address
//   - tx.ErrUnsigned, crypto.ErrInvalidSignature (crypto.ErrMalleableSignature
//     in strict mode, or a foreign chain id) or crypto.ErrPointNotOnCurve
func (e *Engine) RecoverSender(t *tx.Transaction) (common.Address, error) {
	sender, err := e.recoverSender(t)
	e.observeVerify(err)
	if err != nil {
		return common.Address{}, err
	}
	e.log.Debug("recovered sender", zap.String("from", sender.Hex()))
	return sender, nil
}

// Verify reports whether t carries a valid signature.
func (e *Engine) Verify(t *tx.Transaction) bool {
	_, err := e.RecoverSender(t)
	return err == nil
}

// Validate checks the chain binding first, then the signature and that the
// gas limit covers the base fee (see roles.Verifier.Validate).
func (e *Engine) Validate(t *tx.Transaction) error {
	err := e.checkBinding(t)
	if err == nil {
		err = roles.NewVerifier(e.cfg.Strict).Validate(t)
	}
	e.observeVerify(err)
	return err
}

func (e *Engine) recoverSender(t *tx.Transaction) (common.Address, error) {
	if err := e.checkBinding(t); err != nil {
		return common.Address{}, err
	}
	return roles.NewVerifier(e.cfg.Strict).RecoverSender(t)
}

// checkBinding rejects transactions of another suite or, for the standard
// suite, bound to another chain id.
func (e *Engine) checkBinding(t *tx.Transaction) error {
	if t.Suite() != e.cfg.Suite {
		return errors.Wrapf(crypto.ErrInvalidSignature, "%s transaction checked by %s engine", t.Suite(), e.cfg.Suite)
	}
	if t.Signed() && t.Suite() == tx.SuiteStandard && t.ChainID() != e.cfg.ChainID {
		return errors.Wrapf(crypto.ErrInvalidSignature, "transaction bound to chain id %d, expected %d", t.ChainID(), e.cfg.ChainID)
	}
	return nil
}

func (e *Engine) observeVerify(err error) {
	if err != nil {
		e.metrics.Verified.WithLabelValues(e.cfg.Suite.String(), resultInvalid).Inc()
		e.log.Warn("signature verification failed", zap.Error(err))
		return
	}
	e.metrics.Verified.WithLabelValues(e.cfg.Suite.String(), resultValid).Inc()
}

// TransactionHash returns the suite digest of the signed wire encoding.
func (e *Engine) TransactionHash(t *tx.Transaction) (common.Hash, error) {
	h, err := roles.NewTxExtractor(t).Hash()
	if err != nil {
		return common.Hash{}, err
	}
	return common.Hash(h), nil
}

// ============================================================================
// API Function 6: Address / GenerateKey
// ============================================================================

// Address derives the address of a private key under the engine's suite.
func (e *Engine) Address(priv []byte) (common.Address, error) {
	return crypto.PrivateKeyToAddress(e.cfg.Suite, priv)
}

// PublicKey derives the 64-byte public key of a private key.
func (e *Engine) PublicKey(priv []byte) ([]byte, error) {
	return crypto.PrivateKeyToPublic(e.cfg.Suite, priv)
}

// GenerateKey draws a new private key from the engine's random source.
//
// Returns:
//   - 32-byte private key
//   - its address under the engine's suite
func (e *Engine) GenerateKey() ([]byte, common.Address, error) {
	var priv []byte
	switch e.cfg.Suite {
	case tx.SuiteNational:
		kp, err := crypto.GenerateSM2KeyPair(e.cfg.Rand)
		if err != nil {
			return nil, common.Address{}, err
		}
		priv = kp.PrivateKey()
	default:
		key, err := crypto.GeneratePrivateKey(e.cfg.Rand)
		if err != nil {
			return nil, common.Address{}, err
		}
		priv = key.Bytes()
	}
	addr, err := e.Address(priv)
	if err != nil {
		return nil, common.Address{}, err
	}
	return priv, addr, nil
}
