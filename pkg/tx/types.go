// Package tx implements the BCOS transaction model and its canonical
// serialization.
//
// A transaction is an ordered record of seven common fields followed by
// three suite-specific trailing fields:
//
//	standard: randomId, gasPrice, gasLimit, blockLimit, to, value, data, v, r, s
//	national: randomId, gasPrice, gasLimit, blockLimit, to, value, data, publicKey, r, s
//
// The suite (secp256k1/Keccak-256 "standard" or SM2/SM3 "national") is fixed
// when the transaction is created and selects the field table used by the
// serializer. The trailing fields form a tagged union (Seal): StandardSeal
// or NationalSeal. They are empty until a signer fills them in.
//
// Encoded transactions are RLP lists (see package codec).
package tx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Suite selects the cryptographic suite of a transaction.
type Suite uint8

const (
	// SuiteStandard is secp256k1 ECDSA with public-key recovery over Keccak-256.
	SuiteStandard Suite = iota
	// SuiteNational is SM2 with an explicit public key over SM3.
	SuiteNational
)

// String returns the lower-case suite name.
func (s Suite) String() string {
	switch s {
	case SuiteStandard:
		return "standard"
	case SuiteNational:
		return "national"
	default:
		return "unknown"
	}
}

// Valid reports whether s is a known suite.
func (s Suite) Valid() bool {
	return s == SuiteStandard || s == SuiteNational
}

// ParseSuite maps a suite name ("standard", "national", or the aliases
// "ecdsa" and "sm") to a Suite.
func ParseSuite(name string) (Suite, error) {
	switch name {
	case "standard", "ecdsa", "secp256k1":
		return SuiteStandard, nil
	case "national", "sm", "sm2":
		return SuiteNational, nil
	default:
		return 0, errors.Wrapf(ErrUnknownSuite, "%q", name)
	}
}

// Field describes one position of the wire field list.
type Field struct {
	Name string
	// Length is the declared byte length; 0 means unbounded.
	Length int
	// AllowLess strips leading zero bytes; the value may be shorter than Length.
	AllowLess bool
	// AllowZero keeps a single 0x00 byte instead of storing it as empty.
	AllowZero bool
}

var commonFields = []Field{
	{Name: "randomId", Length: 32, AllowLess: true},
	{Name: "gasPrice", Length: 32, AllowLess: true},
	{Name: "gasLimit", Length: 32, AllowLess: true},
	{Name: "blockLimit", Length: 32, AllowLess: true},
	{Name: "to", Length: 20, AllowZero: true},
	{Name: "value", Length: 32, AllowLess: true},
	{Name: "data", AllowZero: true},
}

var standardFields = append(append([]Field{}, commonFields...),
	Field{Name: "v", Length: 1},
	Field{Name: "r", Length: 32, AllowLess: true},
	Field{Name: "s", Length: 32, AllowLess: true},
)

var nationalFields = append(append([]Field{}, commonFields...),
	Field{Name: "publicKey", Length: PublicKeyLength, AllowLess: true},
	Field{Name: "r", Length: 32, AllowLess: true},
	Field{Name: "s", Length: 32, AllowLess: true},
)

// Fields returns the ordered field table of a suite. The returned slice
// must not be modified.
func Fields(s Suite) []Field {
	if s == SuiteNational {
		return nationalFields
	}
	return standardFields
}

// Number of fields shared by both suites.
const commonFieldCount = 7

const (
	// AddressLength is the byte length of an account identifier.
	AddressLength = common.AddressLength
	// PublicKeyLength is the length of an uncompressed public key without
	// its 0x04 prefix.
	PublicKeyLength = 64
	// ScalarLength is the length of r and s.
	ScalarLength = 32
)

// Transaction is a BCOS transaction.
//
// Integer fields are unsigned; nil is treated as zero. A transaction is
// built by the caller, signed once, then serialized and handed to the
// transport. It must not be signed concurrently.
type Transaction struct {
	RandomID   *big.Int        // anti-replay nonce
	GasPrice   *big.Int        // price per unit of gas
	GasLimit   *big.Int        // maximum gas
	BlockLimit *big.Int        // highest block at which the tx is valid
	To         *common.Address // recipient; nil for contract creation
	Value      *big.Int        // transferred value
	Data       []byte          // call payload or deployment code

	Seal Seal // suite-specific trailing fields
}

// Seal holds the suite-specific trailing fields of a transaction.
// It is implemented by *StandardSeal and *NationalSeal only.
type Seal interface {
	// Suite returns the suite the seal belongs to.
	Suite() Suite
	// Signed reports whether the signature fields are populated.
	Signed() bool

	isSeal()
}

// StandardSeal holds v, r and s of a standard-suite transaction.
type StandardSeal struct {
	// ChainID binds the signature to a network. It is not serialized; it
	// is folded into v. Zero means unbound.
	ChainID uint64

	V *big.Int // 27/28, or 35+2*ChainID/36+2*ChainID when bound
	R *big.Int
	S *big.Int
}

// Suite implements Seal.
func (*StandardSeal) Suite() Suite { return SuiteStandard }

// Signed implements Seal.
func (s *StandardSeal) Signed() bool {
	return isSet(s.V) && isSet(s.R) && isSet(s.S)
}

func (*StandardSeal) isSeal() {}

// NationalSeal holds publicKey, r and s of a national-suite transaction.
type NationalSeal struct {
	PublicKey []byte // 64 bytes, X || Y
	R         *big.Int
	S         *big.Int
}

// Suite implements Seal.
func (*NationalSeal) Suite() Suite { return SuiteNational }

// Signed implements Seal.
func (s *NationalSeal) Signed() bool {
	return len(s.PublicKey) == PublicKeyLength && isSet(s.R) && isSet(s.S)
}

func (*NationalSeal) isSeal() {}

// New returns an empty transaction for the given suite. chainID is only
// meaningful for the standard suite.
func New(suite Suite, chainID uint64) *Transaction {
	t := &Transaction{}
	if suite == SuiteNational {
		t.Seal = &NationalSeal{}
	} else {
		t.Seal = &StandardSeal{ChainID: chainID}
	}
	return t
}

// Suite returns the transaction's suite. A transaction without a seal is
// treated as standard.
func (t *Transaction) Suite() Suite {
	if t.Seal == nil {
		return SuiteStandard
	}
	return t.Seal.Suite()
}

// ChainID returns the bound chain id (standard suite only).
func (t *Transaction) ChainID() uint64 {
	if s, ok := t.Seal.(*StandardSeal); ok {
		return s.ChainID
	}
	return 0
}

// Signed reports whether the trailing signature fields are populated.
func (t *Transaction) Signed() bool {
	return t.Seal != nil && t.Seal.Signed()
}

// IsContractCreation reports whether the transaction deploys a contract.
func (t *Transaction) IsContractCreation() bool {
	return t.To == nil
}

func isSet(n *big.Int) bool {
	return n != nil && n.Sign() > 0
}
