// Package tx serialization implements the canonical field list encoding.
//
// Serialize walks the suite's field table in order, applies each field's
// storage rules (AllowLess, AllowZero, declared length) and encodes the
// resulting list with package codec.
//
// The signing form (includeSignature == false) differs from the wire form
// only in the trailing fields:
//
//	standard, ChainID == 0:  trailing fields omitted
//	standard, ChainID  > 0:  v = ChainID, r = "", s = ""
//	national:                trailing fields omitted
//
// Building the signing form never modifies the transaction.
package tx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/codec"
)

// Indexes into the field table.
const (
	idxRandomID = iota
	idxGasPrice
	idxGasLimit
	idxBlockLimit
	idxTo
	idxValue
	idxData
	idxSealKey // v or publicKey
	idxR
	idxS
)

// MaxChainID is the largest chain id whose signed v still fits in one byte.
const MaxChainID = 109

// Serialize returns the encoded field list of t.
//
// With includeSignature set, the full wire form is produced (unsigned
// transactions carry empty trailing fields). Without it, the signing form
// described in the package documentation is produced.
func Serialize(t *Transaction, includeSignature bool) ([]byte, error) {
	fields, err := fieldList(t, includeSignature)
	if err != nil {
		return nil, err
	}

	items := make([]codec.Item, len(fields))
	for i, f := range fields {
		items[i] = codec.Bytes(f)
	}
	return codec.Encode(codec.List(items...))
}

// MarshalBinary returns the wire encoding of t.
func (t *Transaction) MarshalBinary() ([]byte, error) {
	return Serialize(t, true)
}

// RawFields returns the normalized wire field values of t in table order.
func (t *Transaction) RawFields() ([][]byte, error) {
	return fieldList(t, true)
}

func fieldList(t *Transaction, includeSignature bool) ([][]byte, error) {
	table := Fields(t.Suite())
	out := make([][]byte, 0, len(table))

	add := func(idx int, raw []byte) error {
		v, err := normalize(table[idx], raw)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	}
	addInt := func(idx int, n *big.Int) error {
		if n != nil && n.Sign() < 0 {
			return &FieldError{Field: table[idx].Name, Code: ErrCodeNegative}
		}
		return add(idx, intBytes(n))
	}

	ints := []struct {
		idx int
		n   *big.Int
	}{
		{idxRandomID, t.RandomID},
		{idxGasPrice, t.GasPrice},
		{idxGasLimit, t.GasLimit},
		{idxBlockLimit, t.BlockLimit},
	}
	for _, f := range ints {
		if err := addInt(f.idx, f.n); err != nil {
			return nil, err
		}
	}

	var to []byte
	if t.To != nil {
		to = t.To.Bytes()
	}
	if err := add(idxTo, to); err != nil {
		return nil, err
	}
	if err := addInt(idxValue, t.Value); err != nil {
		return nil, err
	}
	if err := add(idxData, t.Data); err != nil {
		return nil, err
	}

	switch s := t.Seal.(type) {
	case nil:
		if includeSignature {
			out = append(out, []byte{}, []byte{}, []byte{})
		}
	case *StandardSeal:
		if !includeSignature {
			if s.ChainID == 0 {
				break
			}
			if err := addInt(idxSealKey, new(big.Int).SetUint64(s.ChainID)); err != nil {
				return nil, err
			}
			out = append(out, []byte{}, []byte{})
			break
		}
		if err := addInt(idxSealKey, s.V); err != nil {
			return nil, err
		}
		if err := addInt(idxR, s.R); err != nil {
			return nil, err
		}
		if err := addInt(idxS, s.S); err != nil {
			return nil, err
		}
	case *NationalSeal:
		if !includeSignature {
			break
		}
		if err := add(idxSealKey, s.PublicKey); err != nil {
			return nil, err
		}
		if err := addInt(idxR, s.R); err != nil {
			return nil, err
		}
		if err := addInt(idxS, s.S); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// normalize applies a field's storage rules to raw.
func normalize(f Field, raw []byte) ([]byte, error) {
	if len(raw) == 1 && raw[0] == 0 && !f.AllowZero {
		return []byte{}, nil
	}
	if f.AllowLess {
		raw = stripLeadingZeros(raw)
		if f.Length > 0 && len(raw) > f.Length {
			return nil, &FieldError{Field: f.Name, Code: ErrCodeTooLong, Max: f.Length, Got: len(raw)}
		}
		return raw, nil
	}
	if f.Length > 0 && len(raw) != 0 && len(raw) != f.Length {
		return nil, &FieldError{Field: f.Name, Code: ErrCodeWrongLength, Max: f.Length, Got: len(raw)}
	}
	if raw == nil {
		raw = []byte{}
	}
	return raw, nil
}

func stripLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

func intBytes(n *big.Int) []byte {
	if n == nil {
		return []byte{}
	}
	return n.Bytes()
}

// Parse decodes a wire-encoded transaction of the given suite.
//
// Both the signed form (ten fields) and the unsigned form (seven fields)
// are accepted. Integer fields must be canonical (no leading zero bytes)
// and no field may exceed its declared length. A national public key
// shorter than 64 bytes is left-padded back to 64 bytes.
//
// For the standard suite the bound chain id is recovered from v: when
// v >= 35 it is (v - 35) / 2, otherwise zero.
func Parse(data []byte, suite Suite) (*Transaction, error) {
	if !suite.Valid() {
		return nil, errors.Wrapf(ErrUnknownSuite, "suite %d", suite)
	}

	item, err := codec.Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, "decode transaction")
	}
	if !item.IsList() {
		return nil, errors.Wrap(ErrMalformedTransaction, "top-level value is not a list")
	}

	table := Fields(suite)
	elems := item.Items()
	if len(elems) != len(table) && len(elems) != commonFieldCount {
		return nil, errors.Wrapf(ErrMalformedTransaction,
			"expected %d or %d fields, got %d", commonFieldCount, len(table), len(elems))
	}

	raw := make([][]byte, len(elems))
	for i, el := range elems {
		f := table[i]
		if el.IsList() {
			return nil, &FieldError{Field: f.Name, Code: ErrCodeNotBuffer}
		}
		b := el.Bytes()
		if f.Length > 0 && len(b) > f.Length {
			return nil, &FieldError{Field: f.Name, Code: ErrCodeTooLong, Max: f.Length, Got: len(b)}
		}
		if !f.AllowLess && f.Length > 0 && len(b) != 0 && len(b) != f.Length {
			return nil, &FieldError{Field: f.Name, Code: ErrCodeWrongLength, Max: f.Length, Got: len(b)}
		}
		raw[i] = b
	}

	intAt := func(idx int) (*big.Int, error) {
		n, err := codec.Bytes(raw[idx]).BigInt()
		if err != nil {
			return nil, &FieldError{Field: table[idx].Name, Code: ErrCodeNotCanonical}
		}
		return n, nil
	}

	t := &Transaction{}
	for _, f := range []struct {
		idx int
		dst **big.Int
	}{
		{idxRandomID, &t.RandomID},
		{idxGasPrice, &t.GasPrice},
		{idxGasLimit, &t.GasLimit},
		{idxBlockLimit, &t.BlockLimit},
		{idxValue, &t.Value},
	} {
		if *f.dst, err = intAt(f.idx); err != nil {
			return nil, err
		}
	}

	if len(raw[idxTo]) == AddressLength {
		to := common.BytesToAddress(raw[idxTo])
		t.To = &to
	}
	t.Data = raw[idxData]

	signed := len(elems) == len(table)
	switch suite {
	case SuiteStandard:
		seal := &StandardSeal{}
		if signed {
			if seal.V, err = intAt(idxSealKey); err != nil {
				return nil, err
			}
			if seal.R, err = intAt(idxR); err != nil {
				return nil, err
			}
			if seal.S, err = intAt(idxS); err != nil {
				return nil, err
			}
			seal.ChainID = chainIDFromV(seal.V)
		}
		t.Seal = seal
	case SuiteNational:
		seal := &NationalSeal{}
		if signed {
			if len(raw[idxSealKey]) > 0 {
				seal.PublicKey = common.LeftPadBytes(raw[idxSealKey], PublicKeyLength)
			}
			if seal.R, err = intAt(idxR); err != nil {
				return nil, err
			}
			if seal.S, err = intAt(idxS); err != nil {
				return nil, err
			}
		}
		t.Seal = seal
	}

	return t, nil
}

// chainIDFromV infers the bound chain id from a signed v value.
func chainIDFromV(v *big.Int) uint64 {
	if v == nil || v.Cmp(big.NewInt(35)) < 0 {
		return 0
	}
	c := new(big.Int).Sub(v, big.NewInt(35))
	c.Rsh(c, 1)
	if !c.IsUint64() {
		return 0
	}
	return c.Uint64()
}
