package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// EncodeCall returns Selector(signature) followed by the encoding of params
// as types.
func EncodeCall(signature string, types []string, params []interface{}) ([]byte, error) {
	body, err := EncodeParams(types, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "encode %s", signature)
	}
	sel := Selector(signature)
	return append(sel[:], body...), nil
}

// EncodeCallFromSignature derives the parameter types from the signature
// text and encodes a call. The selector is computed over the canonical
// signature.
func EncodeCallFromSignature(signature string, params ...interface{}) ([]byte, error) {
	sig, err := ParseSignature(signature)
	if err != nil {
		return nil, err
	}
	return EncodeCall(sig.String(), sig.Types, params)
}

// EncodeParams returns the parameter block for params without a selector.
// It is also used for constructor arguments appended to deployment code.
func EncodeParams(types []string, params []interface{}) ([]byte, error) {
	if len(types) != len(params) {
		return nil, errors.Wrapf(ErrArityMismatch, "%d types, %d values", len(types), len(params))
	}
	args, err := Arguments(types)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(params))
	for i, p := range params {
		v, err := coerce(args[i].Type, p)
		if err != nil {
			return nil, errors.WithMessagef(err, "param %d (%s)", i, types[i])
		}
		values[i] = v
	}

	out, err := args.Pack(values...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return out, nil
}

// Arguments resolves type names into go-ethereum arguments, rejecting
// types outside the supported set.
func Arguments(types []string) (gethabi.Arguments, error) {
	args := make(gethabi.Arguments, len(types))
	for i, name := range types {
		typ, err := gethabi.NewType(canonicalType(name), "", nil)
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedType, "%s: %v", name, err)
		}
		if !supported(typ) {
			return nil, errors.Wrapf(ErrUnsupportedType, "%s", name)
		}
		args[i] = gethabi.Argument{Type: typ}
	}
	return args, nil
}

func supported(t gethabi.Type) bool {
	switch t.T {
	case gethabi.IntTy, gethabi.UintTy:
		return t.Size >= 8 && t.Size <= 256 && t.Size%8 == 0
	case gethabi.FixedBytesTy:
		return t.Size >= 1 && t.Size <= 32
	case gethabi.BoolTy, gethabi.StringTy, gethabi.AddressTy, gethabi.BytesTy:
		return true
	case gethabi.SliceTy, gethabi.ArrayTy:
		return supported(*t.Elem)
	default:
		return false
	}
}

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// coerce converts v into the Go type go-ethereum packs for t.
//
// Accepted inputs beyond the exact type:
//
//	intN/uintN  Go integers, *big.Int, decimal or 0x strings, json.Number
//	bool        "true"/"false"
//	address     common.Address, 0x hex string, 20-byte slice
//	bytes       []byte, 0x hex string
//	bytesN      []byte or 0x hex string of at most N bytes (right padded)
//	T[], T[k]   any slice or array, or a JSON array string
func coerce(t gethabi.Type, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil value")
	}
	goType := t.GetType()
	// Integers and lists are always rebuilt so every integer is range checked.
	switch t.T {
	case gethabi.IntTy, gethabi.UintTy, gethabi.SliceTy, gethabi.ArrayTy:
	default:
		if reflect.TypeOf(v) == goType {
			return v, nil
		}
	}

	switch t.T {
	case gethabi.IntTy, gethabi.UintTy:
		n, err := toBig(v)
		if err != nil {
			return nil, err
		}
		if err := checkRange(t, n); err != nil {
			return nil, err
		}
		if goType == bigIntType {
			return n, nil
		}
		rv := reflect.New(goType).Elem()
		if t.T == gethabi.IntTy {
			rv.SetInt(n.Int64())
		} else {
			rv.SetUint(n.Uint64())
		}
		return rv.Interface(), nil

	case gethabi.BoolTy:
		if s, ok := v.(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidArgument, "bool %q", s)
			}
			return b, nil
		}

	case gethabi.StringTy:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}

	case gethabi.AddressTy:
		switch a := v.(type) {
		case *common.Address:
			if a != nil {
				return *a, nil
			}
		case string:
			if !common.IsHexAddress(a) {
				return nil, errors.Wrapf(ErrInvalidArgument, "address %q", a)
			}
			return common.HexToAddress(a), nil
		case []byte:
			if len(a) == common.AddressLength {
				return common.BytesToAddress(a), nil
			}
		}

	case gethabi.BytesTy:
		if s, ok := v.(string); ok {
			b, err := hexutil.Decode(s)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidArgument, "bytes %q: %v", s, err)
			}
			return b, nil
		}

	case gethabi.FixedBytesTy:
		raw, ok := v.([]byte)
		if s, isStr := v.(string); isStr {
			b, err := hexutil.Decode(s)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidArgument, "bytes%d %q: %v", t.Size, s, err)
			}
			raw, ok = b, true
		}
		if ok {
			if len(raw) > t.Size {
				return nil, errors.Wrapf(ErrInvalidArgument, "bytes%d: got %d bytes", t.Size, len(raw))
			}
			rv := reflect.New(goType).Elem()
			reflect.Copy(rv, reflect.ValueOf(raw))
			return rv.Interface(), nil
		}

	case gethabi.SliceTy, gethabi.ArrayTy:
		return coerceList(t, v)
	}

	return nil, errors.Wrapf(ErrInvalidArgument, "cannot use %T as %s", v, t.String())
}

func coerceList(t gethabi.Type, v interface{}) (interface{}, error) {
	if s, ok := v.(string); ok {
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var items []interface{}
		if err := dec.Decode(&items); err != nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "%s: expected JSON array: %v", t.String(), err)
		}
		v = items
	}

	src := reflect.ValueOf(v)
	if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
		return nil, errors.Wrapf(ErrInvalidArgument, "cannot use %T as %s", v, t.String())
	}
	if t.T == gethabi.ArrayTy && src.Len() != t.Size {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s: got %d elements", t.String(), src.Len())
	}

	goType := t.GetType()
	var dst reflect.Value
	if t.T == gethabi.ArrayTy {
		dst = reflect.New(goType).Elem()
	} else {
		dst = reflect.MakeSlice(goType, src.Len(), src.Len())
	}
	for i := 0; i < src.Len(); i++ {
		elem, err := coerce(*t.Elem, src.Index(i).Interface())
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		dst.Index(i).Set(reflect.ValueOf(elem))
	}
	return dst.Interface(), nil
}

func toBig(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, errors.Wrap(ErrInvalidArgument, "nil integer")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case json.Number:
		return parseBig(n.String())
	case string:
		return parseBig(n)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, errors.Wrapf(ErrInvalidArgument, "cannot use %T as integer", v)
}

func parseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidArgument, "integer %q", s)
	}
	return n, nil
}

func checkRange(t gethabi.Type, n *big.Int) error {
	if t.T == gethabi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return errors.Wrapf(ErrInvalidArgument, "%s out of range: %s", t.String(), n)
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
		return errors.Wrapf(ErrInvalidArgument, "%s out of range: %s", t.String(), n)
	}
	return nil
}

// EncodeDeploy returns deployment code followed by the encoded constructor
// arguments.
func EncodeDeploy(code []byte, types []string, params []interface{}) ([]byte, error) {
	if len(code) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "empty deployment code")
	}
	args, err := EncodeParams(types, params)
	if err != nil {
		return nil, errors.WithMessage(err, "encode constructor arguments")
	}
	var buf bytes.Buffer
	buf.Grow(len(code) + len(args))
	buf.Write(code)
	buf.Write(args)
	return buf.Bytes(), nil
}
