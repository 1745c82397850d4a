package abi

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// DecodeValues decodes a parameter block (for example call return data)
// into Go values of the given types.
func DecodeValues(types []string, data []byte) ([]interface{}, error) {
	args, err := Arguments(types)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		if len(data) != 0 {
			return nil, errors.Wrapf(ErrInvalidArgument, "%d bytes of data for no values", len(data))
		}
		return []interface{}{}, nil
	}
	values, err := args.Unpack(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return values, nil
}

// DecodeCall checks the selector of a call payload against signature and
// decodes its parameters.
func DecodeCall(signature string, data []byte) (*Signature, []interface{}, error) {
	sig, err := ParseSignature(signature)
	if err != nil {
		return nil, nil, err
	}
	if len(data) < SelectorLength {
		return nil, nil, errors.Wrapf(ErrInvalidArgument, "call data shorter than selector: %d bytes", len(data))
	}
	want := sig.Selector()
	if !bytes.Equal(data[:SelectorLength], want[:]) {
		return nil, nil, errors.Wrapf(ErrInvalidArgument, "selector %x does not match %s (%x)",
			data[:SelectorLength], sig, want)
	}
	values, err := DecodeValues(sig.Types, data[SelectorLength:])
	if err != nil {
		return nil, nil, err
	}
	return sig, values, nil
}

// FormatValue renders a decoded value for display: integers in decimal,
// byte strings and addresses in 0x hex, lists in brackets.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case string:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprint(v)
}
