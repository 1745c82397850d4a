package tx

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// txJSON is the JSON view of a transaction. Every value is a 0x hex string.
type txJSON struct {
	Suite      string          `json:"suite"`
	RandomID   *hexutil.Big    `json:"randomId"`
	GasPrice   *hexutil.Big    `json:"gasPrice"`
	GasLimit   *hexutil.Big    `json:"gasLimit"`
	BlockLimit *hexutil.Big    `json:"blockLimit"`
	To         *common.Address `json:"to"`
	Value      *hexutil.Big    `json:"value"`
	Data       hexutil.Bytes   `json:"data"`

	ChainID   *hexutil.Uint64 `json:"chainId,omitempty"`
	V         *hexutil.Big    `json:"v,omitempty"`
	PublicKey hexutil.Bytes   `json:"publicKey,omitempty"`
	R         *hexutil.Big    `json:"r,omitempty"`
	S         *hexutil.Big    `json:"s,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	enc := txJSON{
		Suite:      t.Suite().String(),
		RandomID:   hexBig(t.RandomID),
		GasPrice:   hexBig(t.GasPrice),
		GasLimit:   hexBig(t.GasLimit),
		BlockLimit: hexBig(t.BlockLimit),
		To:         t.To,
		Value:      hexBig(t.Value),
		Data:       hexutil.Bytes(t.Data),
	}
	if enc.Data == nil {
		enc.Data = hexutil.Bytes{}
	}

	switch s := t.Seal.(type) {
	case *StandardSeal:
		if s.ChainID != 0 {
			id := hexutil.Uint64(s.ChainID)
			enc.ChainID = &id
		}
		if s.V != nil {
			enc.V = (*hexutil.Big)(s.V)
		}
		if s.R != nil {
			enc.R = (*hexutil.Big)(s.R)
		}
		if s.S != nil {
			enc.S = (*hexutil.Big)(s.S)
		}
	case *NationalSeal:
		enc.PublicKey = s.PublicKey
		if s.R != nil {
			enc.R = (*hexutil.Big)(s.R)
		}
		if s.S != nil {
			enc.S = (*hexutil.Big)(s.S)
		}
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transaction) UnmarshalJSON(input []byte) error {
	var dec txJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	suite := SuiteStandard
	if dec.Suite != "" {
		var err error
		if suite, err = ParseSuite(dec.Suite); err != nil {
			return err
		}
	}

	*t = Transaction{
		RandomID:   bigOf(dec.RandomID),
		GasPrice:   bigOf(dec.GasPrice),
		GasLimit:   bigOf(dec.GasLimit),
		BlockLimit: bigOf(dec.BlockLimit),
		To:         dec.To,
		Value:      bigOf(dec.Value),
		Data:       dec.Data,
	}

	switch suite {
	case SuiteNational:
		if dec.V != nil || dec.ChainID != nil {
			return errors.Wrap(ErrMalformedTransaction, "national transaction carries v or chainId")
		}
		if len(dec.PublicKey) != 0 && len(dec.PublicKey) != PublicKeyLength {
			return &FieldError{Field: "publicKey", Code: ErrCodeWrongLength, Max: PublicKeyLength, Got: len(dec.PublicKey)}
		}
		t.Seal = &NationalSeal{PublicKey: dec.PublicKey, R: bigOf(dec.R), S: bigOf(dec.S)}
	default:
		if len(dec.PublicKey) != 0 {
			return errors.Wrap(ErrMalformedTransaction, "standard transaction carries publicKey")
		}
		seal := &StandardSeal{V: bigOf(dec.V), R: bigOf(dec.R), S: bigOf(dec.S)}
		if dec.ChainID != nil {
			seal.ChainID = uint64(*dec.ChainID)
		} else {
			seal.ChainID = chainIDFromV(seal.V)
		}
		t.Seal = seal
	}
	return nil
}

// RawJSON returns the wire field list as 0x hex strings in table order.
func (t *Transaction) RawJSON() ([]string, error) {
	fields, err := t.RawFields()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = hexutil.Encode(f)
	}
	return out, nil
}

func hexBig(n *big.Int) *hexutil.Big {
	return (*hexutil.Big)(orZero(n))
}

func bigOf(h *hexutil.Big) *big.Int {
	if h == nil {
		return nil
	}
	return h.ToInt()
}
