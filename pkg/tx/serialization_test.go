package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/bcos-tx/pkg/codec"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func sampleTx(suite Suite, chainID uint64) *Transaction {
	to := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	t := New(suite, chainID)
	t.RandomID = big.NewInt(0x1234)
	t.GasPrice = big.NewInt(30000000)
	t.GasLimit = big.NewInt(30000000)
	t.BlockLimit = big.NewInt(1000)
	t.To = &to
	t.Value = big.NewInt(0)
	t.Data = []byte{0xca, 0xfe}
	return t
}

func TestSerializeEmptyTransaction(t *testing.T) {
	tests := []struct {
		name             string
		tx               *Transaction
		includeSignature bool
		want             string
	}{
		{"standard unsigned form", New(SuiteStandard, 0), false, "c780808080808080"},
		{"standard wire form", New(SuiteStandard, 0), true, "ca80808080808080808080"},
		{"chain bound unsigned form", New(SuiteStandard, 1), false, "ca80808080808080018080"},
		{"national unsigned form", New(SuiteNational, 0), false, "c780808080808080"},
		{"national wire form", New(SuiteNational, 0), true, "ca80808080808080808080"},
		{"no seal wire form", &Transaction{}, true, "ca80808080808080808080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.tx, tt.includeSignature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}
}

func TestSerializeDoesNotMutate(t *testing.T) {
	tx := sampleTx(SuiteStandard, 7)
	before, err := json.Marshal(tx)
	require.NoError(t, err)

	_, err = Serialize(tx, false)
	require.NoError(t, err)

	after, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Nil(t, tx.Seal.(*StandardSeal).V)
}

func TestSerializeChainBinding(t *testing.T) {
	a, err := Serialize(sampleTx(SuiteStandard, 1), false)
	require.NoError(t, err)
	b, err := Serialize(sampleTx(SuiteStandard, 2), false)
	require.NoError(t, err)
	c, err := Serialize(sampleTx(SuiteStandard, 0), false)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)

	item, err := codec.Decode(a)
	require.NoError(t, err)
	require.Equal(t, 10, item.Len())
	assert.Equal(t, []byte{1}, item.Items()[7].Bytes())
	assert.Empty(t, item.Items()[8].Bytes())
	assert.Empty(t, item.Items()[9].Bytes())

	item, err = codec.Decode(c)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Len())
}

func TestSerializeFieldViolations(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)

	tests := []struct {
		name   string
		mutate func(*Transaction)
		code   string
		target error
	}{
		{
			name:   "random id over 32 bytes",
			mutate: func(tx *Transaction) { tx.RandomID = tooBig },
			code:   ErrCodeTooLong,
			target: ErrFieldLengthViolation,
		},
		{
			name:   "v over one byte",
			mutate: func(tx *Transaction) { tx.Seal = &StandardSeal{V: big.NewInt(256), R: big.NewInt(1), S: big.NewInt(1)} },
			code:   ErrCodeWrongLength,
			target: ErrFieldLengthViolation,
		},
		{
			name:   "negative value",
			mutate: func(tx *Transaction) { tx.Value = big.NewInt(-1) },
			code:   ErrCodeNegative,
			target: ErrMalformedTransaction,
		},
		{
			name: "public key over 64 bytes",
			mutate: func(tx *Transaction) {
				tx.Seal = &NationalSeal{PublicKey: bytes.Repeat([]byte{1}, 65), R: big.NewInt(1), S: big.NewInt(1)}
			},
			code:   ErrCodeTooLong,
			target: ErrFieldLengthViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := sampleTx(SuiteStandard, 0)
			tt.mutate(tx)
			_, err := Serialize(tx, true)
			require.Error(t, err)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.code, fe.Code)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestNormalize(t *testing.T) {
	zeroable := Field{Name: "data", AllowZero: true}
	less := Field{Name: "gasPrice", Length: 32, AllowLess: true}
	fixed := Field{Name: "to", Length: 20, AllowZero: true}

	got, err := normalize(less, []byte{0})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = normalize(zeroable, []byte{0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)

	got, err = normalize(less, []byte{0, 0, 5})
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, got)

	_, err = normalize(fixed, make([]byte, 19))
	assert.ErrorIs(t, err, ErrFieldLengthViolation)

	got, err = normalize(fixed, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got)
}

func TestParseRoundTrip(t *testing.T) {
	std := sampleTx(SuiteStandard, 5)
	std.Seal = &StandardSeal{
		ChainID: 5,
		V:       big.NewInt(35 + 2*5 + 1),
		R:       new(big.Int).SetBytes(bytes.Repeat([]byte{0x11}, 32)),
		S:       big.NewInt(0x42),
	}

	pub := append([]byte{0, 0}, bytes.Repeat([]byte{0x22}, 62)...)
	nat := sampleTx(SuiteNational, 0)
	nat.To = nil
	nat.Seal = &NationalSeal{
		PublicKey: pub,
		R:         big.NewInt(7),
		S:         big.NewInt(9),
	}

	for _, tx := range []*Transaction{std, nat} {
		t.Run(tx.Suite().String(), func(t *testing.T) {
			enc, err := tx.MarshalBinary()
			require.NoError(t, err)

			got, err := Parse(enc, tx.Suite())
			require.NoError(t, err)
			assert.Equal(t, tx.Suite(), got.Suite())
			assert.Equal(t, tx.ChainID(), got.ChainID())
			assert.Equal(t, 0, tx.GasPrice.Cmp(got.GasPrice))
			assert.Equal(t, tx.To, got.To)
			assert.Equal(t, tx.Data, got.Data)
			assert.True(t, got.Signed())

			again, err := got.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, enc, again)
		})
	}

	parsed, err := Parse(mustMarshal(t, nat), SuiteNational)
	require.NoError(t, err)
	assert.Equal(t, pub, parsed.Seal.(*NationalSeal).PublicKey)
}

func mustMarshal(t *testing.T, tx *Transaction) []byte {
	t.Helper()
	b, err := tx.MarshalBinary()
	require.NoError(t, err)
	return b
}

func TestParseUnsigned(t *testing.T) {
	tx := sampleTx(SuiteStandard, 0)
	enc, err := Serialize(tx, false)
	require.NoError(t, err)

	got, err := Parse(enc, SuiteStandard)
	require.NoError(t, err)
	assert.False(t, got.Signed())
	assert.Equal(t, uint64(0), got.ChainID())
}

func TestParseChainID(t *testing.T) {
	for v, want := range map[int64]uint64{27: 0, 28: 0, 35: 0, 36: 0, 37: 1, 38: 1, 255: 110} {
		assert.Equal(t, want, chainIDFromV(big.NewInt(v)), "v=%d", v)
	}
}

func TestParseRejects(t *testing.T) {
	empty := codec.Bytes(nil)
	fields := func(n int) []codec.Item {
		out := make([]codec.Item, n)
		for i := range out {
			out[i] = empty
		}
		return out
	}
	encode := func(item codec.Item) []byte {
		b, err := codec.Encode(item)
		require.NoError(t, err)
		return b
	}

	nonCanonical := fields(10)
	nonCanonical[1] = codec.Bytes([]byte{0, 1})

	nested := fields(10)
	nested[6] = codec.List()

	shortTo := fields(10)
	shortTo[4] = codec.Bytes(make([]byte, 5))

	longR := fields(10)
	longR[8] = codec.Bytes(bytes.Repeat([]byte{1}, 33))

	tests := []struct {
		name   string
		data   []byte
		target error
	}{
		{"not a list", encode(codec.Bytes([]byte("dog"))), ErrMalformedTransaction},
		{"wrong field count", encode(codec.List(fields(8)...)), ErrMalformedTransaction},
		{"non canonical integer", encode(codec.List(nonCanonical...)), ErrMalformedTransaction},
		{"nested list field", encode(codec.List(nested...)), ErrMalformedTransaction},
		{"short address", encode(codec.List(shortTo...)), ErrFieldLengthViolation},
		{"oversized r", encode(codec.List(longR...)), ErrFieldLengthViolation},
		{"bad framing", mustHex(t, "c3808080ff"), codec.ErrMalformedEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data, SuiteStandard)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	_, err := Parse(encode(codec.List(fields(7)...)), Suite(9))
	assert.ErrorIs(t, err, ErrUnknownSuite)
}

func TestFees(t *testing.T) {
	tx := sampleTx(SuiteStandard, 0)
	tx.Data = []byte{0, 1, 0, 2}
	assert.Equal(t, int64(2*TxDataZeroGas+2*TxDataNonZeroGas), tx.DataFee().Int64())
	assert.Equal(t, int64(144+TxGas), tx.BaseFee().Int64())

	tx.To = nil
	assert.Equal(t, int64(144+TxGas+TxCreationGas), tx.BaseFee().Int64())

	tx.GasLimit = big.NewInt(10)
	tx.GasPrice = big.NewInt(3)
	tx.Value = big.NewInt(5)
	assert.Equal(t, int64(35), tx.UpfrontCost().Int64())

	assert.Equal(t, int64(0), (&Transaction{}).UpfrontCost().Int64())
}

func TestJSONRoundTrip(t *testing.T) {
	std := sampleTx(SuiteStandard, 3)
	std.Seal.(*StandardSeal).V = big.NewInt(35 + 6)
	std.Seal.(*StandardSeal).R = big.NewInt(1)
	std.Seal.(*StandardSeal).S = big.NewInt(2)

	nat := sampleTx(SuiteNational, 0)
	nat.Seal = &NationalSeal{PublicKey: bytes.Repeat([]byte{3}, 64), R: big.NewInt(4), S: big.NewInt(5)}

	for _, tx := range []*Transaction{std, nat} {
		t.Run(tx.Suite().String(), func(t *testing.T) {
			out, err := json.Marshal(tx)
			require.NoError(t, err)

			var got Transaction
			require.NoError(t, json.Unmarshal(out, &got))

			want, err := tx.MarshalBinary()
			require.NoError(t, err)
			have, err := got.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, want, have)
			assert.Equal(t, tx.ChainID(), got.ChainID())
		})
	}

	out, err := json.Marshal(std)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"gasPrice":"0x1c9c380"`)
	assert.Contains(t, string(out), `"suite":"standard"`)

	var bad Transaction
	err = json.Unmarshal([]byte(`{"suite":"national","publicKey":"0x01"}`), &bad)
	assert.ErrorIs(t, err, ErrFieldLengthViolation)
}

func TestRawJSON(t *testing.T) {
	raw, err := New(SuiteStandard, 0).RawJSON()
	require.NoError(t, err)
	require.Len(t, raw, 10)
	for _, f := range raw {
		assert.Equal(t, "0x", f)
	}
}

func TestParseSuite(t *testing.T) {
	for name, want := range map[string]Suite{"standard": SuiteStandard, "ecdsa": SuiteStandard, "national": SuiteNational, "sm": SuiteNational} {
		got, err := ParseSuite(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSuite("rsa")
	assert.ErrorIs(t, err, ErrUnknownSuite)
}
