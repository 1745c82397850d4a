package roles

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

func TestCreatorRandomID(t *testing.T) {
	seed := bytes.Repeat([]byte{0xab}, 16)

	a, err := NewCreator(tx.SuiteStandard, 0, bytes.NewReader(seed)).Create()
	require.NoError(t, err)
	b, err := NewCreator(tx.SuiteStandard, 0, bytes.NewReader(seed)).Create()
	require.NoError(t, err)
	assert.Equal(t, 0, a.RandomID.Cmp(b.RandomID))
	assert.LessOrEqual(t, a.RandomID.BitLen(), 128)
	assert.Positive(t, a.RandomID.Sign())

	fixed, err := NewCreator(tx.SuiteNational, 0, nil).WithRandomID(big.NewInt(42)).Create()
	require.NoError(t, err)
	assert.Equal(t, int64(42), fixed.RandomID.Int64())
	assert.Equal(t, tx.SuiteNational, fixed.Suite())
	assert.False(t, fixed.Signed())

	_, err = NewCreator(tx.SuiteStandard, 0, bytes.NewReader([]byte{1})).Create()
	assert.Error(t, err)
	_, err = NewCreator(tx.SuiteStandard, 0, nil).Create()
	assert.Error(t, err)
}

func TestCreatorRejects(t *testing.T) {
	_, err := NewCreator(tx.SuiteStandard, tx.MaxChainID+1, nil).WithRandomID(big.NewInt(1)).Create()
	assert.ErrorIs(t, err, tx.ErrFieldLengthViolation)

	_, err = NewCreator(tx.SuiteNational, 1, nil).WithRandomID(big.NewInt(1)).Create()
	assert.ErrorIs(t, err, tx.ErrMalformedTransaction)

	_, err = NewCreator(tx.Suite(3), 0, nil).WithRandomID(big.NewInt(1)).Create()
	assert.ErrorIs(t, err, tx.ErrUnknownSuite)

	created, err := NewCreator(tx.SuiteStandard, tx.MaxChainID, nil).WithRandomID(big.NewInt(1)).Create()
	require.NoError(t, err)
	assert.Equal(t, uint64(tx.MaxChainID), created.ChainID())
}

func TestConstructor(t *testing.T) {
	created, err := NewCreator(tx.SuiteStandard, 0, nil).WithRandomID(big.NewInt(1)).Create()
	require.NoError(t, err)
	c := NewConstructor(created)

	to := common.HexToAddress("0x0000000000000000000000000000000000000001")
	payload := []byte{1, 2}
	require.NoError(t, c.SetCallData(to, payload))
	payload[0] = 9
	assert.Equal(t, []byte{1, 2}, c.Finish().Data)
	assert.Equal(t, &to, c.Finish().To)

	require.NoError(t, c.SetValue(big.NewInt(5)))
	assert.Equal(t, int64(5), c.Finish().Value.Int64())
	require.NoError(t, c.SetValue(nil))
	assert.Equal(t, int64(0), c.Finish().Value.Int64())
	assert.ErrorIs(t, c.SetValue(big.NewInt(-1)), tx.ErrMalformedTransaction)

	assert.Error(t, c.SetCall(to, "add(uint256)"))
	assert.Error(t, c.SetDeploy(nil, nil, nil))
	assert.Equal(t, &to, c.Finish().To, "failed setters leave the transaction unchanged")
}

func TestValidate(t *testing.T) {
	transaction := buildCall(t, tx.SuiteStandard, 0, 20)
	signer, err := NewSigner(tx.SuiteStandard, testKey, newRand(21))
	require.NoError(t, err)

	err = NewVerifier(true).Validate(transaction)
	assert.ErrorIs(t, err, tx.ErrUnsigned)
	assert.NotErrorIs(t, err, ErrInsufficientGas)

	transaction.GasLimit = big.NewInt(21000)
	require.NoError(t, signer.Sign(transaction))
	err = NewVerifier(true).Validate(transaction)
	assert.ErrorIs(t, err, ErrInsufficientGas)
	assert.NotErrorIs(t, err, tx.ErrUnsigned)
}

func TestDecodeV(t *testing.T) {
	tests := []struct {
		v       int64
		chainID uint64
		recID   byte
		valid   bool
	}{
		{27, 0, 0, true},
		{28, 0, 1, true},
		{29, 0, 0, false},
		{26, 0, 0, false},
		{37, 1, 0, true},
		{38, 1, 1, true},
		{37, 2, 0, false},
		{27, 1, 0, false},
	}
	for _, tt := range tests {
		got, err := decodeV(big.NewInt(tt.v), tt.chainID)
		if !tt.valid {
			assert.Error(t, err, "v=%d chain=%d", tt.v, tt.chainID)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.recID, got)
	}
}
