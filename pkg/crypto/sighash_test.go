package crypto

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjfoc/gmsm/sm2"

	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

func unsignedTx(suite tx.Suite, chainID uint64) *tx.Transaction {
	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	t := tx.New(suite, chainID)
	t.RandomID = big.NewInt(99)
	t.GasPrice = big.NewInt(1)
	t.GasLimit = big.NewInt(100000)
	t.BlockLimit = big.NewInt(500)
	t.To = &to
	t.Data = []byte{1, 2, 3}
	return t
}

func TestSigningHash(t *testing.T) {
	for _, suite := range []tx.Suite{tx.SuiteStandard, tx.SuiteNational} {
		t.Run(suite.String(), func(t *testing.T) {
			tr := unsignedTx(suite, 0)
			unsigned, err := tx.Serialize(tr, false)
			require.NoError(t, err)

			got, err := SigningHash(tr)
			require.NoError(t, err)
			assert.Equal(t, DigestFor(suite).Sum256(unsigned), got)
		})
	}
}

func TestSigningHashChainBinding(t *testing.T) {
	a, err := SigningHash(unsignedTx(tx.SuiteStandard, 1))
	require.NoError(t, err)
	b, err := SigningHash(unsignedTx(tx.SuiteStandard, 2))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNationalSigningHashMatchesGmsm(t *testing.T) {
	kp, err := GenerateSM2KeyPair(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	tr := unsignedTx(tx.SuiteNational, 0)

	h, err := NationalSigningHash(tr, kp.PublicKey())
	require.NoError(t, err)

	unsigned, err := tx.Serialize(tr, false)
	require.NoError(t, err)
	r, s, err := kp.Sign(unsigned, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	assert.True(t, sm2.Sm2Verify(gmsmPublic(kp), unsigned, SM2UserID, r, s))
	assert.True(t, kp.VerifyDigest(h, r, s))

	_, err = NationalSigningHash(tr, make([]byte, 64))
	assert.ErrorIs(t, err, ErrPointNotOnCurve)
}

func TestTransactionHash(t *testing.T) {
	tr := unsignedTx(tx.SuiteStandard, 0)
	before, err := TransactionHash(tr)
	require.NoError(t, err)

	tr.Seal = &tx.StandardSeal{V: big.NewInt(27), R: big.NewInt(1), S: big.NewInt(2)}
	after, err := TransactionHash(tr)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	encoded, err := tr.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, DigestStandard(encoded), after)
}

func TestSigningHashFieldError(t *testing.T) {
	tr := unsignedTx(tx.SuiteStandard, 0)
	tr.GasPrice = big.NewInt(-1)
	_, err := SigningHash(tr)
	assert.ErrorIs(t, err, tx.ErrMalformedTransaction)
}

func TestSuiteAddressDigest(t *testing.T) {
	kp, err := GenerateSM2KeyPair(rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	nat, err := SuiteAddress(tx.SuiteNational, kp.PublicKey())
	require.NoError(t, err)
	h := DigestNational(kp.PublicKey())
	assert.Equal(t, common.BytesToAddress(h[12:]), nat)

	fromPriv, err := PrivateKeyToAddress(tx.SuiteNational, kp.PrivateKey())
	require.NoError(t, err)
	assert.Equal(t, nat, fromPriv)

	_, err = AddressOf(Keccak256, []byte{1, 2})
	assert.ErrorIs(t, err, ErrPointNotOnCurve)

	_, err = PrivateKeyToPublic(tx.Suite(7), keyOne())
	assert.ErrorIs(t, err, tx.ErrUnknownSuite)
}
