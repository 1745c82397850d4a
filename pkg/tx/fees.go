package tx

import "math/big"

// Intrinsic gas schedule.
const (
	TxGas            = 21000 // every transaction
	TxCreationGas    = 32000 // additional for contract creation
	TxDataZeroGas    = 4     // per zero byte of data
	TxDataNonZeroGas = 68    // per non-zero byte of data
)

// DataFee returns the gas charged for the transaction's data payload.
func (t *Transaction) DataFee() *big.Int {
	var zeros, nonZeros int64
	for _, b := range t.Data {
		if b == 0 {
			zeros++
		} else {
			nonZeros++
		}
	}
	return big.NewInt(zeros*TxDataZeroGas + nonZeros*TxDataNonZeroGas)
}

// BaseFee returns the minimum gas the transaction needs: the data fee,
// the per-transaction charge and, for contract creation, the creation
// charge.
func (t *Transaction) BaseFee() *big.Int {
	fee := t.DataFee()
	fee.Add(fee, big.NewInt(TxGas))
	if t.IsContractCreation() {
		fee.Add(fee, big.NewInt(TxCreationGas))
	}
	return fee
}

// UpfrontCost returns gasLimit*gasPrice + value.
func (t *Transaction) UpfrontCost() *big.Int {
	cost := new(big.Int).Mul(orZero(t.GasLimit), orZero(t.GasPrice))
	return cost.Add(cost, orZero(t.Value))
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
