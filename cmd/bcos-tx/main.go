// bcos-tx builds, signs and checks BCOS transactions from the command line.
//
// Example usage:
//
//	# Generate a national (SM2) key
//	bcos-tx keygen --suite national
//
//	# Encode call data
//	bcos-tx encode-call "transfer(address,uint256)" 0x5c8a...8091 100
//
//	# Sign a contract call and print the submission hex
//	bcos-tx sign --key $KEY --to 0x5c8a...8091 --sig "add(uint256)" --arg 15 --block-height 1200
//
//	# Recover the sender of a signed transaction
//	bcos-tx recover 0xf8...
//
// Settings come from the environment (see `bcos-tx --help`) and may be
// overridden by flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
