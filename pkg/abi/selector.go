package abi

import "github.com/suffix-labs/bcos-tx/pkg/crypto"

// SelectorLength is the length of a function selector.
const SelectorLength = 4

// Selector returns the first four bytes of Keccak-256(signature). The text
// is hashed as given; use ParseSignature to canonicalize it first.
func Selector(signature string) [4]byte {
	h := crypto.DigestStandard([]byte(signature))
	var sel [4]byte
	copy(sel[:], h[:SelectorLength])
	return sel
}
