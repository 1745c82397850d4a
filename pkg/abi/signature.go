// Package abi builds and reads contract call payloads.
//
// A call payload is a 4-byte selector followed by the parameter block:
//
//	selector = Keccak-256(signature)[0:4]
//	params   = head slots (32 bytes each) || tails of dynamic values
//
// Static values (integers, addresses, booleans, bytesN) are stored in their
// head slot. Dynamic values (bytes, string, T[]) store an offset in their
// head slot, relative to the start of the parameter block, and append their
// content after all head slots. Packing and unpacking are delegated to
// go-ethereum's accounts/abi; this package restricts the type set, converts
// loosely typed inputs (CLI strings, JSON numbers) and computes selectors.
//
// References:
//   - https://docs.soliditylang.org/en/latest/abi-spec.html
package abi

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Signature is a parsed function signature such as "transfer(address,uint256)".
type Signature struct {
	Name  string
	Types []string
}

var signatureRe = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$]*)\((.*)\)$`)

// ParseSignature parses function signature text.
//
// Whitespace is ignored and the aliases uint, int, uint[], int[] are
// rewritten to their 256-bit forms, so String returns the canonical text
// used for the selector.
//
// Example:
//
//	sig, err := abi.ParseSignature("set(string, uint)")
//	// sig.String() == "set(string,uint256)"
func ParseSignature(text string) (*Signature, error) {
	compact := strings.Join(strings.Fields(text), "")
	m := signatureRe.FindStringSubmatch(compact)
	if m == nil {
		return nil, errors.Wrapf(ErrInvalidSignature, "%q", text)
	}

	sig := &Signature{Name: m[1], Types: []string{}}
	if m[2] == "" {
		return sig, nil
	}
	for _, t := range strings.Split(m[2], ",") {
		if t == "" {
			return nil, errors.Wrapf(ErrInvalidSignature, "%q: empty parameter type", text)
		}
		sig.Types = append(sig.Types, canonicalType(t))
	}
	return sig, nil
}

// String returns the canonical signature text.
func (s *Signature) String() string {
	return s.Name + "(" + strings.Join(s.Types, ",") + ")"
}

// Selector returns the selector of the canonical signature text.
func (s *Signature) Selector() [4]byte {
	return Selector(s.String())
}

func canonicalType(t string) string {
	base, suffix := t, ""
	if i := strings.IndexByte(t, '['); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	}
	return base + suffix
}
