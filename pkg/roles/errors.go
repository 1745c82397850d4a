package roles

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/suffix-labs/bcos-tx/pkg/tx"
)

// ErrAlreadySigned is returned when a signed transaction would be modified
// or signed a second time.
var ErrAlreadySigned = errors.New("transaction already signed")

// Signature error codes.
const (
	ErrCodeSuiteMismatch   = "SUITE_MISMATCH"    // signer suite differs from the transaction suite
	ErrCodeAlreadySigned   = "ALREADY_SIGNED"    // trailing fields already populated
	ErrCodeChainID         = "INVALID_CHAIN_ID"  // chain id cannot be folded into v
	ErrCodeSigningFailed   = "SIGNING_FAILED"    // digest or curve operation failed
	ErrCodeSelfCheckFailed = "SELF_CHECK_FAILED" // fresh signature did not verify
)

// SignatureError is returned by signers.
type SignatureError struct {
	Suite tx.Suite
	Code  string
	Cause error
}

func (e *SignatureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s signature error [%s]: %v", e.Suite, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s signature error [%s]", e.Suite, e.Code)
}

func (e *SignatureError) Unwrap() error {
	return e.Cause
}
