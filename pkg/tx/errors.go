// Package tx error types.
//
// Sentinel errors identify the failure class and can be matched with
// errors.Is. FieldError carries the offending field and a Code for
// programmatic handling.
package tx

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFieldLengthViolation is returned when a field exceeds or does not
	// match its declared length.
	ErrFieldLengthViolation = errors.New("field length violation")
	// ErrMalformedTransaction is returned when a decoded value is not a
	// transaction of the expected suite.
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrUnsigned is returned when a signed transaction is required.
	ErrUnsigned = errors.New("transaction is not signed")
	// ErrUnknownSuite is returned for an unrecognized suite name.
	ErrUnknownSuite = errors.New("unknown suite")
)

// Error codes carried by FieldError.
const (
	ErrCodeTooLong      = "FIELD_TOO_LONG"      // AllowLess field longer than declared
	ErrCodeWrongLength  = "FIELD_WRONG_LENGTH"  // fixed field of the wrong length
	ErrCodeNegative     = "FIELD_NEGATIVE"      // negative integer value
	ErrCodeNotCanonical = "FIELD_NOT_CANONICAL" // integer with leading zero bytes
	ErrCodeNotBuffer    = "FIELD_NOT_BUFFER"    // nested list where a buffer is expected
)

// FieldError is returned when a field value does not fit the field table.
type FieldError struct {
	Field string // field name, e.g. "to"
	Code  string // one of the ErrCode constants
	Max   int    // declared length (0 if unbounded)
	Got   int    // actual length
}

func (e *FieldError) Error() string {
	switch e.Code {
	case ErrCodeTooLong:
		return fmt.Sprintf("field %s [%s]: %d bytes exceeds maximum of %d", e.Field, e.Code, e.Got, e.Max)
	case ErrCodeWrongLength:
		return fmt.Sprintf("field %s [%s]: must be %d bytes, got %d", e.Field, e.Code, e.Max, e.Got)
	default:
		return fmt.Sprintf("field %s [%s]", e.Field, e.Code)
	}
}

// Unwrap maps the code to its sentinel error.
func (e *FieldError) Unwrap() error {
	switch e.Code {
	case ErrCodeTooLong, ErrCodeWrongLength:
		return ErrFieldLengthViolation
	default:
		return ErrMalformedTransaction
	}
}
