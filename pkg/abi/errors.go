package abi

import "github.com/pkg/errors"

var (
	// ErrUnsupportedType is returned for a type outside the supported set:
	// bool, intN, uintN, address, bytesN, bytes, string and arrays of those.
	ErrUnsupportedType = errors.New("unsupported abi type")
	// ErrArityMismatch is returned when the number of values does not match
	// the number of types.
	ErrArityMismatch = errors.New("abi arity mismatch")
	// ErrInvalidSignature is returned for malformed function signature text.
	ErrInvalidSignature = errors.New("invalid function signature")
	// ErrInvalidArgument is returned when a value cannot be encoded as its
	// declared type, or return data cannot be decoded.
	ErrInvalidArgument = errors.New("invalid abi argument")
)
