package crypto

import "github.com/pkg/errors"

var (
	// ErrInvalidPrivateKey is returned for a scalar outside the valid key range.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidSignature is returned for a malformed or non-verifying signature.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrPointNotOnCurve is returned when a public key is not a valid curve point.
	ErrPointNotOnCurve = errors.New("point not on curve")
	// ErrMalleableSignature is returned in strict mode when s exceeds half
	// the curve order. It matches ErrInvalidSignature with errors.Is.
	ErrMalleableSignature = errors.Wrap(ErrInvalidSignature, "s above half order")
	// ErrNonceExhausted is returned when the nonce source yields no usable
	// nonce within the attempt limit.
	ErrNonceExhausted = errors.New("nonce source exhausted")
)

// maxNonceAttempts bounds the re-sampling loops of both signing algorithms.
const maxNonceAttempts = 128
