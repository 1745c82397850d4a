package codec

import "github.com/pkg/errors"

// ErrMalformedEncoding is returned when bytes are not a canonical encoding
// of a single value.
var ErrMalformedEncoding = errors.New("malformed encoding")
