package tagstream

import "errors"

var (
	// ErrMissingStartMarker is returned when the stream does not begin with
	// the expected "VC-5" start-marker word.
	ErrMissingStartMarker = errors.New("tagstream: missing start marker")

	// ErrInvalidTag is returned when a required (non-negative) tag is not
	// recognized by the decoder.
	ErrInvalidTag = errors.New("tagstream: invalid or unrecognized required tag")

	// ErrSyntaxError is returned for structurally malformed segments, such
	// as a chunk whose declared payload runs past the end of the stream.
	ErrSyntaxError = errors.New("tagstream: syntax error")
)
