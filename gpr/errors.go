package gpr

import (
	"errors"

	"github.com/gprimage/gprdecode/internal/bitstream"
	"github.com/gprimage/gprdecode/internal/entropy"
	"github.com/gprimage/gprdecode/internal/tagstream"
)

// Sentinel errors a caller can match with errors.Is. Several re-export the
// internal package that actually detects the condition so that
// package-level boundaries stay enforced (bitstream/tagstream/entropy are
// not imported directly by callers) without hiding the underlying error
// from errors.Is/As.
var (
	ErrEndOfStream        = bitstream.ErrEndOfStream
	ErrUnderflow          = bitstream.ErrUnderflow
	ErrMissingStartMarker = tagstream.ErrMissingStartMarker
	ErrInvalidTag         = tagstream.ErrInvalidTag
	ErrSyntaxError        = tagstream.ErrSyntaxError
	ErrBandEndMarker      = entropy.ErrBandEndMarker
	ErrBandEndTrailer     = entropy.ErrBandEndTrailer
	ErrLowpassPrecision   = entropy.ErrLowpassPrecision
	ErrOverflow           = entropy.ErrOverflow

	ErrDuplicateHeaderParameter = errors.New("gpr: duplicate header parameter")
	ErrRequiredParameter        = errors.New("gpr: missing required header parameter")
	ErrImageDimensions          = errors.New("gpr: invalid image dimensions")
	ErrInvalidBand              = errors.New("gpr: invalid subband index")
	ErrBadImageFormat           = errors.New("gpr: unsupported image format")
	ErrPatternDimensions        = errors.New("gpr: invalid Bayer pattern dimensions")
	ErrEnabledParts             = errors.New("gpr: unsupported enabled-parts bitmask")
	ErrUmidLabel                = errors.New("gpr: malformed unique material identifier label")
)
