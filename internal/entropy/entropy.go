// Package entropy decodes a subband's coefficients from its entropy-coded
// bitstream: highpass subbands as a run-length/magnitude Huffman stream
// terminated by a band-end marker and trailer codeword, lowpass subbands
// as fixed-width raw samples.
package entropy

import (
	"errors"
	"fmt"

	"github.com/gprimage/gprdecode/internal/bitstream"
	"github.com/gprimage/gprdecode/internal/codebook"
)

var (
	// ErrBandEndMarker is returned when the band-end special codeword is
	// missing, out of place, or an unrecognized special marker is decoded.
	ErrBandEndMarker = errors.New("entropy: missing or misplaced band-end marker")

	// ErrBandEndTrailer is returned when the fixed codeword that must
	// follow a band-end marker does not match.
	ErrBandEndTrailer = errors.New("entropy: invalid band-end trailer codeword")

	// ErrOverflow is returned when decoding would write past the end of
	// the destination coefficient buffer.
	ErrOverflow = errors.New("entropy: decoded band overruns its coefficient buffer")

	// ErrLowpassPrecision is returned for a lowpass sample width outside
	// the supported range.
	ErrLowpassPrecision = errors.New("entropy: invalid lowpass precision")
)

// BandEndTrailer is the fixed 16-bit codeword that must immediately follow
// a highpass band's band-end marker, validating that the decoder consumed
// exactly the bits the encoder produced.
const BandEndTrailer uint16 = 0xE33F

// DecodeHighpassBand fills out with a highpass subband's coefficients,
// decoding (run, magnitude) pairs from cb until the band-end marker is
// reached. A decoded run writes that many zero coefficients; a nonzero
// magnitude is followed by one sign bit and written as the next
// coefficient. The marker must land exactly when out is full, and must be
// followed by BandEndTrailer.
func DecodeHighpassBand(br *bitstream.BitReader, cb *codebook.Codebook, out []int16) error {
	consume := func(n int) error {
		_, err := br.GetBits(n)
		return err
	}

	i := 0
	for {
		entry, err := cb.Decode(br.PeekBits, consume)
		if err != nil {
			return fmt.Errorf("entropy: decoding codeword at coefficient %d: %w", i, err)
		}

		if entry.IsSpecialMarker() {
			if entry.Value == -codebook.SpecialMarkerBandEnd {
				break
			}
			return fmt.Errorf("%w: unrecognized special marker %+v", ErrBandEndMarker, entry)
		}

		for j := 0; j < int(entry.RunLength); j++ {
			if i >= len(out) {
				return ErrOverflow
			}
			out[i] = 0
			i++
		}

		if entry.Value != 0 {
			if i >= len(out) {
				return ErrOverflow
			}
			sign, err := br.GetBits(1)
			if err != nil {
				return err
			}
			mag := int32(entry.Value)
			if sign != 0 {
				mag = -mag
			}
			out[i] = int16(mag)
			i++
		}
	}

	if i != len(out) {
		return fmt.Errorf("%w: marker after %d of %d coefficients", ErrBandEndMarker, i, len(out))
	}

	trailer, err := br.GetBits(16)
	if err != nil {
		return err
	}
	if uint16(trailer) != BandEndTrailer {
		return fmt.Errorf("%w: got 0x%04X", ErrBandEndTrailer, trailer)
	}
	br.AlignToSegment()
	return nil
}

// DecodeLowpassBand fills out with a lowpass subband's raw, fixed-width
// unsigned samples: unlike highpass coefficients, the lowpass band carries
// no sign bit, so a sample's top bit is just the top bit of its magnitude.
func DecodeLowpassBand(br *bitstream.BitReader, precision int, out []uint16) error {
	if precision < 1 || precision > 16 {
		return fmt.Errorf("%w: %d", ErrLowpassPrecision, precision)
	}
	for i := range out {
		bits, err := br.GetBits(precision)
		if err != nil {
			return err
		}
		out[i] = uint16(bits)
	}
	br.AlignToSegment()
	return nil
}
