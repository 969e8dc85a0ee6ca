package gpr

import (
	"errors"
	"fmt"

	"github.com/gprimage/gprdecode/internal/bitstream"
	"github.com/gprimage/gprdecode/internal/codebook"
	"github.com/gprimage/gprdecode/internal/entropy"
	"github.com/gprimage/gprdecode/internal/tagstream"
	"github.com/gprimage/gprdecode/internal/wavelet"
)

// subbandsPerChannel is 1 lowpass subband plus 3 highpass orientations per
// decomposition level.
func subbandsPerChannel(levels int) int {
	return 1 + 3*levels
}

// subbandRegion locates subband index (0 = lowpass, 1..3*levels = highpass
// orientations from coarsest to finest) within the channel's width*height
// coefficient buffer.
func subbandRegion(sizes []wavelet.Dims, levels, index int) (x0, y0, w, h int, isLowpass bool) {
	if index == 0 {
		coarsest := sizes[levels]
		return 0, 0, coarsest.W, coarsest.H, true
	}
	idx := index - 1
	levelFromCoarse := idx / 3
	orientation := idx % 3
	level := levels - levelFromCoarse
	outer := sizes[level-1]
	inner := sizes[level]

	switch orientation {
	case 0: // HL: top-right
		return inner.W, 0, outer.W - inner.W, inner.H, false
	case 1: // LH: bottom-left
		return 0, inner.H, inner.W, outer.H - inner.H, false
	default: // HH: bottom-right
		return inner.W, inner.H, outer.W - inner.W, outer.H - inner.H, false
	}
}

// decodeChannel reads one channel's subband headers and entropy-coded
// payloads, reconstructs its wavelet pyramid, and returns the channel's
// full-resolution samples. startSeg is the already-consumed
// TagChannelNumber segment that announced this channel. It returns the
// segment that announced the next channel (nil at end of stream).
func decodeChannel(r *tagstream.Reader, br *bitstream.BitReader, width, height, levels int, prescale [8]uint, startSeg tagstream.Segment) (ComponentArray, *tagstream.Segment, error) {
	if startSeg.Tag != tagstream.TagChannelNumber {
		return ComponentArray{}, nil, fmt.Errorf("%w: expected channel-number segment", ErrSyntaxError)
	}

	sizes := wavelet.LevelSizes(width, height, levels)
	buf := make([]int32, width*height)
	total := subbandsPerChannel(levels)

	for i := 0; i < total; i++ {
		if err := decodeSubband(r, br, sizes, levels, i, buf, width); err != nil {
			return ComponentArray{}, nil, fmt.Errorf("gpr: channel %d subband %d: %w", startSeg.Value, i, err)
		}
	}

	wavelet.InverseMultilevel(buf, width, height, levels, prescale)
	samples := make([]int16, width*height)
	wavelet.ToInt16(buf, samples)

	next, err := r.Next()
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return ComponentArray{Width: width, Height: height, Data: samples}, nil, nil
		}
		return ComponentArray{}, nil, err
	}
	if next.Tag != tagstream.TagChannelNumber {
		return ComponentArray{}, nil, fmt.Errorf("%w: expected next channel-number segment, got tag %d", ErrSyntaxError, next.Tag)
	}
	return ComponentArray{Width: width, Height: height, Data: samples}, &next, nil
}

func decodeSubband(r *tagstream.Reader, br *bitstream.BitReader, sizes []wavelet.Dims, levels, index int, buf []int32, stride int) error {
	numSeg, err := r.Next()
	if err != nil {
		return err
	}
	if numSeg.Tag != tagstream.TagSubbandNumber {
		return fmt.Errorf("%w: expected subband-number segment", ErrSyntaxError)
	}
	if int(numSeg.Value) != index {
		return fmt.Errorf("%w: expected subband %d, got %d", ErrInvalidBand, index, numSeg.Value)
	}

	x0, y0, w, h, isLowpass := subbandRegion(sizes, levels, index)
	n := w * h

	if isLowpass {
		precSeg, err := r.Next()
		if err != nil {
			return err
		}
		if precSeg.Tag != tagstream.TagLowpassPrecision {
			return fmt.Errorf("%w: expected lowpass-precision segment", ErrSyntaxError)
		}
		precision := int(precSeg.Value)

		payloadSeg, err := r.Next()
		if err != nil {
			return err
		}
		if payloadSeg.Kind() != tagstream.CodeblockPayload {
			return fmt.Errorf("%w: expected codeblock payload segment", ErrSyntaxError)
		}

		samples := make([]uint16, n)
		if err := entropy.DecodeLowpassBand(br, precision, samples); err != nil {
			return err
		}
		wavelet.PlaceQuadrant(buf, stride, x0, y0, w, h, widenUint16(samples))
		return nil
	}

	quantSeg, err := r.Next()
	if err != nil {
		return err
	}
	if quantSeg.Tag != tagstream.TagQuantization {
		return fmt.Errorf("%w: expected quantization segment", ErrSyntaxError)
	}
	quantFactor := int32(quantSeg.Value)

	payloadSeg, err := r.Next()
	if err != nil {
		return err
	}
	if payloadSeg.Kind() != tagstream.CodeblockPayload {
		return fmt.Errorf("%w: expected codeblock payload segment", ErrSyntaxError)
	}

	coefficients := make([]int16, n)
	if err := entropy.DecodeHighpassBand(br, codebook.Codeset17, coefficients); err != nil {
		return err
	}
	wavelet.PreprocessHighpass(coefficients, quantFactor)
	wavelet.PlaceQuadrant(buf, stride, x0, y0, w, h, widenInt16(coefficients))
	return nil
}

func widenInt16(in []int16) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

// widenUint16 widens unsigned lowpass samples into the signed coefficient
// buffer without sign-extending: the lowpass band carries no sign bit, so
// its raw bit pattern is the value itself.
func widenUint16(in []uint16) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
