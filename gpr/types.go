// Package gpr implements a decoder for GoPro's GPR still-image format, a
// VC-5 profile built on a tag/value bitstream, Huffman-coded wavelet
// subbands, and a difference-based Bayer color model.
package gpr

import "github.com/google/uuid"

// OutputFormat selects how DecodeImage renders the reconstructed RGB
// planes into a final pixel buffer.
type OutputFormat int

const (
	// Format16Bit emits 16-bit big-endian RGB samples taken straight from
	// the display log curve, with no gain or gamma.
	Format16Bit OutputFormat = iota
	// Format8Bit emits gamma/gain-adjusted 8-bit RGB samples through the
	// display log curve.
	Format8Bit
)

// Params configures decoding. The zero value is not valid; use
// DefaultParams.
type Params struct {
	OutputFormat OutputFormat
	// GainNumerator and GainPow2Denominator together express the 8-bit
	// preview path's gain as the integer fraction
	// GainNumerator / 2^GainPow2Denominator. Gamma is fixed at 0.5 (a
	// square root) and is not configurable.
	GainNumerator       int32
	GainPow2Denominator uint
	// Levels is the number of wavelet decomposition levels encoded per
	// channel. GPR's baseline profile always uses 3.
	Levels int
}

// DefaultParams returns the conventional decode parameters: 16-bit
// log-curve output, unity gain, 3 wavelet levels.
func DefaultParams() Params {
	return Params{
		OutputFormat:        Format16Bit,
		GainNumerator:       1,
		GainPow2Denominator: 0,
		Levels:              3,
	}
}

// ComponentArray is one decoded channel's reconstructed samples.
type ComponentArray struct {
	Width, Height int
	Data          []int16
}

// UnpackedImage is the decoder's raw result: one ComponentArray per coded
// channel, before Bayer-to-RGB reconstruction. Channel order is
// green-from-second (GS), red-minus-green (RG), blue-minus-green (BG),
// green-from-first (GD), matching the four quadrants of a Bayer cell.
type UnpackedImage struct {
	Width, Height    int
	BitsPerComponent int
	PatternWidth     int
	PatternHeight    int
	Channels         []ComponentArray
	UniqueImageID    uuid.UUID
	HasUniqueImageID bool
	// ImageSequenceNumber is the 32-bit counter carried alongside the
	// unique image identifier, valid only when HasUniqueImageID is true.
	ImageSequenceNumber uint32
}

// RGBImage is the fully reconstructed, display-ready image.
type RGBImage struct {
	Width, Height int
	Format        OutputFormat
	// BytesPerSample is 2 for Format16Bit, 1 for Format8Bit.
	BytesPerSample int
	// Pix holds interleaved RGB samples, row-major, BytesPerSample bytes
	// per component, big-endian for 16-bit samples.
	Pix []byte
}

// Stride returns the byte length of one image row.
func (img *RGBImage) Stride() int {
	return img.Width * 3 * img.BytesPerSample
}
