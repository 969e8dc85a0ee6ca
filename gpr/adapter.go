package gpr

import (
	"bytes"
	"fmt"

	"github.com/gprimage/gprdecode/codec"
)

// UID identifies this package's codec registration.
const UID = "gpr.raw.v1"

// Adapter exposes the GPR decoder through the generic codec.Codec
// interface, so callers that dispatch on a codec registry can reach it the
// same way they reach any other format.
type Adapter struct{}

func init() {
	codec.Register(Adapter{})
}

// Encode always fails: this decoder does not implement a GPR encoder.
func (Adapter) Encode(codec.EncodeParams) ([]byte, error) {
	return nil, fmt.Errorf("gpr: %w: encoding is not supported", codec.ErrUnsupportedFormat)
}

// Decode parses a GPR bitstream and reconstructs it to 16-bit RGB through
// the display log curve.
func (Adapter) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := DecodeImage(bytes.NewReader(data), DefaultParams())
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		PixelData:  img.Pix,
		Width:      img.Width,
		Height:     img.Height,
		Components: 3,
		BitDepth:   img.BytesPerSample * 8,
	}, nil
}

// UID returns the codec's registry identifier.
func (Adapter) UID() string { return UID }

// Name returns the codec's human-readable name.
func (Adapter) Name() string { return "gpr" }
