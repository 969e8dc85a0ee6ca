package gpr

import (
	"fmt"
	"io"

	"github.com/gprimage/gprdecode/internal/bitstream"
	"github.com/gprimage/gprdecode/internal/colorconv"
	"github.com/gprimage/gprdecode/internal/tagstream"
	"github.com/gprimage/gprdecode/internal/wavelet"
)

// DecodeStream parses a GPR bitstream and returns its unpacked per-channel
// component planes, without Bayer-to-RGB reconstruction.
func DecodeStream(r io.Reader, params Params) (*UnpackedImage, error) {
	bs, err := bitstream.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("gpr: %w", err)
	}
	return decodeUnpacked(bs, params)
}

func decodeUnpacked(bs *bitstream.ByteStream, params Params) (*UnpackedImage, error) {
	levels := params.Levels
	if levels <= 0 {
		levels = DefaultParams().Levels
	}

	tr := tagstream.NewReader(bs)
	if err := tr.ReadStartMarker(); err != nil {
		return nil, err
	}

	header, firstChannelSeg, err := parseImageHeader(tr)
	if err != nil {
		return nil, err
	}

	channelWidth, channelHeight := header.width, header.height
	if header.patternWidth > 0 && header.patternHeight > 0 {
		channelWidth = header.width / header.patternWidth
		channelHeight = header.height / header.patternHeight
	}

	br := bitstream.NewBitReader(bs)

	prescale := wavelet.DefaultPrescaleTable
	if header.hasPrescaleShift {
		prescale = wavelet.DecodePrescaleTable(header.prescaleShift)
	}

	channels := make([]ComponentArray, 0, header.channelCount)
	nextSeg := &firstChannelSeg
	for nextSeg != nil {
		if len(channels) >= header.channelCount {
			return nil, fmt.Errorf("%w: more channels present than declared (%d)", ErrSyntaxError, header.channelCount)
		}
		var channel ComponentArray
		channel, nextSeg, err = decodeChannel(tr, br, channelWidth, channelHeight, levels, prescale, *nextSeg)
		if err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}
	if len(channels) != header.channelCount {
		return nil, fmt.Errorf("%w: declared %d channels, decoded %d", ErrRequiredParameter, header.channelCount, len(channels))
	}

	return &UnpackedImage{
		Width:               header.width,
		Height:              header.height,
		BitsPerComponent:    header.bitsPerComponent,
		PatternWidth:        header.patternWidth,
		PatternHeight:       header.patternHeight,
		Channels:            channels,
		UniqueImageID:       header.uniqueImageID,
		HasUniqueImageID:    header.hasUniqueImageID,
		ImageSequenceNumber: header.imageSequenceNumber,
	}, nil
}

// DecodeImage parses a GPR bitstream and reconstructs it into a
// display-ready RGB image, via the color-difference channel reconstructor
// (see ReconstructRGB).
func DecodeImage(r io.Reader, params Params) (*RGBImage, error) {
	unpacked, err := DecodeStream(r, params)
	if err != nil {
		return nil, err
	}
	return ReconstructRGB(unpacked, params)
}

// ReconstructRGB converts an already-unpacked image into a display-ready
// RGB image. Only the first three channels (GS, RG, BG) feed the
// color-difference reconstruction; a fourth channel (GD), when present,
// is part of DecodeStream's raw per-channel output but plays no part in
// the RGB reconstructor, matching the three-channel input spec.md's
// channel reconstructor algorithm describes.
func ReconstructRGB(unpacked *UnpackedImage, params Params) (*RGBImage, error) {
	if len(unpacked.Channels) < 3 {
		return nil, fmt.Errorf("%w: RGB reconstruction requires at least 3 channels, got %d", ErrBadImageFormat, len(unpacked.Channels))
	}
	gs := unpacked.Channels[0]
	rg := unpacked.Channels[1]
	bg := unpacked.Channels[2]

	n := gs.Width * gs.Height
	if rg.Width*rg.Height != n || bg.Width*bg.Height != n {
		return nil, fmt.Errorf("%w: channel dimensions disagree", ErrBadImageFormat)
	}

	gsF := widenInt16(gs.Data)
	rgF := widenInt16(rg.Data)
	bgF := widenInt16(bg.Data)
	mid := int32(1) << uint(unpacked.BitsPerComponent-1)
	r, g, b := colorconv.ApplyToComponents(gsF, rgF, bgF, mid)

	format := params.OutputFormat
	bytesPerSample := 2
	if format == Format8Bit {
		bytesPerSample = 1
	}
	img := &RGBImage{
		Width:          gs.Width,
		Height:         gs.Height,
		Format:         format,
		BytesPerSample: bytesPerSample,
		Pix:            make([]byte, gs.Height*gs.Width*3*bytesPerSample),
	}

	precision := int32(unpacked.BitsPerComponent)

	for y := 0; y < gs.Height; y++ {
		for x := 0; x < gs.Width; x++ {
			// The decoded channel planes are read mirrored horizontally:
			// output column x draws from channel column (width-1-x).
			srcX := gs.Width - 1 - x
			idx := y*gs.Width + srcX
			writeSample(img, x, y, r[idx], g[idx], b[idx], precision, params)
		}
	}
	return img, nil
}

// writeSample normalizes a reconstructed (r, g, b) triple to the 12-bit
// domain the display log curve is tabulated over, applies that curve, and
// then renders through the selected output path: a straight 16-bit clamp,
// or the 8-bit preview path's integer-fraction gain and fixed sqrt gamma.
func writeSample(img *RGBImage, x, y int, r, g, b, precision int32, params Params) {
	stride := img.Stride()
	offset := y*stride + x*3*img.BytesPerSample

	rLog := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(r, precision))
	gLog := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(g, precision))
	bLog := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(b, precision))

	switch img.Format {
	case Format8Bit:
		img.Pix[offset+0] = colorconv.To8Bit(rLog, params.GainNumerator, params.GainPow2Denominator)
		img.Pix[offset+1] = colorconv.To8Bit(gLog, params.GainNumerator, params.GainPow2Denominator)
		img.Pix[offset+2] = colorconv.To8Bit(bLog, params.GainNumerator, params.GainPow2Denominator)
	default:
		writeBigEndian16(img.Pix[offset+0:], colorconv.To16Bit(rLog))
		writeBigEndian16(img.Pix[offset+2:], colorconv.To16Bit(gLog))
		writeBigEndian16(img.Pix[offset+4:], colorconv.To16Bit(bLog))
	}
}

func writeBigEndian16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
