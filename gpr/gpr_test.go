package gpr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gprimage/gprdecode/internal/bitstream"
	"github.com/gprimage/gprdecode/internal/codebook"
	"github.com/gprimage/gprdecode/internal/colorconv"
	"github.com/gprimage/gprdecode/internal/tagstream"
)

// streamBuilder assembles a synthetic GPR bitstream word by word, for tests
// that need to drive the decoder's tag/value and entropy layers together.
// Entropy payloads are bit-packed and zero-padded to the next whole 32-bit
// word before the next tag segment is appended, matching the alignment the
// shared BitReader/tagstream.Reader cursor requires.
type streamBuilder struct {
	buf bytes.Buffer
}

func (b *streamBuilder) word(raw uint16, value uint16) {
	_ = binary.Write(&b.buf, binary.BigEndian, raw)
	_ = binary.Write(&b.buf, binary.BigEndian, value)
}

func (b *streamBuilder) tag(t tagstream.Tag, value uint16) {
	b.word(uint16(int16(t)), value)
}

func (b *streamBuilder) startMarker() {
	_ = binary.Write(&b.buf, binary.BigEndian, tagstream.StartMarker)
}

// bitPayload appends a bit-packed entropy payload, zero-padded to a whole
// number of 32-bit words.
type bitPayload struct {
	bits []byte
}

func (p *bitPayload) writeBits(value uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		p.bits = append(p.bits, byte((value>>uint(i))&1))
	}
}

func (p *bitPayload) writeEntry(e codebook.Entry) {
	p.writeBits(e.CodeBits, int(e.CodeLength))
}

func (p *bitPayload) appendTo(b *streamBuilder) {
	bits := append([]byte{}, p.bits...)
	for len(bits)%32 != 0 {
		bits = append(bits, 0)
	}
	out := make([]byte, len(bits)/8)
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	b.buf.Write(out)
}

func bandEndEntry(t *testing.T) codebook.Entry {
	t.Helper()
	for _, e := range codebook.Codeset17.Entries() {
		if e.IsSpecialMarker() {
			return e
		}
	}
	t.Fatalf("no band-end marker in codebook")
	return codebook.Entry{}
}

// writeEmptyHighpassSubband writes a subband-number/quantization header
// followed by an entropy payload containing nothing but the band-end marker
// and its trailer, for a highpass subband with no coefficients (as occurs
// once a channel's decomposition has collapsed to a 1x1 lowpass region).
func writeEmptyHighpassSubband(t *testing.T, b *streamBuilder, index int) {
	t.Helper()
	b.tag(tagstream.TagSubbandNumber, uint16(index))
	b.tag(tagstream.TagQuantization, 1)
	b.word(tagstream.CodeblockChunk, 0)

	p := &bitPayload{}
	p.writeEntry(bandEndEntry(t))
	p.writeBits(0xE33F, 16)
	p.appendTo(b)
}

// writeLowpassSubband writes the lowpass subband header followed by a
// single raw sample encoded at the given bit precision.
func writeLowpassSubband(b *streamBuilder, precision int, value int32) {
	b.tag(tagstream.TagSubbandNumber, 0)
	b.tag(tagstream.TagLowpassPrecision, uint16(precision))
	b.word(tagstream.CodeblockChunk, 1)

	p := &bitPayload{}
	mask := uint32(1)<<uint(precision) - 1
	p.writeBits(uint32(value)&mask, precision)
	p.appendTo(b)
}

// writeChannel writes one full channel: a channel-number tag, its lowpass
// subband carrying a single sample, and 3*levels empty highpass subbands.
func writeChannel(t *testing.T, b *streamBuilder, number uint16, levels int, precision int, lowpassValue int32) {
	t.Helper()
	b.tag(tagstream.TagChannelNumber, number)
	writeLowpassSubband(b, precision, lowpassValue)
	for i := 1; i <= 3*levels; i++ {
		writeEmptyHighpassSubband(t, b, i)
	}
}

// minimalStream builds the smallest valid 2x2 Bayer image: ImageWidth=2,
// ImageHeight=2, a 2x2 Bayer pattern, 4 channels each a single 1x1 lowpass
// sample (every highpass subband collapsed to zero width at the baseline
// profile's 3 decomposition levels), lowpass value 100 at 12-bit precision.
func minimalStream(t *testing.T) []byte {
	t.Helper()
	const precision = 12
	const lowpass = int32(100)
	const levels = 3

	b := &streamBuilder{}
	b.startMarker()
	b.tag(tagstream.TagImageWidth, 2)
	b.tag(tagstream.TagImageHeight, 2)
	b.tag(tagstream.TagBitsPerComponent, precision)
	b.tag(tagstream.TagChannelCount, 4)
	b.tag(tagstream.TagImageFormat, tagstream.ImageFormatRaw)
	b.tag(tagstream.TagPatternWidth, 2)
	b.tag(tagstream.TagPatternHeight, 2)
	b.tag(tagstream.TagComponentsPerSample, 4)
	b.tag(tagstream.TagSubbandCount, 1+3*levels)

	for ch := uint16(0); ch < 4; ch++ {
		writeChannel(t, b, ch, levels, precision, lowpass)
	}
	return b.buf.Bytes()
}

func TestDecodeImageSmallest2x2Bayer(t *testing.T) {
	data := minimalStream(t)
	params := DefaultParams()
	params.Levels = 3

	unpacked, err := DecodeStream(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("DecodeStream() error: %v", err)
	}
	if unpacked.Width != 2 || unpacked.Height != 2 {
		t.Fatalf("got %dx%d image, want 2x2", unpacked.Width, unpacked.Height)
	}
	if len(unpacked.Channels) != 4 {
		t.Fatalf("got %d channels, want 4", len(unpacked.Channels))
	}
	for i, ch := range unpacked.Channels {
		if ch.Width != 1 || ch.Height != 1 {
			t.Fatalf("channel %d dims = %dx%d, want 1x1", i, ch.Width, ch.Height)
		}
		if ch.Data[0] != 100 {
			t.Errorf("channel %d sample = %d, want 100", i, ch.Data[0])
		}
	}
}

// TestDecodeImageReconstructsRGBFromThreeChannels exercises the public
// DecodeImage entry point end to end, checking that it uses only the
// first three decoded channels (GS, RG, BG) for the color-difference
// reconstruction, applies the horizontal mirror and display log curve, and
// emits a non-upsampled image the same size as the decoded channels.
func TestDecodeImageReconstructsRGBFromThreeChannels(t *testing.T) {
	data := minimalStream(t)
	params := DefaultParams()
	params.Levels = 3

	img, err := DecodeImage(bytes.NewReader(data), params)
	if err != nil {
		t.Fatalf("DecodeImage() error: %v", err)
	}
	if img.Width != 1 || img.Height != 1 {
		t.Fatalf("got %dx%d image, want 1x1 (one sample per channel, no upsampling)", img.Width, img.Height)
	}
	if img.BytesPerSample != 2 {
		t.Fatalf("BytesPerSample = %d, want 2 for the default 16-bit format", img.BytesPerSample)
	}

	const mid = int32(1) << 11 // BitsPerComponent=12
	wantR, wantG, wantB := colorconv.ReconstructRGB(100, 100, 100, mid)
	wantRLog := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(wantR, 12))
	wantGLog := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(wantG, 12))
	wantBLog := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(wantB, 12))

	gotR := uint16(img.Pix[0])<<8 | uint16(img.Pix[1])
	gotG := uint16(img.Pix[2])<<8 | uint16(img.Pix[3])
	gotB := uint16(img.Pix[4])<<8 | uint16(img.Pix[5])
	if gotR != wantRLog || gotG != wantGLog || gotB != wantBLog {
		t.Errorf("pixel = (%d,%d,%d), want (%d,%d,%d)", gotR, gotG, gotB, wantRLog, wantGLog, wantBLog)
	}
}

func TestDecodeStreamRejectsWrongStartMarker(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(0x00000000))

	_, err := DecodeStream(bytes.NewReader(buf.Bytes()), DefaultParams())
	if !errors.Is(err, ErrMissingStartMarker) {
		t.Fatalf("DecodeStream() error = %v, want ErrMissingStartMarker", err)
	}
}

// TestDecodeStreamRejectsMinimalHeader covers a stream holding nothing but
// the start marker: parseImageHeader must fail with ErrRequiredParameter
// (reported together with the end of stream that cut the header short)
// rather than panicking or guessing at the missing dimensions.
func TestDecodeStreamRejectsMinimalHeader(t *testing.T) {
	b := &streamBuilder{}
	b.startMarker()

	_, err := DecodeStream(bytes.NewReader(b.buf.Bytes()), DefaultParams())
	if !errors.Is(err, ErrRequiredParameter) && !errors.Is(err, bitstream.ErrEndOfStream) {
		t.Fatalf("DecodeStream() error = %v, want ErrRequiredParameter or end of stream", err)
	}
}

func umidPayload(seq uint32) []byte {
	id := uuid.UUID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	payload := make([]byte, 36)
	copy(payload[:16], umidLabel[:])
	copy(payload[16:32], id[:])
	binary.BigEndian.PutUint32(payload[32:36], seq)
	return payload
}

func TestParseImageHeaderUMIDRoundTrip(t *testing.T) {
	want := uuid.UUID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	const wantSeq = uint32(0x00000042)

	b := &streamBuilder{}
	b.startMarker()
	b.tag(tagstream.TagImageWidth, 2)
	b.tag(tagstream.TagImageHeight, 2)
	b.tag(tagstream.TagBitsPerComponent, 12)
	b.tag(tagstream.TagChannelCount, 4)
	b.tag(tagstream.TagImageFormat, tagstream.ImageFormatRaw)
	b.tag(tagstream.TagPatternWidth, 2)
	b.tag(tagstream.TagPatternHeight, 2)
	b.tag(tagstream.TagComponentsPerSample, 4)
	b.word(tagstream.UMIDChunkTag, 9)
	b.buf.Write(umidPayload(wantSeq))
	for ch := uint16(0); ch < 4; ch++ {
		writeChannel(t, b, ch, 3, 12, 100)
	}

	unpacked, err := DecodeStream(bytes.NewReader(b.buf.Bytes()), Params{Levels: 3})
	if err != nil {
		t.Fatalf("DecodeStream() error: %v", err)
	}
	if !unpacked.HasUniqueImageID {
		t.Fatalf("HasUniqueImageID = false, want true")
	}
	if unpacked.UniqueImageID != want {
		t.Errorf("UniqueImageID = %v, want %v", unpacked.UniqueImageID, want)
	}
	if unpacked.ImageSequenceNumber != wantSeq {
		t.Errorf("ImageSequenceNumber = 0x%X, want 0x%X", unpacked.ImageSequenceNumber, wantSeq)
	}
}

func TestParseImageHeaderUMIDBadLabelIsError(t *testing.T) {
	b := &streamBuilder{}
	b.startMarker()
	b.tag(tagstream.TagImageWidth, 2)
	b.tag(tagstream.TagImageHeight, 2)
	b.tag(tagstream.TagBitsPerComponent, 12)
	b.tag(tagstream.TagChannelCount, 4)
	b.tag(tagstream.TagImageFormat, tagstream.ImageFormatRaw)
	b.tag(tagstream.TagPatternWidth, 2)
	b.tag(tagstream.TagPatternHeight, 2)
	b.tag(tagstream.TagComponentsPerSample, 4)
	b.word(tagstream.UMIDChunkTag, 9)
	payload := umidPayload(1)
	payload[0] = 0x00 // corrupt the required UMID universal label
	b.buf.Write(payload)

	_, err := DecodeStream(bytes.NewReader(b.buf.Bytes()), Params{Levels: 3})
	if !errors.Is(err, ErrUmidLabel) {
		t.Fatalf("DecodeStream() error = %v, want ErrUmidLabel", err)
	}
}

func TestRGBConversionAppliesDecoderLogCurve(t *testing.T) {
	const precision = 12
	const mid = int32(1) << (precision - 1) // 2048
	r, g, b := colorconv.ReconstructRGB(mid, mid, mid, mid)
	if r != mid || g != mid || b != mid {
		t.Fatalf("ReconstructRGB(mid,mid,mid) = (%d,%d,%d), want (%d,%d,%d)", r, g, b, mid, mid, mid)
	}

	want := colorconv.DecoderLogCurve[mid]
	got := colorconv.ApplyLogCurve(colorconv.NormalizeTo12Bit(g, precision))
	if got != want {
		t.Errorf("ApplyLogCurve(2048) = %d, want DecoderLogCurve[2048] = %d", got, want)
	}
}
