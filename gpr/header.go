package gpr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gprimage/gprdecode/internal/tagstream"
)

// umidLabel is the fixed 16-byte SMPTE UMID universal label every unique
// image identifier chunk must begin with.
var umidLabel = [16]byte{
	0x06, 0x0A, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x05,
	0x01, 0x01, 0x01, 0x20, 0x00, 0x00, 0x00, 0x00,
}

// imageHeader holds the top-level, per-image tags read before the first
// channel's segments begin.
type imageHeader struct {
	width, height       int
	bitsPerComponent    int
	channelCount        int
	patternWidth        int
	patternHeight       int
	componentsPerSample int
	prescaleShift       uint16
	hasPrescaleShift    bool
	enabledParts        uint16
	hasEnabledParts     bool
	uniqueImageID       uuid.UUID
	imageSequenceNumber uint32
	hasUniqueImageID    bool
}

// parseImageHeader reads tag/value segments up to (but not including the
// consumption of) the first channel's worth of decoding, returning the
// segment that announced the first channel so the caller can feed it
// straight into decodeChannel without re-reading the stream.
func parseImageHeader(r *tagstream.Reader) (imageHeader, tagstream.Segment, error) {
	var h imageHeader
	seenWidth, seenHeight, seenBits, seenChannels, seenFormat := false, false, false, false, false
	seenPatternWidth, seenPatternHeight, seenComponentsPerSample := false, false, false

	for {
		seg, err := r.Next()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				if reqErr := requireImageHeader(h, seenWidth, seenHeight, seenBits, seenChannels, seenFormat,
					seenPatternWidth, seenPatternHeight, seenComponentsPerSample); reqErr != nil {
					return h, tagstream.Segment{}, fmt.Errorf("gpr: image header ends early: %w: %w", reqErr, err)
				}
			}
			return h, tagstream.Segment{}, fmt.Errorf("gpr: reading image header: %w", err)
		}

		if seg.Kind() != tagstream.NotAChunk {
			if seg.RawTag == tagstream.UMIDChunkTag {
				id, seq, err := parseUMIDChunk(r, seg)
				if err != nil {
					return h, tagstream.Segment{}, err
				}
				h.uniqueImageID = id
				h.imageSequenceNumber = seq
				h.hasUniqueImageID = true
				continue
			}
			if err := r.SkipChunkPayload(seg); err != nil {
				return h, tagstream.Segment{}, err
			}
			continue
		}

		switch seg.Tag {
		case tagstream.TagChannelNumber:
			if err := requireImageHeader(h, seenWidth, seenHeight, seenBits, seenChannels, seenFormat,
				seenPatternWidth, seenPatternHeight, seenComponentsPerSample); err != nil {
				return h, tagstream.Segment{}, err
			}
			return h, seg, nil

		case tagstream.TagImageWidth:
			if seenWidth {
				return h, tagstream.Segment{}, fmt.Errorf("%w: image width", ErrDuplicateHeaderParameter)
			}
			h.width = int(seg.Value)
			seenWidth = true

		case tagstream.TagImageHeight:
			if seenHeight {
				return h, tagstream.Segment{}, fmt.Errorf("%w: image height", ErrDuplicateHeaderParameter)
			}
			h.height = int(seg.Value)
			seenHeight = true

		case tagstream.TagBitsPerComponent:
			if seenBits {
				return h, tagstream.Segment{}, fmt.Errorf("%w: bits per component", ErrDuplicateHeaderParameter)
			}
			h.bitsPerComponent = int(seg.Value)
			seenBits = true

		case tagstream.TagChannelCount:
			if seenChannels {
				return h, tagstream.Segment{}, fmt.Errorf("%w: channel count", ErrDuplicateHeaderParameter)
			}
			h.channelCount = int(seg.Value)
			seenChannels = true

		case tagstream.TagImageFormat:
			if seg.Value != tagstream.ImageFormatRaw {
				return h, tagstream.Segment{}, fmt.Errorf("%w: image format %d", ErrBadImageFormat, seg.Value)
			}
			seenFormat = true

		case tagstream.TagComponentsPerSample:
			h.componentsPerSample = int(seg.Value)
			seenComponentsPerSample = true

		case tagstream.TagSubbandCount:
			// The subband layout follows from Params.Levels; the declared
			// count is accepted and not otherwise checked.

		case tagstream.TagPrescaleShift:
			h.prescaleShift = seg.Value
			h.hasPrescaleShift = true

		case tagstream.TagPatternWidth:
			h.patternWidth = int(seg.Value)
			seenPatternWidth = true

		case tagstream.TagPatternHeight:
			h.patternHeight = int(seg.Value)
			seenPatternHeight = true

		case tagstream.TagEnabledParts:
			if seg.Value != 0 {
				return h, tagstream.Segment{}, fmt.Errorf("%w: 0x%04X", ErrEnabledParts, seg.Value)
			}
			h.enabledParts = seg.Value
			h.hasEnabledParts = true

		default:
			if !seg.Tag.IsOptional() {
				return h, tagstream.Segment{}, fmt.Errorf("%w: tag %d", ErrInvalidTag, seg.Tag)
			}
			if err := r.SkipChunkPayload(seg); err != nil {
				return h, tagstream.Segment{}, err
			}
		}
	}
}

func requireImageHeader(h imageHeader, seenWidth, seenHeight, seenBits, seenChannels, seenFormat,
	seenPatternWidth, seenPatternHeight, seenComponentsPerSample bool) error {
	if !seenWidth || !seenHeight {
		return fmt.Errorf("%w: image dimensions", ErrRequiredParameter)
	}
	if !seenBits {
		return fmt.Errorf("%w: bits per component", ErrRequiredParameter)
	}
	if !seenChannels {
		return fmt.Errorf("%w: channel count", ErrRequiredParameter)
	}
	if !seenFormat {
		return fmt.Errorf("%w: image format", ErrRequiredParameter)
	}
	if !seenPatternWidth || !seenPatternHeight {
		return fmt.Errorf("%w: pattern dimensions", ErrRequiredParameter)
	}
	if !seenComponentsPerSample {
		return fmt.Errorf("%w: components per sample", ErrRequiredParameter)
	}
	if h.width <= 0 || h.height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrImageDimensions, h.width, h.height)
	}
	if h.patternWidth != 0 && h.patternHeight != 0 &&
		(h.width%h.patternWidth != 0 || h.height%h.patternHeight != 0) {
		return fmt.Errorf("%w: %dx%d pattern does not divide %dx%d image",
			ErrPatternDimensions, h.patternWidth, h.patternHeight, h.width, h.height)
	}
	return nil
}

// parseUMIDChunk reads the unique material identifier chunk: a small chunk
// whose value is 9 (32-bit words, 36 bytes) carrying the fixed 16-byte UMID
// label, a 16-byte UUID, and a 4-byte big-endian image sequence number.
func parseUMIDChunk(r *tagstream.Reader, seg tagstream.Segment) (uuid.UUID, uint32, error) {
	if seg.Kind() != tagstream.SmallChunk || seg.Value != 9 {
		return uuid.UUID{}, 0, fmt.Errorf("%w: unexpected chunk framing for UMID", ErrUmidLabel)
	}
	raw, err := r.ReadChunkBytes(36)
	if err != nil {
		return uuid.UUID{}, 0, fmt.Errorf("%w: %v", ErrUmidLabel, err)
	}
	if !bytes.Equal(raw[:16], umidLabel[:]) {
		return uuid.UUID{}, 0, fmt.Errorf("%w: label mismatch", ErrUmidLabel)
	}
	id, err := uuid.FromBytes(raw[16:32])
	if err != nil {
		return uuid.UUID{}, 0, fmt.Errorf("%w: %v", ErrUmidLabel, err)
	}
	seq := binary.BigEndian.Uint32(raw[32:36])
	return id, seq, nil
}
