package tagstream

import (
	"fmt"

	"github.com/gprimage/gprdecode/internal/bitstream"
)

// StartMarker is the four-byte "VC-5" word every stream must begin with.
const StartMarker uint32 = 0x56432D35

// Segment is one decoded tag/value pair. Value carries the segment's
// 16-bit payload for ordinary tags, or a chunk-size field for chunk tags
// (see ClassifyChunk).
type Segment struct {
	Tag    Tag
	RawTag uint16
	Value  uint16
}

// Kind classifies the segment's chunk framing, if any.
func (s Segment) Kind() ChunkKind {
	return ClassifyChunk(s.RawTag)
}

// Reader decodes a sequence of 32-bit tag/value segments from a ByteStream.
type Reader struct {
	bs *bitstream.ByteStream
}

// NewReader wraps bs for tag/value segment reading.
func NewReader(bs *bitstream.ByteStream) *Reader {
	return &Reader{bs: bs}
}

// ReadStartMarker consumes the stream's first word and verifies it matches
// StartMarker.
func (r *Reader) ReadStartMarker() error {
	word, err := r.bs.GetWord()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingStartMarker, err)
	}
	if word != StartMarker {
		return fmt.Errorf("%w: got 0x%08X", ErrMissingStartMarker, word)
	}
	return nil
}

// Next reads the next tag/value segment.
func (r *Reader) Next() (Segment, error) {
	word, err := r.bs.GetWord()
	if err != nil {
		return Segment{}, err
	}
	rawTag := uint16(word >> 16)
	value := uint16(word)
	return Segment{
		Tag:    Tag(int16(rawTag)),
		RawTag: rawTag,
		Value:  value,
	}, nil
}

// Position returns the underlying stream's current byte offset.
func (r *Reader) Position() int {
	return r.bs.Position()
}

// ReadChunkBytes reads and consumes the next n raw bytes, for a chunk tag
// whose payload the caller understands directly (rather than skipping it).
func (r *Reader) ReadChunkBytes(n int) ([]byte, error) {
	offset := r.bs.Position()
	raw, err := r.bs.GetBlock(offset, n)
	if err != nil {
		return nil, err
	}
	if err := r.bs.Skip(n); err != nil {
		return nil, err
	}
	return raw, nil
}

// SkipChunkPayload advances past a chunk segment's payload, for callers
// that do not understand the chunk's tag. It is a no-op for non-chunk
// segments.
func (r *Reader) SkipChunkPayload(seg Segment) error {
	words := ChunkPayloadWords(seg.RawTag, seg.Value)
	if words <= 0 {
		return nil
	}
	if err := r.bs.Skip(words * 4); err != nil {
		return fmt.Errorf("%w: chunk payload runs past end of stream: %v", ErrSyntaxError, err)
	}
	return nil
}
