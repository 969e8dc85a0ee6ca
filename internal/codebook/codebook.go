// Package codebook implements the prefix-code lookup table used by the
// entropy decoder: each codeword maps to a (run-of-zeros, magnitude) pair
// or to a special marker such as band-end.
package codebook

import "fmt"

// SpecialMarkerBandEnd is the reserved RunLength/Value combination
// signaling the end of a highpass subband's entropy-coded payload.
const SpecialMarkerBandEnd = 1

// MaxCodeLength is the longest codeword New accepts (Codeset17's longest
// is 14 bits); Decode uses it as a hard stop to detect corrupt streams
// instead of scanning forever.
const MaxCodeLength = 26

// FastTableBits is the width, in bits, of the direct lookup table used
// before falling back to a linear scan for longer codewords.
const FastTableBits = 12

// Entry is a single codeword's decoded meaning.
type Entry struct {
	CodeBits   uint32 // left-aligned is not required; compared against accumulated bits, right-aligned
	CodeLength uint8
	Value      int16  // magnitude for ordinary entries; negative for special markers
	RunLength  uint16 // run-of-zeros length; special markers use RunLength == 0
}

// IsSpecialMarker reports whether e encodes a marker rather than an
// ordinary (run, magnitude) pair.
func (e Entry) IsSpecialMarker() bool {
	return e.RunLength == 0 && e.Value < 0
}

// Codebook is a read-only, shared prefix-code table. Its zero value is not
// usable; construct one with New or use Codeset17.
type Codebook struct {
	entries  []Entry
	fast     []int16 // index into entries, by FastTableBits-wide prefix; -1 = miss
	fallback []Entry // entries with CodeLength > FastTableBits, for linear scan
}

// New builds a Codebook from a set of canonical-length entries. Entries
// must already carry valid canonical codes (see assignCanonicalCodes in
// codeset17.go); New only builds the lookup structures.
func New(entries []Entry) (*Codebook, error) {
	cb := &Codebook{
		entries: entries,
		fast:    make([]int16, 1<<FastTableBits),
	}
	for i := range cb.fast {
		cb.fast[i] = -1
	}

	for idx, e := range entries {
		if e.CodeLength == 0 || int(e.CodeLength) > MaxCodeLength {
			return nil, fmt.Errorf("codebook: entry %d has invalid code length %d", idx, e.CodeLength)
		}
		if e.CodeLength <= FastTableBits {
			lo, hi := cb.fastRange(e)
			for p := lo; p < hi; p++ {
				if cb.fast[p] != -1 {
					return nil, fmt.Errorf("codebook: ambiguous prefix 0x%X at %d bits (entry %d collides with %d)", p, FastTableBits, idx, cb.fast[p])
				}
				cb.fast[p] = int16(idx)
			}
		} else {
			cb.fallback = append(cb.fallback, e)
		}
	}
	return cb, nil
}

// fastRange returns the half-open range of FastTableBits-wide prefixes that
// e's codeword matches (all completions of the remaining bits).
func (cb *Codebook) fastRange(e Entry) (lo, hi uint32) {
	pad := uint(FastTableBits) - uint(e.CodeLength)
	lo = e.CodeBits << pad
	hi = lo + (1 << pad)
	return lo, hi
}

// Decode matches a codeword incrementally: peek peeks n bits ahead without
// consuming them, and consume advances the reader by n bits once a match is
// confirmed. This mirrors the bit-by-bit accumulation the specification
// describes, but resolves in at most two lookups for codes of length <=
// FastTableBits.
//
// peek(n) must return the next n bits, MSB-first, without side effects
// (repeated calls with larger n must be consistent with smaller ones).
func (cb *Codebook) Decode(peek func(n int) (uint32, error), consume func(n int) error) (Entry, error) {
	prefix, err := peek(FastTableBits)
	if err == nil {
		if idx := cb.fast[prefix]; idx >= 0 {
			e := cb.entries[idx]
			if err := consume(int(e.CodeLength)); err != nil {
				return Entry{}, err
			}
			return e, nil
		}
	}

	// Fallback: linear scan over longer codewords, growing the window one
	// bit at a time so we never consume more of the stream than necessary.
	for length := FastTableBits + 1; length <= MaxCodeLength; length++ {
		bits, err := peek(length)
		if err != nil {
			return Entry{}, err
		}
		for _, e := range cb.fallback {
			if int(e.CodeLength) == length && e.CodeBits == bits {
				if err := consume(length); err != nil {
					return Entry{}, err
				}
				return e, nil
			}
		}
	}
	return Entry{}, fmt.Errorf("codebook: no matching codeword within %d bits", MaxCodeLength)
}

// Len returns the number of distinct codewords in the table.
func (cb *Codebook) Len() int {
	return len(cb.entries)
}

// Entries exposes the raw table, primarily for coverage tests.
func (cb *Codebook) Entries() []Entry {
	return cb.entries
}
