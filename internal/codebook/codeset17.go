package codebook

// Codeset17 returns the fixed codebook used by the decoder (the VC-5
// baseline's "codeset 17"). Codewords are assigned canonically, shortest
// first, over a fixed symbol ordering: common small (run, magnitude) pairs
// get the shortest codes, followed by longer runs and magnitudes, with the
// band-end marker given its own short, reserved code.
//
// The table favors small runs (0-3) paired with small magnitudes (1-8),
// since post-dequantization highpass coefficients cluster near zero with
// short zero-runs between them; larger runs or magnitudes fall back to
// progressively longer codes.
var Codeset17 = mustBuild()

func mustBuild() *Codebook {
	entries := buildCodeset17Entries()
	assignCanonicalCodes(entries)
	cb, err := New(entries)
	if err != nil {
		panic(err)
	}
	return cb
}

// buildCodeset17Entries returns the symbol table in priority order (most
// common combinations first); assignCanonicalCodes fills in CodeLength and
// CodeBits afterward.
func buildCodeset17Entries() []Entry {
	var entries []Entry

	// Band-end marker: rarest in terms of occurrence count (once per
	// subband) but kept short since every subband pays for it once.
	entries = append(entries, Entry{RunLength: 0, Value: -SpecialMarkerBandEnd, CodeLength: 6})

	// Tier 1: run 0-3, magnitude 1-8 -> length 8.
	for run := 0; run <= 3; run++ {
		for mag := 1; mag <= 8; mag++ {
			entries = append(entries, Entry{RunLength: uint16(run), Value: int16(mag), CodeLength: 8})
		}
	}

	// Tier 2: pure zero-runs (no following value), run 1-32 -> length 9.
	for run := 1; run <= 32; run++ {
		entries = append(entries, Entry{RunLength: uint16(run), Value: 0, CodeLength: 9})
	}

	// Tier 3: run 4-7, magnitude 1-8 -> length 10.
	for run := 4; run <= 7; run++ {
		for mag := 1; mag <= 8; mag++ {
			entries = append(entries, Entry{RunLength: uint16(run), Value: int16(mag), CodeLength: 10})
		}
	}

	// Tier 4: run 0-7, magnitude 9-16 -> length 12.
	for run := 0; run <= 7; run++ {
		for mag := 9; mag <= 16; mag++ {
			entries = append(entries, Entry{RunLength: uint16(run), Value: int16(mag), CodeLength: 12})
		}
	}

	// Tier 5: run 8-15, magnitude 1-16 -> length 12.
	for run := 8; run <= 15; run++ {
		for mag := 1; mag <= 16; mag++ {
			entries = append(entries, Entry{RunLength: uint16(run), Value: int16(mag), CodeLength: 12})
		}
	}

	// Tier 6: run 16-31, magnitude 1-16 -> length 14.
	for run := 16; run <= 31; run++ {
		for mag := 1; mag <= 16; mag++ {
			entries = append(entries, Entry{RunLength: uint16(run), Value: int16(mag), CodeLength: 14})
		}
	}

	return entries
}

// assignCanonicalCodes assigns CodeBits in place, shortest code first, in
// the order entries are given (stable within equal lengths). This is the
// standard canonical-Huffman assignment; it produces a valid prefix code
// for any length sequence satisfying the Kraft inequality, which
// buildCodeset17Entries' tiers satisfy with room to spare.
func assignCanonicalCodes(entries []Entry) {
	// Stable sort by length so codes increase monotonically with length.
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	// Simple stable insertion sort keyed by CodeLength: the table is small
	// (a few hundred entries) and already nearly sorted by construction.
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && entries[order[j-1]].CodeLength > entries[order[j]].CodeLength {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}

	var code uint32
	prevLen := -1
	for _, idx := range order {
		length := int(entries[idx].CodeLength)
		if prevLen >= 0 {
			code <<= uint(length - prevLen)
		}
		entries[idx].CodeBits = code
		code++
		prevLen = length
	}
}
