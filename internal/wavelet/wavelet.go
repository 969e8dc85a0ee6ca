// Package wavelet implements the inverse wavelet synthesis used to
// reconstruct a channel's samples from its decoded subbands: per-band
// dequantization and cubic inverse companding of the highpass coefficients,
// followed by a separable 2-tap biorthogonal lifting synthesis applied
// level by level from the coarsest subband outward.
//
// The in-place, deinterleaved storage convention (lowpass half followed by
// highpass half, transformed with the original row stride preserved across
// levels) follows the teacher's multilevel 5/3 transform; the lifting
// filter itself is the simpler 2-tap reversible S-transform pair used by
// VC-5's baseline profile rather than the teacher's 5/3 CDF filter.
package wavelet

import (
	"math"

	"github.com/gprimage/gprdecode/internal/quant"
	"github.com/gprimage/gprdecode/internal/xmath"
)

// PreprocessHighpass dequantizes then uncompands a highpass subband's
// coefficients in place, in that order: dequantization restores the coded
// magnitude scale, and uncompanding then expands the cubic-compressed
// values back to their linear range.
func PreprocessHighpass(coefficients []int16, quantFactor int32) {
	quant.Dequantize(coefficients, quantFactor)
	for i, c := range coefficients {
		coefficients[i] = int16(Uncompand(int32(c)))
	}
}

// Lift1D reconstructs an interleaved signal of length sn+dn from its
// lowpass (low) and highpass (high) halves using the inverse of the
// 2-tap reversible S-transform:
//
//	forward:  high[i] = odd[i] - even[i]
//	          low[i]  = even[i] + (high[i] >> 1)
//	inverse:  even[i] = low[i] - (high[i] >> 1)
//	          odd[i]  = high[i] + even[i]
//
// dn may be sn or sn-1 (odd total length); the trailing even sample in
// that case has no paired odd sample and is copied through unchanged.
func Lift1D(low, high []int32, out []int32) {
	sn := len(low)
	dn := len(high)
	if len(out) != sn+dn {
		panic("wavelet: Lift1D output length mismatch")
	}
	for i := 0; i < dn; i++ {
		even := low[i] - (high[i] >> 1)
		odd := high[i] + even
		out[2*i] = even
		out[2*i+1] = odd
	}
	if sn > dn {
		out[2*dn] = low[dn]
	}
}

// InverseLevel reconstructs one decomposition level in place over a
// deinterleaved buffer: data holds, for each of height rows within
// [0,width), the lowpass half followed by the highpass half (horizontal
// split), and symmetrically the top half of rows followed by the bottom
// half of rows (vertical split). stride is the full row length of data,
// which stays fixed across levels exactly as in the teacher's multilevel
// transform, even though width/height shrink at coarser levels.
//
// Synthesis undoes the forward order (rows then columns) by running
// columns first, then rows, mirroring the teacher's inverse ordering.
func InverseLevel(data []int32, width, height, stride int) {
	if height > 1 {
		col := make([]int32, height)
		tmp := make([]int32, height)
		sn := (height + 1) / 2
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Lift1D(col[:sn], col[sn:height], tmp)
			for y := 0; y < height; y++ {
				data[y*stride+x] = tmp[y]
			}
		}
	}
	if width > 1 {
		row := make([]int32, width)
		tmp := make([]int32, width)
		sn := (width + 1) / 2
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Lift1D(row[:sn], row[sn:width], tmp)
			for x := 0; x < width; x++ {
				data[y*stride+x] = tmp[x]
			}
		}
	}
}

// Dims is a subband region's width and height within a channel's
// coefficient buffer.
type Dims struct{ W, H int }

// LevelSizes returns the width/height of each decomposition level's
// lowpass region, sizes[0] being the full image and sizes[levels] the
// coarsest (innermost) lowpass subband. Callers use this to compute where
// each subband's coefficients belong within the shared per-channel buffer.
func LevelSizes(width, height, levels int) []Dims {
	sizes := make([]Dims, levels+1)
	sizes[0] = Dims{width, height}
	for i := 1; i <= levels; i++ {
		sizes[i] = Dims{(sizes[i-1].W + 1) / 2, (sizes[i-1].H + 1) / 2}
	}
	return sizes
}

// DefaultPrescaleTable is the per-level left-shift applied when a stream
// carries no explicit PrescaleShift tag, appropriate for 12-bit precision
// sources. Index 0 is the shift undone after the coarsest (first
// reconstructed) level.
var DefaultPrescaleTable = [8]uint{0, 2, 2, 0, 0, 0, 0, 0}

// DecodePrescaleTable unpacks a PrescaleShift tag's 16-bit value into its
// per-level shift amounts: 2 bits per level, level 0 in the most
// significant bits.
func DecodePrescaleTable(value uint16) [8]uint {
	var table [8]uint
	for level := 0; level < 8; level++ {
		shift := uint(14 - 2*level)
		table[level] = uint((value >> shift) & 0x3)
	}
	return table
}

// InverseMultilevel reconstructs a full wavelet pyramid in place, from the
// coarsest level (the smallest, innermost lowpass quadrant) out to the
// finest, matching the teacher's InverseMultilevel loop direction. prescale
// undoes, via a left shift applied only to the w*h region InverseLevel just
// synthesized, the matching right shift the encoder applied before its
// forward transform at that level; the rest of the shared buffer still
// holds finer levels' untouched highpass coefficients and must not be
// shifted until their own turn.
func InverseMultilevel(data []int32, width, height, levels int, prescale [8]uint) {
	sizes := LevelSizes(width, height, levels)
	for level := levels - 1; level >= 0; level-- {
		w, h := sizes[level].W, sizes[level].H
		if w <= 1 && h <= 1 {
			// Nothing to reconstruct at this level (the lowpass region has
			// already collapsed to a single sample), so there was no
			// matching forward-side prescale to undo either.
			continue
		}
		InverseLevel(data, w, h, width)
		if shift := prescale[levels-1-level]; shift > 0 {
			for y := 0; y < h; y++ {
				row := data[y*width : y*width+w]
				for i := range row {
					row[i] <<= shift
				}
			}
		}
	}
}

// PlaceQuadrant copies a w*h row-major subband (src) into buf at offset
// (x0, y0), where buf is a width*height buffer with the given stride.
func PlaceQuadrant(buf []int32, stride, x0, y0, w, h int, src []int32) {
	for y := 0; y < h; y++ {
		copy(buf[(y0+y)*stride+x0:(y0+y)*stride+x0+w], src[y*w:(y+1)*w])
	}
}

// ToInt16 clamps a reconstructed int32 buffer down to the decoder's 16-bit
// sample width.
func ToInt16(data []int32, out []int16) {
	for i, v := range data {
		out[i] = int16(xmath.Clamp(v, math.MinInt16, math.MaxInt16))
	}
}
