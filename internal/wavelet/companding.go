package wavelet

import "github.com/gprimage/gprdecode/internal/xmath"

// Uncompand applies the cubic inverse-companding curve to a single
// dequantized highpass coefficient, expanding the small values the forward
// (encoder-side) companding curve concentrated near zero back to their
// original magnitude range.
//
//	uncompanded(v) = sign(v) * (|v| + floor(|v|^3 * 768 / 255^3))
//
// clamped to the signed 16-bit coefficient range.
func Uncompand(v int32) int32 {
	if v == 0 {
		return 0
	}
	out := int32(xmath.Sign(v)) * expandMagnitude(xmath.Abs(v))
	return xmath.Clamp(out, -32768, 32767)
}

func expandMagnitude(mag int32) int32 {
	cubic := (int64(mag) * int64(mag) * int64(mag) * 768) / (255 * 255 * 255)
	return mag + int32(cubic)
}

// Compand is the forward companding curve's magnitude inverse: the smallest
// non-negative x such that expandMagnitude(x) >= v. expandMagnitude jumps
// from 27 to 29 at x = 28 and its steps keep widening as x grows, so not
// every magnitude sits exactly on the curve; Compand then returns the smallest code whose
// expansion reaches or exceeds it, the nearest representable value from
// above. It exists purely so tests (and callers constructing synthetic
// encoded streams) can build fixtures from a target original magnitude;
// the decoder itself only ever calls Uncompand.
func Compand(v int32) int32 {
	if v == 0 {
		return 0
	}
	mag := xmath.Abs(v)

	lo, hi := int32(0), int32(32767)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if expandMagnitude(mid) < mag {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return int32(xmath.Sign(v)) * lo
}
