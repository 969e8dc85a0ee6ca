// Package quant implements per-band dequantization of highpass wavelet
// coefficients. VC-5 quantization is a simple integer multiplier per band
// (unlike JPEG 2000's floating-point step-size model), so this package is a
// narrow adaptation of that idea to integer arithmetic.
package quant

import (
	"math"

	"github.com/gprimage/gprdecode/internal/xmath"
)

// Dequantize multiplies every coefficient in place by the band's
// quantization factor. A factor of 1 is a no-op, matching
// "Bands with quant=1 are unchanged" from the specification.
func Dequantize(coefficients []int16, factor int32) {
	if factor <= 1 {
		return
	}
	for i, c := range coefficients {
		v := int64(c) * int64(factor)
		coefficients[i] = int16(xmath.Clamp(v, math.MinInt16, math.MaxInt16))
	}
}
