package colorconv

import (
	"math"

	"github.com/gprimage/gprdecode/internal/xmath"
)

// To8Bit applies the display path's integer-fraction gain (gainNum,
// gainPow2Den meaning gain = gainNum / 2^gainPow2Den) to a log-curved 16-bit
// sample, then a fixed gamma of 0.5 (a square root) and an 8-bit clamp.
// The gamma is not configurable: every GPR preview path uses sqrt.
func To8Bit(logValue uint16, gainNum int32, gainPow2Den uint) uint8 {
	gained := (int64(logValue) * int64(gainNum)) >> gainPow2Den
	norm := xmath.Clamp(float64(gained)/65535.0, 0, 1)
	out := math.Sqrt(norm) * 255.0
	return uint8(math.Round(xmath.Clamp(out, 0, 255)))
}

// To16Bit clamps a log-curved sample to the 16-bit output range. The
// decoder's native sample order is big-endian on the wire; ByteSwap16
// below restores host order where that matters for a caller.
func To16Bit(logValue uint16) uint16 {
	return logValue
}

// ByteSwap16 reverses the byte order of a 16-bit sample, used when the
// decoded stream's big-endian samples must be written out in
// little-endian host order.
func ByteSwap16(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}
