package wavelet

import "testing"

// TestCompandUncompandRoundTrip checks the round trip in the direction the
// decoder actually guarantees: starting from a coded magnitude x, expanding
// it (Uncompand) and then re-compressing (Compand) recovers x exactly.
// expandMagnitude is strictly increasing, so no two codes expand to the
// same value, which makes Compand's search for the smallest code whose
// expansion is >= a given value an exact left inverse of Uncompand for
// every code whose expansion fits the int16 range. Uncompand(±1000) is
// clamped to the int16 limit, and 883 is the smallest code whose
// expansion reaches that limit.
func TestCompandUncompandRoundTrip(t *testing.T) {
	cases := []struct{ code, want int32 }{
		{0, 0}, {1, 1}, {39, 39}, {40, 40}, {100, 100}, {255, 255}, {500, 500}, {1000, 883},
	}
	for _, c := range cases {
		for _, sign := range []int32{1, -1} {
			x, want := sign*c.code, sign*c.want
			expanded := Uncompand(x)
			got := Compand(expanded)
			if got != want {
				t.Errorf("Compand(Uncompand(%d)) = %d, want %d", x, got, want)
			}
		}
	}
}

// TestUncompandCompandMagnitudes checks the round trip in the direction
// used to build encoded test fixtures from a target original magnitude:
// Compand finds the smallest coded value whose expansion is >= v, and
// Uncompand recovers it. Because expandMagnitude's slope exceeds 1 well
// before v reaches a few hundred, not every magnitude is itself in
// Uncompand's image (there is no code x with Uncompand(x) == 500 exactly),
// so round-trip equality only holds for the magnitudes small enough to sit
// exactly on the curve; beyond that the recovered value is the nearest
// one the curve can represent.
func TestUncompandCompandMagnitudes(t *testing.T) {
	exact := map[int32]bool{0: true, 1: true, 39: true, 40: true}
	for _, v := range []int32{0, 1, 39, 40, 100, 255, 500, 1000} {
		got := Uncompand(Compand(v))
		if exact[v] {
			if got != v {
				t.Errorf("Uncompand(Compand(%d)) = %d, want exactly %d", v, got, v)
			}
			continue
		}
		// The curve's codes thin out as v grows (expandMagnitude's slope
		// passes 1 well before v reaches a few hundred), so the achievable
		// tolerance widens with v instead of staying fixed.
		tolerance := int32(1 + v/100)
		if diff := got - v; diff < -tolerance || diff > tolerance {
			t.Errorf("Uncompand(Compand(%d)) = %d, want within %d of %d", v, got, tolerance, v)
		}
	}
}

func TestUncompandZeroIsZero(t *testing.T) {
	if got := Uncompand(0); got != 0 {
		t.Errorf("Uncompand(0) = %d, want 0", got)
	}
}

func TestUncompandMonotonic(t *testing.T) {
	prev := Uncompand(0)
	for v := int32(1); v <= 2000; v++ {
		cur := Uncompand(v)
		if cur < prev {
			t.Fatalf("Uncompand not monotonic at %d: prev=%d cur=%d", v, prev, cur)
		}
		prev = cur
	}
}

func TestUncompandClampsToInt16Range(t *testing.T) {
	got := Uncompand(32767)
	if got > 32767 || got < -32768 {
		t.Errorf("Uncompand(32767) = %d, out of int16 range", got)
	}
}
