package quant

import "testing"

func TestDequantizeUnityFactorIsNoop(t *testing.T) {
	coeffs := []int16{0, 1, -1, 1000, -1000}
	want := append([]int16{}, coeffs...)
	Dequantize(coeffs, 1)
	for i := range coeffs {
		if coeffs[i] != want[i] {
			t.Errorf("index %d: got %d, want %d (unchanged)", i, coeffs[i], want[i])
		}
	}
}

func TestDequantizeZeroFactorIsNoop(t *testing.T) {
	coeffs := []int16{5, -5}
	want := append([]int16{}, coeffs...)
	Dequantize(coeffs, 0)
	for i := range coeffs {
		if coeffs[i] != want[i] {
			t.Errorf("index %d: got %d, want %d (unchanged)", i, coeffs[i], want[i])
		}
	}
}

func TestDequantizeScales(t *testing.T) {
	coeffs := []int16{1, -1, 100, -100}
	Dequantize(coeffs, 4)
	want := []int16{4, -4, 400, -400}
	for i := range coeffs {
		if coeffs[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, coeffs[i], want[i])
		}
	}
}

func TestDequantizeClampsOverflow(t *testing.T) {
	coeffs := []int16{10000, -10000}
	Dequantize(coeffs, 10)
	if coeffs[0] != 32767 {
		t.Errorf("got %d, want clamp to 32767", coeffs[0])
	}
	if coeffs[1] != -32768 {
		t.Errorf("got %d, want clamp to -32768", coeffs[1])
	}
}
