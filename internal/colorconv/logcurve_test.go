package colorconv

import "testing"

func TestDecoderLogCurveMonotonicAndBounded(t *testing.T) {
	if len(DecoderLogCurve) != 1<<12 {
		t.Fatalf("len(DecoderLogCurve) = %d, want %d", len(DecoderLogCurve), 1<<12)
	}
	prev := DecoderLogCurve[0]
	for i := 1; i < len(DecoderLogCurve); i++ {
		if DecoderLogCurve[i] < prev {
			t.Fatalf("log curve not monotonic at %d: prev=%d cur=%d", i, prev, DecoderLogCurve[i])
		}
		prev = DecoderLogCurve[i]
	}
	if DecoderLogCurve[0] != 0 {
		t.Errorf("DecoderLogCurve[0] = %d, want 0", DecoderLogCurve[0])
	}
	if DecoderLogCurve[len(DecoderLogCurve)-1] != 65535 {
		t.Errorf("DecoderLogCurve[last] = %d, want 65535", DecoderLogCurve[len(DecoderLogCurve)-1])
	}
}

func TestApplyLogCurveClampsOutOfRange(t *testing.T) {
	if got := ApplyLogCurve(-5); got != DecoderLogCurve[0] {
		t.Errorf("ApplyLogCurve(-5) = %d, want %d", got, DecoderLogCurve[0])
	}
	last := DecoderLogCurve[len(DecoderLogCurve)-1]
	if got := ApplyLogCurve(10000); got != last {
		t.Errorf("ApplyLogCurve(10000) = %d, want %d", got, last)
	}
}

func TestApplyLogCurveMatchesTableLookup(t *testing.T) {
	if got := ApplyLogCurve(2048); got != DecoderLogCurve[2048] {
		t.Errorf("ApplyLogCurve(2048) = %d, want %d", got, DecoderLogCurve[2048])
	}
}
