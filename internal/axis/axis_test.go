package axis

import "testing"

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func TestShapeIdentityRoundTrip(t *testing.T) {
	p := Params{Deadzone: 0, Expo: 0, Gain: 1}
	for _, x := range []float64{-1, -0.5, 0, 0.25, 0.75, 1} {
		got := Shape(x, p)
		if !almostEqual(got, x) {
			t.Errorf("Shape(%v, identity) = %v, want %v", x, got, x)
		}
	}
}

func TestDeadzoneCollapsesSmallValues(t *testing.T) {
	p := Params{Deadzone: 0.2, Expo: 0, Gain: 1}
	if got := Shape(0.1, p); got != 0 {
		t.Errorf("expected value inside deadzone to collapse to 0, got %v", got)
	}
	if got := Shape(1, p); !almostEqual(got, 1) {
		t.Errorf("expected value at full deflection to resume to 1, got %v", got)
	}
}

func TestShapeClampsGainOverdrive(t *testing.T) {
	p := Params{Deadzone: 0, Expo: 0, Gain: 2}
	if got := Shape(1, p); got != 1 {
		t.Errorf("expected clamp at 1, got %v", got)
	}
	if got := Shape(-1, p); got != -1 {
		t.Errorf("expected clamp at -1, got %v", got)
	}
}

func TestExpoFixedPoints(t *testing.T) {
	for _, e := range []float64{-0.8, -0.3, 0, 0.3, 0.8} {
		for _, x := range []float64{-1, 0, 1} {
			got := expo(x, e)
			if !almostEqual(got, x) {
				t.Errorf("expo(%v, e=%v) = %v, want fixed point %v", x, e, got, x)
			}
		}
	}
}

func TestNormalizeAbsMidpointIsZero(t *testing.T) {
	got := NormalizeAbs(512, 0, 1024)
	if !almostEqual(got, 0) {
		t.Errorf("expected midpoint to normalize to 0, got %v", got)
	}
	if got := NormalizeAbs(1024, 0, 1024); !almostEqual(got, 1) {
		t.Errorf("expected max to normalize to 1, got %v", got)
	}
}

func TestNormalizeRelCutoff(t *testing.T) {
	if got := NormalizeRel(50, 100); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %v", got)
	}
	if got := NormalizeRel(200, 100); got != 1 {
		t.Errorf("expected clamp at 1, got %v", got)
	}
}

func TestDenormalizeAbsRoundTrip(t *testing.T) {
	got := DenormalizeAbs(0, 0, 1024)
	if got != 512 {
		t.Errorf("expected midpoint 512, got %v", got)
	}
}

func TestRelTickScalesByRate(t *testing.T) {
	if got := RelTick(0.5, 60); !almostEqual(got, 30) {
		t.Errorf("expected 30, got %v", got)
	}
}
