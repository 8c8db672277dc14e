package geodesy

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDistanceKnownPoints(t *testing.T) {
	// 47.0000N,8.0000E to 47.0100N,8.0000E is ~1112 m due north.
	d := Distance(47.0000, 8.0000, 47.0100, 8.0000)
	if !approxEqual(d, 1112, 15) {
		t.Errorf("Distance() = %v, want ~1112", d)
	}
}

func TestInitialBearingDueNorth(t *testing.T) {
	b := InitialBearing(47.0000, 8.0000, 47.0100, 8.0000)
	if !approxEqual(b, 0, 1) {
		t.Errorf("InitialBearing() = %v, want ~0", b)
	}
}

func TestInitialBearingDueEast(t *testing.T) {
	b := InitialBearing(47.0000, 8.0000, 47.0000, 8.02)
	if !approxEqual(b, 90, 1) {
		t.Errorf("InitialBearing() = %v, want ~90", b)
	}
}

func TestFinalBearingReversesRoughlyOpposite(t *testing.T) {
	fb := FinalBearing(47.0000, 8.0000, 47.0100, 8.0000)
	if !approxEqual(fb, 0, 1) {
		t.Errorf("FinalBearing() = %v, want ~0 (target directly north, observer directly south of target)", fb)
	}
}

func TestDistanceNorthEastDecomposition(t *testing.T) {
	bearing := 30.0
	dist := 1000.0
	n := DistanceNorth(bearing, dist)
	e := DistanceEast(bearing, dist)
	total := math.Sqrt(n*n + e*e)
	if !approxEqual(total, dist, dist*0.005) {
		t.Errorf("N/E decomposition mismatch: n=%v e=%v total=%v want=%v", n, e, total, dist)
	}
}

func TestRelativeBearingWraparound(t *testing.T) {
	testCases := []struct {
		name     string
		target   float64
		own      float64
		expected float64
	}{
		{"same", 10, 10, 0},
		{"ahead-right", 30, 10, 20},
		{"ahead-left", 350, 10, -20},
		{"behind", 190, 10, 180},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RelativeBearing(tc.target, tc.own)
			if !approxEqual(got, tc.expected, 1e-6) {
				t.Errorf("RelativeBearing(%v, %v) = %v, want %v", tc.target, tc.own, got, tc.expected)
			}
			if got < -180 || got > 180 {
				t.Errorf("RelativeBearing out of range: %v", got)
			}
		})
	}
}

func TestAbsFromRelative(t *testing.T) {
	got := AbsFromRelative(47.0000, 0.00017)
	want := 47.00017
	if !approxEqual(got, want, 1e-6) {
		t.Errorf("AbsFromRelative() = %v, want %v", got, want)
	}
}
