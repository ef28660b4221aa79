package screen

import (
	"math"
	"testing"
)

func testGeometry() Geometry {
	return Geometry{WidthPx: 1920, HeightPx: 1080, WidthMm: 474.13, HeightMm: 296.33}
}

func TestGeometry_Validate(t *testing.T) {
	if err := testGeometry().Validate(); err != nil {
		t.Fatalf("valid geometry rejected: %v", err)
	}

	bad := []Geometry{
		{WidthPx: 0, HeightPx: 1080, WidthMm: 474, HeightMm: 296},
		{WidthPx: 1920, HeightPx: -1, WidthMm: 474, HeightMm: 296},
		{WidthPx: 1920, HeightPx: 1080, WidthMm: 0, HeightMm: 296},
		{WidthPx: 1920, HeightPx: 1080, WidthMm: 474, HeightMm: -10},
	}
	for i, g := range bad {
		if err := g.Validate(); err == nil {
			t.Errorf("geometry %d: expected validation error, got nil", i)
		}
	}
}

func TestGeometry_DerivedValues(t *testing.T) {
	g := testGeometry()

	// 1920 px across 474.13 mm is about 102.9 DPI.
	if dpi := g.DPI(); math.Abs(dpi-102.86) > 0.1 {
		t.Errorf("DPI = %f, want ~102.86", dpi)
	}
	// Diagonal of a 21.5" class panel.
	if d := g.DiagonalInches(); math.Abs(d-22.0) > 0.1 {
		t.Errorf("DiagonalInches = %f, want ~22.0", d)
	}
}

func TestGeometry_UnitConversionsRoundTrip(t *testing.T) {
	g := testGeometry()

	xMm, yMm := g.PxToMm(960, 540)
	if math.Abs(xMm-237.065) > 1e-9 || math.Abs(yMm-148.165) > 1e-9 {
		t.Errorf("PxToMm(960, 540) = (%f, %f), want (237.065, 148.165)", xMm, yMm)
	}

	xPx, yPx := g.MmToPx(xMm, yMm)
	if math.Abs(xPx-960) > 1e-9 || math.Abs(yPx-540) > 1e-9 {
		t.Errorf("round trip gave (%f, %f), want (960, 540)", xPx, yPx)
	}
}

func TestNewInfo(t *testing.T) {
	info := NewInfo("cand-7", testGeometry(), "top_center", 60)

	if info.CandidateID != "cand-7" {
		t.Errorf("CandidateID = %q", info.CandidateID)
	}
	if info.CollectionMethod != CollectionManual {
		t.Errorf("CollectionMethod = %q, want %q", info.CollectionMethod, CollectionManual)
	}
	if info.DPI != info.Geometry.DPI() {
		t.Errorf("DPI field %f does not match derived %f", info.DPI, info.Geometry.DPI())
	}
	if info.DiagonalInches != info.Geometry.DiagonalInches() {
		t.Errorf("DiagonalInches field %f does not match derived %f", info.DiagonalInches, info.Geometry.DiagonalInches())
	}
	if info.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	if err := info.Validate(); err != nil {
		t.Errorf("embedded geometry invalid: %v", err)
	}
}
