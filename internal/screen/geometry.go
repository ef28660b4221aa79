// Package screen describes the physical display the gaze mapping targets.
package screen

import (
	"fmt"
	"math"
)

// Geometry holds the pixel and physical extents of the display. It is
// supplied once per calibration session and read-only afterwards.
type Geometry struct {
	WidthPx  int     `json:"screen_width_px"`
	HeightPx int     `json:"screen_height_px"`
	WidthMm  float64 `json:"screen_width_mm"`
	HeightMm float64 `json:"screen_height_mm"`
}

// Validate reports whether all four extents are positive.
func (g Geometry) Validate() error {
	if g.WidthPx <= 0 || g.HeightPx <= 0 {
		return fmt.Errorf("screen: pixel dimensions must be positive, got %dx%d", g.WidthPx, g.HeightPx)
	}
	if g.WidthMm <= 0 || g.HeightMm <= 0 {
		return fmt.Errorf("screen: physical dimensions must be positive, got %.1fx%.1f mm", g.WidthMm, g.HeightMm)
	}
	return nil
}

// DPI returns the horizontal pixel density of the display.
func (g Geometry) DPI() float64 {
	return float64(g.WidthPx) / (g.WidthMm / 25.4)
}

// DiagonalInches returns the physical diagonal size of the display.
func (g Geometry) DiagonalInches() float64 {
	return math.Hypot(g.WidthMm, g.HeightMm) / 25.4
}

// PxToMm converts a pixel coordinate to millimetres on the screen plane.
func (g Geometry) PxToMm(xPx, yPx float64) (xMm, yMm float64) {
	return xPx / float64(g.WidthPx) * g.WidthMm, yPx / float64(g.HeightPx) * g.HeightMm
}

// MmToPx converts a millimetre coordinate on the screen plane to pixels.
func (g Geometry) MmToPx(xMm, yMm float64) (xPx, yPx float64) {
	return xMm / g.WidthMm * float64(g.WidthPx), yMm / g.HeightMm * float64(g.HeightPx)
}
