package calib

import "github.com/nivedita/drishti/internal/screen"

// HorizontalZone is the coarse horizontal region of the screen a projected
// point falls into.
type HorizontalZone string

// VerticalZone is the coarse vertical region of the screen a projected point
// falls into.
type VerticalZone string

const (
	ZoneLeft   HorizontalZone = "left"
	ZoneCenter HorizontalZone = "center"
	ZoneRight  HorizontalZone = "right"

	ZoneTop    VerticalZone = "top"
	ZoneMiddle VerticalZone = "middle"
	ZoneBottom VerticalZone = "bottom"
)

// Classification labels a projected point: whether it lies on the screen and
// which coarse zone it falls into. Zone labels are assigned even for
// off-screen points.
type Classification struct {
	OnScreen   bool           `json:"on_screen"`
	Horizontal HorizontalZone `json:"zone_horizontal"`
	Vertical   VerticalZone   `json:"zone_vertical"`
}

// Classify assigns the on-screen flag and zone labels for a pixel
// coordinate. On-screen means within [0, width] x [0, height] with no
// tolerance band; zone thresholds sit at 33% and 67% of each extent.
func Classify(xPx, yPx float64, geom screen.Geometry) Classification {
	w := float64(geom.WidthPx)
	h := float64(geom.HeightPx)

	c := Classification{
		OnScreen: 0 <= xPx && xPx <= w && 0 <= yPx && yPx <= h,
	}

	switch {
	case xPx < w*0.33:
		c.Horizontal = ZoneLeft
	case xPx < w*0.67:
		c.Horizontal = ZoneCenter
	default:
		c.Horizontal = ZoneRight
	}

	switch {
	case yPx < h*0.33:
		c.Vertical = ZoneTop
	case yPx < h*0.67:
		c.Vertical = ZoneMiddle
	default:
		c.Vertical = ZoneBottom
	}

	return c
}
