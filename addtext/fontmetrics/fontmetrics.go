// Package fontmetrics measures text extents for label centering. The
// preferred provider parses real font files and measures glyph outlines;
// the estimator approximates extents from character count and is used
// whenever a real font cannot be found or measured.
package fontmetrics

// Metrics describes the ink extents of a rendered string, in the same
// units as the size it was measured at. Coordinates follow the SVG
// convention: y grows downward, so TopBearing is negative for ink above
// the baseline.
type Metrics struct {
	Width       float64 // ink width of the whole string
	Height      float64 // ink height of the whole string
	LeftBearing float64 // ink start relative to the text origin
	TopBearing  float64 // ink top relative to the baseline
}

// Provider measures a string rendered in a font family at a given size.
type Provider interface {
	Measure(family, text string, size float64) (Metrics, error)
}

// Estimation ratios relative to font size. The estimator treats the cap
// height as the full ink height, so estimated text centers on its cap
// box.
const (
	estCharWidthRatio = 0.50
	estCapHeightRatio = 0.75
)

// Estimator approximates metrics without any font data. It never fails.
type Estimator struct{}

func (Estimator) Measure(_, text string, size float64) (Metrics, error) {
	capHeight := size * estCapHeightRatio
	return Metrics{
		Width:       float64(len([]rune(text))) * size * estCharWidthRatio,
		Height:      capHeight,
		LeftBearing: 0,
		TopBearing:  -capHeight,
	}, nil
}
