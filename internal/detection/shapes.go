package detection

import "github.com/ironsheep/marker-detect/internal/config"

// Detection is one accepted circular marker.
//
// The center and radius come from the minimum enclosing circle of the
// region's outer contour, in canonical-image pixel coordinates. Area and
// Circularity are the values the region was accepted with.
type Detection struct {
	// Color is the name of the band whose mask produced the region.
	Color string `json:"color"`

	// X and Y locate the center (0,0 = top-left).
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Radius is the enclosing-circle radius in pixels.
	Radius float64 `json:"radius"`

	// Area is the contour's enclosed area in square pixels.
	Area float64 `json:"area"`

	// Circularity is 4*pi*area/perimeter^2 (1.0 for a perfect circle).
	Circularity float64 `json:"circularity"`
}

// ShapeFilter holds the acceptance thresholds applied to every contour.
// All bounds are inclusive.
type ShapeFilter struct {
	MinArea        float64
	MinRadius      float64
	MaxRadius      float64
	MinCircularity float64
}

// NewShapeFilter returns the thresholds configured in cfg. The same filter
// is used for every color band.
func NewShapeFilter(cfg config.PipelineConfig) ShapeFilter {
	return ShapeFilter{
		MinArea:        cfg.MinArea,
		MinRadius:      cfg.MinRadius,
		MaxRadius:      cfg.MaxRadius,
		MinCircularity: cfg.CircularityThreshold,
	}
}

// Extract finds the circular regions of a cleaned mask.
//
// Every external contour is tested in three stages and skipped at the first
// one it fails:
//
//  1. Area: the enclosed polygon area must be at least MinArea.
//  2. Radius: the minimum enclosing circle must have MinRadius <= r <= MaxRadius.
//  3. Circularity: 4*pi*area/perimeter^2 must be at least MinCircularity.
//     A zero perimeter counts as circularity 0.
//
// Detections are returned in contour discovery order and labeled with
// colorName. Degenerate regions are filtered, never reported as errors.
// The result is non-nil even when nothing passes.
func Extract(m *Mask, colorName string, f ShapeFilter) []Detection {
	out := make([]Detection, 0)

	for _, c := range FindExternalContours(m) {
		area := ContourArea(c)
		if area < f.MinArea {
			continue
		}

		circ := MinEnclosingCircle(c)
		if circ.Radius < f.MinRadius || circ.Radius > f.MaxRadius {
			continue
		}

		score := Circularity(area, ArcLength(c))
		if score < f.MinCircularity {
			continue
		}

		out = append(out, Detection{
			Color:       colorName,
			X:           circ.X,
			Y:           circ.Y,
			Radius:      circ.Radius,
			Area:        area,
			Circularity: score,
		})
	}

	return out
}
