// Package annotate draws detection overlays onto images.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/ironsheep/marker-detect/internal/detection"
)

// Style controls how detections are drawn.
type Style struct {
	// Outline is the stroke color of the circle drawn around a marker.
	Outline color.NRGBA

	// Label is the fill color of the band name.
	Label color.NRGBA

	// LineWidth is the circle stroke width in pixels.
	LineWidth float64

	// LabelOffset is the gap in pixels between the top of the label and the
	// top of the circle's bounding box.
	LabelOffset float64
}

// DefaultStyle is a red outline of width 2 with a white label 15 pixels
// above the circle.
func DefaultStyle() Style {
	return Style{
		Outline:     color.NRGBA{255, 0, 0, 255},
		Label:       color.NRGBA{255, 255, 255, 255},
		LineWidth:   2,
		LabelOffset: 15,
	}
}

// Annotate draws every detection onto a copy of img using DefaultStyle.
func Annotate(img image.Image, detections []detection.Detection) *image.RGBA {
	return DefaultStyle().Annotate(img, detections)
}

// Annotate draws every detection onto a copy of img. The input image is
// never modified.
//
// Each detection gets a circle outline centered on (X, Y) with its radius
// and its color name written with the top-left corner of the text at
// (X-Radius, Y-Radius-LabelOffset), in the default 7x13 bitmap font.
// Shapes that fall partly or wholly outside the canvas are clipped.
func (s Style) Annotate(img image.Image, detections []detection.Detection) *image.RGBA {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(s.LineWidth)

	for _, d := range detections {
		dc.SetColor(s.Outline)
		dc.DrawCircle(d.X, d.Y, d.Radius)
		dc.Stroke()

		dc.SetColor(s.Label)
		dc.DrawStringAnchored(d.Color, d.X-d.Radius, d.Y-d.Radius-s.LabelOffset, 0, 1)
	}

	return dc.Image().(*image.RGBA)
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
// The leading '#' is optional.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length %d", len(hex))
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
