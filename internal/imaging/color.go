package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/marker-detect/internal/config"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSVSample describes one pixel as the detector sees it.
//
// It is the main tool for tuning color bands: sample a marker in a real
// photograph, read off its HSV values, and widen or narrow the band ranges
// until the marker falls inside.
type HSVSample struct {
	X int `json:"x"` // X coordinate in the canonical image
	Y int `json:"y"` // Y coordinate in the canonical image

	// Hex and RGB are the canonical (resized, unblurred) pixel color.
	Hex string   `json:"hex"`
	RGB RGBColor `json:"rgb"`

	// HSV is the blurred value the band ranges are tested against.
	HSV config.HSV `json:"hsv"`

	// Bands lists every band whose ranges contain HSV, in configuration order.
	// More than one entry means the bands overlap at this pixel.
	Bands []string `json:"bands"`
}

// SampleHSV reads the pixel at (x, y) from a canonical image and the blurred
// HSV image derived from it and reports which bands match.
//
// # Errors
//
// Returns an error if (x, y) is outside either image.
func SampleHSV(canonical image.Image, hsv *HSVImage, x, y int, bands []config.ColorBand) (*HSVSample, error) {
	pt := image.Pt(x, y)
	if !pt.In(canonical.Bounds()) || !pt.In(hsv.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, _ := canonical.At(x, y).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

	h, s, v := hsv.At(x, y)
	matches := make([]string, 0, len(bands))
	for _, band := range bands {
		if band.Contains(h, s, v) {
			matches = append(matches, band.Name)
		}
	}

	return &HSVSample{
		X:     x,
		Y:     y,
		Hex:   fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB:   RGBColor{R: r8, G: g8, B: b8},
		HSV:   config.HSV{H: int(h), S: int(s), V: int(v)},
		Bands: matches,
	}, nil
}
