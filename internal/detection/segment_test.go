package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/marker-detect/internal/config"
	"github.com/ironsheep/marker-detect/internal/imaging"
)

// stripes returns an image with one vertical stripe per color, each w pixels wide.
func stripes(w, h int, colors ...color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w*len(colors), h))
	for y := 0; y < h; y++ {
		for x := 0; x < w*len(colors); x++ {
			img.SetNRGBA(x, y, colors[x/w])
		}
	}
	return img
}

var (
	orange = color.NRGBA{255, 128, 0, 255} // H=15
	purple = color.NRGBA{128, 0, 255, 255} // H=135
	blue   = color.NRGBA{0, 0, 255, 255}   // H=120
)

func TestSegment_UnionOfRanges(t *testing.T) {
	hsv := imaging.ToHSV(stripes(4, 3, orange, purple, blue))
	band := config.ColorBand{Name: "mixed", Ranges: []config.ColorRange{
		{Lower: config.HSV{H: 10, S: 0, V: 0}, Upper: config.HSV{H: 20, S: 255, V: 255}},
		{Lower: config.HSV{H: 130, S: 0, V: 0}, Upper: config.HSV{H: 140, S: 255, V: 255}},
	}}

	m := Segment(hsv, band)
	if m.Width != 12 || m.Height != 3 {
		t.Fatalf("mask size = %dx%d, want 12x3", m.Width, m.Height)
	}

	tests := []struct {
		name string
		x    int
		want bool
	}{
		{"first range only", 1, true},
		{"second range only", 5, true},
		{"neither range", 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for y := 0; y < 3; y++ {
				if got := m.At(tt.x, y); got != tt.want {
					t.Errorf("At(%d,%d) = %v, want %v", tt.x, y, got, tt.want)
				}
			}
		})
	}
	if m.Count() != 24 {
		t.Errorf("Count = %d, want 24", m.Count())
	}
}

func TestSegment_SingleRangeMatchesContains(t *testing.T) {
	hsv := imaging.ToHSV(stripes(2, 2, orange, purple, blue))
	band, _ := config.Default().Band("orange")

	m := Segment(hsv, band)
	b := hsv.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			h, s, v := hsv.At(x, y)
			if m.At(x, y) != band.Contains(h, s, v) {
				t.Errorf("(%d,%d): mask %v disagrees with band membership", x, y, m.At(x, y))
			}
		}
	}
}

func TestSegment_NoRanges(t *testing.T) {
	hsv := imaging.ToHSV(stripes(3, 3, orange))
	m := Segment(hsv, config.ColorBand{Name: "empty"})

	if m.Count() != 0 {
		t.Errorf("band without ranges produced %d foreground pixels", m.Count())
	}
	if m.Width != 3 || m.Height != 3 {
		t.Errorf("mask size = %dx%d, want 3x3", m.Width, m.Height)
	}
}
