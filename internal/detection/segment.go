package detection

import (
	"github.com/ironsheep/marker-detect/internal/config"
	"github.com/ironsheep/marker-detect/internal/imaging"
)

// Segment builds the raw mask of one color band.
//
// Each range of the band produces a candidate mask of the pixels whose three
// channels all lie within the range bounds; the candidates are combined with
// a logical OR. A band with no ranges yields an empty mask. The HSV image is
// expected to be converted and blurred already and is not modified.
func Segment(hsv *imaging.HSVImage, band config.ColorBand) *Mask {
	b := hsv.Bounds()
	out := NewMask(b.Dx(), b.Dy())

	for _, r := range band.Ranges {
		out.Or(inRange(hsv, r))
	}
	return out
}

// inRange marks the pixels inside a single range.
func inRange(hsv *imaging.HSVImage, r config.ColorRange) *Mask {
	b := hsv.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			h, s, v := hsv.At(b.Min.X+x, b.Min.Y+y)
			if r.Contains(h, s, v) {
				m.Pix[y*m.Width+x] = Foreground
			}
		}
	}
	return m
}
