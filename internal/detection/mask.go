package detection

import "image"

// Mask is a binary image. Each pixel is either foreground (255) or
// background (0), stored one byte per pixel in row-major order.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// Foreground and Background are the two pixel values a Mask holds.
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// NewMask returns an all-background mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At reports whether (x, y) is foreground. Points outside the mask are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != Background
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, p := range m.Pix {
		if p != Background {
			n++
		}
	}
	return n
}

// Or sets every pixel that is foreground in o. Both masks must have the same size.
func (m *Mask) Or(o *Mask) {
	for i, p := range o.Pix {
		if p != Background {
			m.Pix[i] = Foreground
		}
	}
}

// Gray returns the mask as a grayscale image (foreground white) sharing no
// memory with the mask.
func (m *Mask) Gray() *image.Gray {
	return &image.Gray{
		Pix:    append([]uint8(nil), m.Pix...),
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}
