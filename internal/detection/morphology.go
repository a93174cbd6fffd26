package detection

import (
	"image"
	"math"
)

// StructuringElement is the neighborhood used by erosion and dilation,
// expressed as offsets from the anchor pixel.
type StructuringElement struct {
	Width   int
	Height  int
	Offsets []image.Point
}

// Ellipse returns an elliptical structuring element inscribed in a
// width x height box and anchored at its center. A 5x5 ellipse is a plus
// shape with full middle rows:
//
//	..#..
//	#####
//	#####
//	#####
//	..#..
func Ellipse(width, height int) StructuringElement {
	se := StructuringElement{Width: width, Height: height}
	ax, ay := width/2, height/2
	r, c := height/2, width/2

	var invR2 float64
	if r > 0 {
		invR2 = 1 / float64(r*r)
	}

	for row := 0; row < height; row++ {
		j1, j2 := 0, 0
		dy := row - r
		if abs(dy) <= r {
			dx := int(math.Round(float64(c) * math.Sqrt(float64(r*r-dy*dy)*invR2)))
			j1 = max(c-dx, 0)
			j2 = min(c+dx+1, width)
		}
		for col := j1; col < j2; col++ {
			se.Offsets = append(se.Offsets, image.Pt(col-ax, row-ay))
		}
	}
	return se
}

// Erode keeps a pixel only when every neighbor under the element is
// foreground. Neighbors outside the mask are ignored.
func Erode(m *Mask, se StructuringElement) *Mask {
	out := NewMask(m.Width, m.Height)
	anchored := covers(se, image.Pt(0, 0))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if anchored && m.Pix[y*m.Width+x] == Background {
				continue
			}
			keep := true
			for _, o := range se.Offsets {
				nx, ny := x+o.X, y+o.Y
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				if m.Pix[ny*m.Width+nx] == Background {
					keep = false
					break
				}
			}
			if keep {
				out.Pix[y*m.Width+x] = Foreground
			}
		}
	}
	return out
}

// Dilate sets a pixel when any neighbor under the element is foreground.
// Neighbors outside the mask are ignored.
func Dilate(m *Mask, se StructuringElement) *Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			for _, o := range se.Offsets {
				nx, ny := x+o.X, y+o.Y
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				if m.Pix[ny*m.Width+nx] != Background {
					out.Pix[y*m.Width+x] = Foreground
					break
				}
			}
		}
	}
	return out
}

// Open is erosion followed by dilation. It removes foreground specks that
// cannot contain the element.
func Open(m *Mask, se StructuringElement) *Mask {
	return Dilate(Erode(m, se), se)
}

// Close is dilation followed by erosion. It fills background gaps that the
// element cannot fit into.
func Close(m *Mask, se StructuringElement) *Mask {
	return Erode(Dilate(m, se), se)
}

// Clean removes speckle noise and then fills small holes: an opening
// followed by a closing.
func Clean(m *Mask, se StructuringElement) *Mask {
	return Close(Open(m, se), se)
}

func covers(se StructuringElement, p image.Point) bool {
	for _, o := range se.Offsets {
		if o == p {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
