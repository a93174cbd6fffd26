package detection

import "image"

// Contour is the closed boundary of one foreground region as an ordered list
// of pixel coordinates. The last point connects back to the first.
type Contour []image.Point

// Neighbor offsets (row, col) in clockwise order starting east. Rows grow
// downward, so E -> SE -> S turns clockwise on screen.
var (
	dRow = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
	dCol = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
)

// border records what the tracer learned about one traced boundary.
type border struct {
	hole   bool
	parent int
}

// FindExternalContours returns the outer boundary of every foreground region
// that is not nested inside the hole of another region.
//
// # Algorithm
//
// Topological border following (Suzuki & Abe, 1985) on an 8-connected
// foreground:
//
//  1. Copy the mask into a label grid padded with one background pixel on
//     every side so the tracer never leaves the grid.
//  2. Raster-scan the grid. A foreground pixel with background to its left
//     starts an outer border; one with background to its right starts a
//     hole border.
//  3. Follow each border, labeling its pixels with the border number, and
//     derive its parent from the last border crossed on the current row.
//  4. Keep outer borders whose parent is the image frame.
//
// Holes and regions inside holes are traced (the labels are needed to keep
// the parent bookkeeping correct) but not returned. Each returned contour
// is simplified by dropping points that continue a straight horizontal,
// vertical or diagonal run, which leaves area and perimeter unchanged.
//
// Contours are returned in discovery order: by the row, then column, of
// their top-left-most pixel.
func FindExternalContours(m *Mask) []Contour {
	w, h := m.Width+2, m.Height+2
	grid := make([]int, w*h)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] != Background {
				grid[(y+1)*w+x+1] = 1
			}
		}
	}

	t := &tracer{grid: grid, w: w}
	// border 1 is the frame, treated as a hole with no parent
	borders := []border{{}, {hole: true}}
	contours := make([]Contour, 0)

	nbd := 1
	for i := 1; i < h-1; i++ {
		lnbd := 1
		for j := 1; j < w-1; j++ {
			f := t.at(i, j)
			if f == 0 {
				continue
			}

			var hole, start bool
			var fromRow, fromCol int
			switch {
			case f == 1 && t.at(i, j-1) == 0:
				start, fromRow, fromCol = true, i, j-1
			case f >= 1 && t.at(i, j+1) == 0:
				start, hole, fromRow, fromCol = true, true, i, j+1
				if f > 1 {
					lnbd = f
				}
			}

			if start {
				nbd++
				prev := borders[lnbd]
				parent := prev.parent
				if prev.hole != hole {
					parent = lnbd
				}
				borders = append(borders, border{hole: hole, parent: parent})

				pts := t.follow(i, j, fromRow, fromCol, nbd)
				if !hole && parent == 1 {
					contours = append(contours, simplify(pts))
				}
			}

			if v := t.at(i, j); v != 1 {
				lnbd = abs(v)
			}
		}
	}

	return contours
}

type tracer struct {
	grid []int
	w    int
}

func (t *tracer) at(i, j int) int {
	return t.grid[i*t.w+j]
}

func (t *tracer) set(i, j, v int) {
	t.grid[i*t.w+j] = v
}

// follow traces one border starting at (i, j), entered from the background
// pixel (fromRow, fromCol), and returns its points in image coordinates.
func (t *tracer) follow(i, j, fromRow, fromCol, nbd int) Contour {
	pts := Contour{image.Pt(j-1, i-1)}

	// find the first foreground neighbor clockwise from the entry pixel
	d0 := direction(fromRow-i, fromCol-j)
	first := -1
	for k := 0; k < 8; k++ {
		d := (d0 + k) % 8
		if t.at(i+dRow[d], j+dCol[d]) != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		t.set(i, j, -nbd)
		return pts
	}

	i1, j1 := i+dRow[first], j+dCol[first]
	i2, j2 := i1, j1
	i3, j3 := i, j

	for {
		// search counterclockwise, starting after (i2, j2), around (i3, j3)
		d := direction(i2-i3, j2-j3)
		eastIsBackground := false
		var i4, j4 int
		for k := 1; k <= 8; k++ {
			dd := (d - k + 8) % 8
			ni, nj := i3+dRow[dd], j3+dCol[dd]
			if t.at(ni, nj) != 0 {
				i4, j4 = ni, nj
				break
			}
			if dd == 0 {
				eastIsBackground = true
			}
		}

		if eastIsBackground {
			t.set(i3, j3, -nbd)
		} else if t.at(i3, j3) == 1 {
			t.set(i3, j3, nbd)
		}

		if i4 == i && j4 == j && i3 == i1 && j3 == j1 {
			return pts
		}
		pts = append(pts, image.Pt(j4-1, i4-1))
		i2, j2 = i3, j3
		i3, j3 = i4, j4
	}
}

// direction returns the neighbor index of the offset (dr, dc).
func direction(dr, dc int) int {
	for d := 0; d < 8; d++ {
		if dRow[d] == dr && dCol[d] == dc {
			return d
		}
	}
	return 0
}

// simplify removes points that lie in the middle of a straight run of
// identical steps.
func simplify(c Contour) Contour {
	n := len(c)
	if n < 3 {
		return c
	}
	out := make(Contour, 0, n)
	for k := 0; k < n; k++ {
		prev := c[(k-1+n)%n]
		next := c[(k+1)%n]
		in := c[k].Sub(prev)
		outStep := next.Sub(c[k])
		if in != outStep {
			out = append(out, c[k])
		}
	}
	if len(out) == 0 {
		return c
	}
	return out
}
