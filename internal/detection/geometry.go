package detection

import (
	"math"
	"math/rand"
)

// Circle is a center and radius in floating-point pixel coordinates.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// ContourArea returns the area enclosed by the closed polygon through the
// contour points (shoelace formula). Contours with fewer than three points
// have zero area.
func ContourArea(c Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		p, q := c[i], c[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// ArcLength returns the perimeter of the closed polygon through the contour
// points, including the segment from the last point back to the first.
func ArcLength(c Contour) float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		p, q := c[i], c[(i+1)%n]
		total += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return total
}

// Circularity is 4*pi*area / perimeter^2: 1 for a perfect circle and lower
// for elongated or ragged shapes. A zero perimeter yields 0.
func Circularity(area, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

const circleEps = 1e-7

// MinEnclosingCircle returns the smallest circle containing every contour
// point. An empty contour yields the zero Circle.
//
// The points are visited in a fixed pseudo-random order (Welzl's
// incremental algorithm), so the result is deterministic for a given
// contour and the expected running time is linear.
func MinEnclosingCircle(c Contour) Circle {
	if len(c) == 0 {
		return Circle{}
	}

	pts := make([][2]float64, len(c))
	for i, p := range c {
		pts[i] = [2]float64{float64(p.X), float64(p.Y)}
	}
	rng := rand.New(rand.NewSource(int64(len(pts))))
	rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	circ := Circle{X: pts[0][0], Y: pts[0][1]}
	for i := 1; i < len(pts); i++ {
		if inCircle(circ, pts[i]) {
			continue
		}
		circ = Circle{X: pts[i][0], Y: pts[i][1]}
		for j := 0; j < i; j++ {
			if inCircle(circ, pts[j]) {
				continue
			}
			circ = circleFrom2(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if inCircle(circ, pts[k]) {
					continue
				}
				circ = circleFrom3(pts[i], pts[j], pts[k])
			}
		}
	}
	return circ
}

func inCircle(c Circle, p [2]float64) bool {
	return math.Hypot(p[0]-c.X, p[1]-c.Y) <= c.Radius+circleEps
}

func circleFrom2(a, b [2]float64) Circle {
	return Circle{
		X:      (a[0] + b[0]) / 2,
		Y:      (a[1] + b[1]) / 2,
		Radius: math.Hypot(a[0]-b[0], a[1]-b[1]) / 2,
	}
}

// circleFrom3 returns the circumcircle of a, b and c. Collinear points fall
// back to the circle on their farthest pair.
func circleFrom3(a, b, c [2]float64) Circle {
	bx, by := b[0]-a[0], b[1]-a[1]
	cx, cy := c[0]-a[0], c[1]-a[1]
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < circleEps {
		best := circleFrom2(a, b)
		for _, cand := range []Circle{circleFrom2(a, c), circleFrom2(b, c)} {
			if cand.Radius > best.Radius {
				best = cand
			}
		}
		return best
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Circle{X: a[0] + ux, Y: a[1] + uy, Radius: math.Hypot(ux, uy)}
}
