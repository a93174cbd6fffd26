package detection

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindExternalContours_Rectangle(t *testing.T) {
	m := NewMask(10, 10)
	fillRect(m, image.Rect(2, 2, 7, 6))

	got := FindExternalContours(m)
	want := []Contour{{{2, 2}, {2, 5}, {6, 5}, {6, 2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contour mismatch (-want +got):\n%s", diff)
	}
	if a := ContourArea(got[0]); a != 12 {
		t.Errorf("area = %v, want 12", a)
	}
}

func TestFindExternalContours_TouchingBorder(t *testing.T) {
	m := NewMask(8, 8)
	fillRect(m, image.Rect(0, 0, 5, 5))

	got := FindExternalContours(m)
	want := []Contour{{{0, 0}, {0, 4}, {4, 4}, {4, 0}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contour mismatch (-want +got):\n%s", diff)
	}
}

func TestFindExternalContours_DiscoveryOrder(t *testing.T) {
	m := NewMask(50, 20)
	fillRect(m, image.Rect(20, 10, 25, 15)) // lower blob on the left
	fillRect(m, image.Rect(30, 2, 35, 7))   // upper blob on the right

	got := FindExternalContours(m)
	if len(got) != 2 {
		t.Fatalf("got %d contours, want 2", len(got))
	}
	if got[0][0] != image.Pt(30, 2) {
		t.Errorf("first contour starts at %v, want (30,2)", got[0][0])
	}
	if got[1][0] != image.Pt(20, 10) {
		t.Errorf("second contour starts at %v, want (20,10)", got[1][0])
	}
}

func TestFindExternalContours_Nesting(t *testing.T) {
	ring := func() *Mask {
		m := NewMask(16, 16)
		fillRect(m, image.Rect(2, 2, 13, 13))
		for y := 5; y < 10; y++ {
			for x := 5; x < 10; x++ {
				m.set(x, y, false)
			}
		}
		return m
	}

	tests := []struct {
		name   string
		mask   func() *Mask
		want   int
		area   float64
		wantAt image.Point
	}{
		{"ring yields one contour", ring, 1, 100, image.Pt(2, 2)},
		{"blob inside a hole is not returned", func() *Mask {
			m := ring()
			m.set(7, 7, true)
			return m
		}, 1, 100, image.Pt(2, 2)},
		{"solid square inside the hole is not returned", func() *Mask {
			m := NewMask(30, 30)
			fillRect(m, image.Rect(1, 1, 29, 29))
			fillRect(m, image.Rect(4, 4, 26, 26))
			for y := 4; y < 26; y++ {
				for x := 4; x < 26; x++ {
					if x < 7 || x >= 23 || y < 7 || y >= 23 {
						m.set(x, y, false)
					}
				}
			}
			return m
		}, 1, 27 * 27, image.Pt(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindExternalContours(tt.mask())
			if len(got) != tt.want {
				t.Fatalf("got %d contours, want %d", len(got), tt.want)
			}
			if got[0][0] != tt.wantAt {
				t.Errorf("contour starts at %v, want %v", got[0][0], tt.wantAt)
			}
			if a := ContourArea(got[0]); a != tt.area {
				t.Errorf("area = %v, want %v", a, tt.area)
			}
		})
	}
}

func TestFindExternalContours_Degenerate(t *testing.T) {
	t.Run("empty mask", func(t *testing.T) {
		if got := FindExternalContours(NewMask(5, 5)); len(got) != 0 {
			t.Errorf("got %d contours from an empty mask", len(got))
		}
	})

	t.Run("single pixel", func(t *testing.T) {
		m := NewMask(6, 6)
		m.set(3, 4, true)
		got := FindExternalContours(m)
		want := []Contour{{{3, 4}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("contour mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("diagonal neighbors are one region", func(t *testing.T) {
		m := maskFromRows(
			".....",
			".#...",
			"..#..",
			".....",
		)
		got := FindExternalContours(m)
		want := []Contour{{{1, 1}, {2, 2}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("contour mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("one pixel wide line", func(t *testing.T) {
		m := maskFromRows(
			"......",
			".####.",
			"......",
		)
		got := FindExternalContours(m)
		if len(got) != 1 {
			t.Fatalf("got %d contours, want 1", len(got))
		}
		if a := ContourArea(got[0]); a != 0 {
			t.Errorf("area = %v, want 0", a)
		}
	})
}

func TestSimplify(t *testing.T) {
	in := Contour{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {1, 0}}
	want := Contour{{0, 0}, {0, 2}, {2, 2}, {2, 0}}
	if diff := cmp.Diff(want, simplify(in)); diff != "" {
		t.Errorf("simplify mismatch (-want +got):\n%s", diff)
	}

	if ArcLength(in) != ArcLength(simplify(in)) || ContourArea(in) != ContourArea(simplify(in)) {
		t.Error("simplification changed perimeter or area")
	}
}
