package imaging

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

// createPatternImage creates an image with a different fill per quadrant.
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.NRGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.NRGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.NRGBA{0, 0, 255, 255}
			default:
				c = color.NRGBA{uint8(x), uint8(y), uint8(x + y), 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func solidNRGBA(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCanonicalize_Resizes(t *testing.T) {
	img := createPatternImage(400, 300)
	out := Canonicalize(img, 800, 600)
	if out.Bounds() != image.Rect(0, 0, 800, 600) {
		t.Errorf("bounds = %v, want 800x600", out.Bounds())
	}

	tall := createPatternImage(120, 900)
	if b := Canonicalize(tall, 800, 600).Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("aspect ratio should not be preserved, got %v", b)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	img := createPatternImage(800, 600)

	once := Canonicalize(img, 800, 600)
	twice := Canonicalize(once, 800, 600)

	if !bytes.Equal(img.Pix, once.Pix) {
		t.Error("canonical input was modified by resizing")
	}
	if !bytes.Equal(once.Pix, twice.Pix) {
		t.Error("second resize changed pixels")
	}
	if &once.Pix[0] == &img.Pix[0] {
		t.Error("resize should return a copy, not the input buffer")
	}
}

func TestToHSV_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		c       color.NRGBA
		h, s, v uint8
	}{
		{"black", color.NRGBA{0, 0, 0, 255}, 0, 0, 0},
		{"white", color.NRGBA{255, 255, 255, 255}, 0, 0, 255},
		{"gray", color.NRGBA{128, 128, 128, 255}, 0, 0, 128},
		{"red", color.NRGBA{255, 0, 0, 255}, 0, 255, 255},
		{"green", color.NRGBA{0, 255, 0, 255}, 60, 255, 255},
		{"blue", color.NRGBA{0, 0, 255, 255}, 120, 255, 255},
		{"yellow green", color.NRGBA{200, 255, 0, 255}, 36, 255, 255},
		{"orange", color.NRGBA{255, 128, 0, 255}, 15, 255, 255},
		{"purple", color.NRGBA{128, 0, 255, 255}, 135, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hsv := ToHSV(solidNRGBA(2, 2, tt.c))
			h, s, v := hsv.At(1, 1)
			if h != tt.h || s != tt.s || v != tt.v {
				t.Errorf("HSV = (%d,%d,%d), want (%d,%d,%d)", h, s, v, tt.h, tt.s, tt.v)
			}
		})
	}
}

func TestToHSV_GenericImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})

	h, s, v := ToHSV(img).At(1, 1)
	if h != 120 || s != 255 || v != 255 {
		t.Errorf("HSV = (%d,%d,%d), want (120,255,255)", h, s, v)
	}
}

func TestBlurHSV_FlatRegionUnchanged(t *testing.T) {
	hsv := ToHSV(solidNRGBA(20, 20, color.NRGBA{200, 255, 0, 255}))
	blurred, err := BlurHSV(hsv, 5, 5)
	if err != nil {
		t.Fatalf("BlurHSV failed: %v", err)
	}

	for _, p := range []image.Point{{0, 0}, {10, 10}, {19, 19}} {
		h, s, v := blurred.At(p.X, p.Y)
		if h != 36 || s != 255 || v != 255 {
			t.Errorf("at %v: HSV = (%d,%d,%d), want (36,255,255)", p, h, s, v)
		}
	}
}

func TestBlurHSV_SpreadsWithinKernel(t *testing.T) {
	img := solidNRGBA(21, 21, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(10, 10, color.NRGBA{255, 255, 255, 255})
	hsv := ToHSV(img)

	blurred, err := BlurHSV(hsv, 5, 5)
	if err != nil {
		t.Fatalf("BlurHSV failed: %v", err)
	}

	if _, _, v := blurred.At(10, 10); v == 0 || v == 255 {
		t.Errorf("center value %d should be attenuated but non-zero", v)
	}
	if _, _, v := blurred.At(12, 10); v == 0 {
		t.Error("pixel two steps away should receive some weight")
	}
	if _, _, v := blurred.At(13, 10); v != 0 {
		t.Errorf("pixel outside the kernel got value %d", v)
	}

	// input untouched
	if _, _, v := hsv.At(10, 10); v != 255 {
		t.Errorf("input modified: center value %d", v)
	}
}

// hsvColumns builds an HSV image whose value channel is vals[x] in every row.
func hsvColumns(height int, vals ...uint8) *HSVImage {
	buf := image.NewRGBA(image.Rect(0, 0, len(vals), height))
	for y := 0; y < height; y++ {
		for x, v := range vals {
			i := buf.PixOffset(x, y)
			buf.Pix[i+2] = v
			buf.Pix[i+3] = 0xff
		}
	}
	return &HSVImage{buf: buf}
}

func TestBlurHSV_RoundsToNearest(t *testing.T) {
	// x=4 sees 220,220,220,219,219 with weights 1,4,6,4,1 (/16): 219.6875
	hsv := hsvColumns(10, 220, 220, 220, 220, 220, 219, 219, 219, 219, 219)
	blurred, err := BlurHSV(hsv, 5, 5)
	if err != nil {
		t.Fatalf("BlurHSV failed: %v", err)
	}

	tests := []struct {
		x    int
		want uint8
	}{
		{3, 220}, // 219.9375
		{4, 220}, // 219.6875
		{5, 219}, // 219.3125
		{6, 219}, // 219.0625
	}
	for _, tt := range tests {
		if _, _, v := blurred.At(tt.x, 5); v != tt.want {
			t.Errorf("x=%d: V = %d, want %d", tt.x, v, tt.want)
		}
	}
}

func TestBlurHSV_MirrorsBorder(t *testing.T) {
	// x=0 sees x2,x1,x0,x1,x2 = 200,200,100,200,200: 2600/16 = 162.5
	// repeating the edge pixel instead would give 131.25
	hsv := hsvColumns(10, 100, 200, 200, 200, 200, 200, 200, 200, 200, 200)
	blurred, err := BlurHSV(hsv, 5, 5)
	if err != nil {
		t.Fatalf("BlurHSV failed: %v", err)
	}

	if _, _, v := blurred.At(0, 0); v != 163 {
		t.Errorf("corner V = %d, want 163", v)
	}
	if _, _, v := blurred.At(1, 9); v != 175 {
		t.Errorf("x=1 V = %d, want 175", v) // (200+400+1200+800+200)/16
	}
	if b := blurred.Bounds(); b != image.Rect(0, 0, 10, 10) {
		t.Errorf("bounds = %v, want 10x10", b)
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{-1, 5, 1},
		{-2, 5, 2},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 3},
		{6, 5, 2},
		{-2, 1, 0},
		{-3, 2, 1},
		{3, 2, 1},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestBlurHSV_InvalidKernel(t *testing.T) {
	hsv := ToHSV(solidNRGBA(4, 4, color.NRGBA{0, 0, 0, 255}))
	for _, k := range [][2]int{{4, 5}, {5, 0}, {-3, 3}} {
		if _, err := BlurHSV(hsv, k[0], k[1]); err == nil {
			t.Errorf("kernel %v: expected error", k)
		}
	}
}

func TestGaussianWeights(t *testing.T) {
	for _, n := range []int{1, 3, 5, 7, 9, 11} {
		w := gaussianWeights(n)
		if len(w) != n {
			t.Fatalf("n=%d: got %d weights", n, len(w))
		}
		var sum float64
		for i := range w {
			sum += w[i]
			if math.Abs(w[i]-w[n-1-i]) > 1e-12 {
				t.Errorf("n=%d: kernel not symmetric", n)
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("n=%d: weights sum to %v", n, sum)
		}
	}
}
