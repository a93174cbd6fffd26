package imaging

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/marker-detect/internal/config"
)

func TestSampleHSV(t *testing.T) {
	img := solidNRGBA(10, 10, color.NRGBA{255, 128, 0, 255})
	blurred, err := BlurHSV(ToHSV(img), 5, 5)
	if err != nil {
		t.Fatal(err)
	}

	sample, err := SampleHSV(img, blurred, 5, 5, config.DefaultBands())
	if err != nil {
		t.Fatalf("SampleHSV failed: %v", err)
	}

	if sample.Hex != "#FF8000" {
		t.Errorf("hex = %s, want #FF8000", sample.Hex)
	}
	if sample.HSV != (config.HSV{H: 15, S: 255, V: 255}) {
		t.Errorf("hsv = %+v, want {15 255 255}", sample.HSV)
	}
	if diff := cmp.Diff([]string{"orange"}, sample.Bands); diff != "" {
		t.Errorf("bands mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleHSV_OverlappingBands(t *testing.T) {
	img := solidNRGBA(4, 4, color.NRGBA{255, 255, 255, 255})
	bands := []config.ColorBand{
		{Name: "white", Ranges: []config.ColorRange{{Lower: config.HSV{H: 0, S: 0, V: 220}, Upper: config.HSV{H: 180, S: 30, V: 255}}}},
		{Name: "bright", Ranges: []config.ColorRange{{Lower: config.HSV{H: 0, S: 0, V: 200}, Upper: config.HSV{H: 180, S: 255, V: 255}}}},
		{Name: "dark", Ranges: []config.ColorRange{{Lower: config.HSV{H: 0, S: 0, V: 0}, Upper: config.HSV{H: 180, S: 255, V: 50}}}},
	}

	sample, err := SampleHSV(img, ToHSV(img), 0, 0, bands)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"white", "bright"}, sample.Bands); diff != "" {
		t.Errorf("bands mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleHSV_OutOfBounds(t *testing.T) {
	img := solidNRGBA(10, 10, color.NRGBA{0, 0, 0, 255})
	hsv := ToHSV(img)

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 5},
		{"negative y", 5, -1},
		{"x at width", 10, 5},
		{"y at height", 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SampleHSV(img, hsv, tt.x, tt.y, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
