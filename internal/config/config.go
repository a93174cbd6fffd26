package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidConfig is wrapped by every validation failure reported by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Channel limits of the 8-bit HSV representation used for band matching.
//
// Hue is stored halved (0-180) so it fits in a byte, matching the convention
// most marker color tables are written in.
const (
	MaxHue        = 180
	MaxSaturation = 255
	MaxValue      = 255
)

// HSV is a hue/saturation/value triple on the 8-bit scale.
type HSV struct {
	H int `yaml:"h" json:"h"`
	S int `yaml:"s" json:"s"`
	V int `yaml:"v" json:"v"`
}

// ColorRange is an inclusive lower/upper bound pair. A pixel is inside the
// range when all three channels lie within their bounds.
type ColorRange struct {
	Lower HSV `yaml:"lower" json:"lower"`
	Upper HSV `yaml:"upper" json:"upper"`
}

// Contains reports whether the given channel values fall inside the range.
func (r ColorRange) Contains(h, s, v uint8) bool {
	return int(h) >= r.Lower.H && int(h) <= r.Upper.H &&
		int(s) >= r.Lower.S && int(s) <= r.Upper.S &&
		int(v) >= r.Lower.V && int(v) <= r.Upper.V
}

// ColorBand is a named marker color. A pixel belongs to the band when it is
// inside any of the band's ranges.
type ColorBand struct {
	Name   string       `yaml:"name" json:"name"`
	Ranges []ColorRange `yaml:"ranges" json:"ranges"`
}

// Contains reports whether the pixel matches at least one range of the band.
// A band with no ranges contains nothing.
func (b ColorBand) Contains(h, s, v uint8) bool {
	for _, r := range b.Ranges {
		if r.Contains(h, s, v) {
			return true
		}
	}
	return false
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// PipelineConfig is the complete, read-only parameter set of the detection
// pipeline. It is a plain value: copies are independent and a config shared
// between goroutines needs no locking as long as nobody mutates it.
type PipelineConfig struct {
	// CanonicalSize is the resolution every input is resized to.
	CanonicalSize Size `yaml:"canonical_size" json:"canonical_size"`

	// BlurKernel is the Gaussian kernel size; both dimensions must be odd.
	BlurKernel Size `yaml:"blur_kernel" json:"blur_kernel"`

	// StructuringElement is the size of the elliptical element used by the
	// opening and closing passes.
	StructuringElement Size `yaml:"structuring_element" json:"structuring_element"`

	// Bands are matched in order; detections follow the same order.
	Bands []ColorBand `yaml:"bands" json:"bands"`

	MinArea              float64 `yaml:"min_area" json:"min_area"`
	MinRadius            float64 `yaml:"min_radius" json:"min_radius"`
	MaxRadius            float64 `yaml:"max_radius" json:"max_radius"`
	CircularityThreshold float64 `yaml:"circularity_threshold" json:"circularity_threshold"`
}

// DefaultBands returns the stock marker table: green, orange, white and purple.
func DefaultBands() []ColorBand {
	return []ColorBand{
		{Name: "green", Ranges: []ColorRange{
			{Lower: HSV{25, 50, 50}, Upper: HSV{40, 255, 255}},
		}},
		{Name: "orange", Ranges: []ColorRange{
			{Lower: HSV{5, 100, 100}, Upper: HSV{20, 255, 255}},
		}},
		{Name: "white", Ranges: []ColorRange{
			{Lower: HSV{0, 0, 220}, Upper: HSV{180, 30, 255}},
		}},
		{Name: "purple", Ranges: []ColorRange{
			{Lower: HSV{120, 30, 30}, Upper: HSV{170, 255, 255}},
		}},
	}
}

// Default returns the stock pipeline configuration.
func Default() PipelineConfig {
	return PipelineConfig{
		CanonicalSize:        Size{Width: 800, Height: 600},
		BlurKernel:           Size{Width: 5, Height: 5},
		StructuringElement:   Size{Width: 5, Height: 5},
		Bands:                DefaultBands(),
		MinArea:              200,
		MinRadius:            25,
		MaxRadius:            200,
		CircularityThreshold: 0.6,
	}
}

// Clone returns a deep copy so the caller's slices are never shared.
func (c PipelineConfig) Clone() PipelineConfig {
	out := c
	out.Bands = make([]ColorBand, len(c.Bands))
	for i, b := range c.Bands {
		out.Bands[i] = ColorBand{Name: b.Name, Ranges: append([]ColorRange(nil), b.Ranges...)}
	}
	return out
}

// Band returns the band with the given name.
func (c PipelineConfig) Band(name string) (ColorBand, bool) {
	for _, b := range c.Bands {
		if b.Name == name {
			return b, true
		}
	}
	return ColorBand{}, false
}

// Validate checks every field and returns all problems found, combined into
// a single error. Each individual error wraps ErrInvalidConfig.
func (c PipelineConfig) Validate() error {
	var err error

	if c.CanonicalSize.Width <= 0 || c.CanonicalSize.Height <= 0 {
		err = multierr.Append(err, invalidf("canonical size %dx%d must be positive",
			c.CanonicalSize.Width, c.CanonicalSize.Height))
	}
	if !oddPositive(c.BlurKernel.Width) || !oddPositive(c.BlurKernel.Height) {
		err = multierr.Append(err, invalidf("blur kernel %dx%d must be odd and positive",
			c.BlurKernel.Width, c.BlurKernel.Height))
	}
	if c.StructuringElement.Width <= 0 || c.StructuringElement.Height <= 0 {
		err = multierr.Append(err, invalidf("structuring element %dx%d must be positive",
			c.StructuringElement.Width, c.StructuringElement.Height))
	}

	if len(c.Bands) == 0 {
		err = multierr.Append(err, invalidf("at least one color band is required"))
	}
	seen := make(map[string]bool, len(c.Bands))
	for i, b := range c.Bands {
		if b.Name == "" {
			err = multierr.Append(err, invalidf("band %d has no name", i))
		} else if seen[b.Name] {
			err = multierr.Append(err, invalidf("duplicate band name %q", b.Name))
		}
		seen[b.Name] = true
		for j, r := range b.Ranges {
			err = multierr.Append(err, validateRange(b.Name, j, r))
		}
	}

	if c.MinArea < 0 {
		err = multierr.Append(err, invalidf("min area %.2f must not be negative", c.MinArea))
	}
	if c.MinRadius <= 0 || c.MaxRadius < c.MinRadius {
		err = multierr.Append(err, invalidf("radius range [%.2f, %.2f] must satisfy 0 < min <= max",
			c.MinRadius, c.MaxRadius))
	}
	if c.CircularityThreshold <= 0 || c.CircularityThreshold > 1 {
		err = multierr.Append(err, invalidf("circularity threshold %.2f must be in (0, 1]",
			c.CircularityThreshold))
	}

	return err
}

func validateRange(band string, idx int, r ColorRange) error {
	var err error
	check := func(channel string, lo, hi, max int) {
		if lo < 0 || hi > max || lo > hi {
			err = multierr.Append(err, invalidf("band %q range %d: %s bounds [%d, %d] must lie in [0, %d] with lower <= upper",
				band, idx, channel, lo, hi, max))
		}
	}
	check("hue", r.Lower.H, r.Upper.H, MaxHue)
	check("saturation", r.Lower.S, r.Upper.S, MaxSaturation)
	check("value", r.Lower.V, r.Upper.V, MaxValue)
	return err
}

func oddPositive(n int) bool {
	return n > 0 && n%2 == 1
}

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
