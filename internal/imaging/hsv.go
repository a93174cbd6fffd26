package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Canonicalize resizes img to exactly width x height using bilinear
// resampling. An image that already has the requested size is returned as an
// unmodified copy, so canonicalizing twice is the same as canonicalizing once.
func Canonicalize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Linear)
}

// HSVImage holds one hue/saturation/value triple per pixel on the 8-bit
// scale: hue 0-180 (degrees halved), saturation and value 0-255.
//
// Channels are stored in the R, G and B slots of an RGBA buffer so the
// generic convolution code can filter them; alpha is always opaque.
type HSVImage struct {
	buf *image.RGBA
}

// Bounds returns the pixel rectangle of the image.
func (h *HSVImage) Bounds() image.Rectangle {
	return h.buf.Bounds()
}

// At returns the channel values at (x, y).
func (h *HSVImage) At(x, y int) (hue, sat, val uint8) {
	i := h.buf.PixOffset(x, y)
	return h.buf.Pix[i], h.buf.Pix[i+1], h.buf.Pix[i+2]
}

// ToHSV converts an RGB image into HSV. The conversion goes through
// go-colorful and then rescales to the 8-bit convention.
func ToHSV(img image.Image) *HSVImage {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)

	src, isNRGBA := img.(*image.NRGBA)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var c color.NRGBA
			if isNRGBA {
				c = src.NRGBAAt(x, y)
			} else {
				c = color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			}
			h, s, v := rgbToHSV8(c.R, c.G, c.B)
			i := out.PixOffset(x, y)
			out.Pix[i+0] = h
			out.Pix[i+1] = s
			out.Pix[i+2] = v
			out.Pix[i+3] = 0xff
		}
	}

	return &HSVImage{buf: out}
}

// rgbToHSV8 maps 8-bit RGB to 8-bit HSV. Hue is halved and rounded, which
// can yield 180 for hues just below 360 degrees.
func rgbToHSV8(r, g, b uint8) (uint8, uint8, uint8) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	return uint8(math.Round(h / 2)), uint8(math.Round(s * 255)), uint8(math.Round(v * 255))
}

// BlurHSV applies a Gaussian blur with the given odd kernel size to all
// three channels. Sigma is derived from the kernel size; pixels beyond the
// border are mirrored without repeating the edge pixel (gfedcb|abcdefgh|gfedcba)
// and results are rounded to the nearest level. The input is left untouched.
func BlurHSV(h *HSVImage, kernelWidth, kernelHeight int) (*HSVImage, error) {
	if kernelWidth <= 0 || kernelHeight <= 0 || kernelWidth%2 == 0 || kernelHeight%2 == 0 {
		return nil, fmt.Errorf("blur kernel %dx%d must be odd and positive", kernelWidth, kernelHeight)
	}

	kx := gaussianWeights(kernelWidth)
	ky := gaussianWeights(kernelHeight)
	k := convolution.NewKernel(kernelWidth, kernelHeight)
	for y := 0; y < kernelHeight; y++ {
		for x := 0; x < kernelWidth; x++ {
			k.Matrix[y*kernelWidth+x] = kx[x] * ky[y]
		}
	}

	px, py := kernelWidth/2, kernelHeight/2
	padded := reflectPad(h.buf, px, py)
	blurred := convolution.Convolve(padded, k, &convolution.Options{Wrap: false, KeepAlpha: true, Bias: 0.5})

	b := h.buf.Bounds()
	out := image.NewRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		src := blurred.PixOffset(px, y+py)
		copy(out.Pix[y*out.Stride:y*out.Stride+4*b.Dx()], blurred.Pix[src:src+4*b.Dx()])
	}
	return &HSVImage{buf: out}, nil
}

// reflectPad returns a copy of img, origin at (0,0), grown by px columns and
// py rows on each side with mirrored pixels.
func reflectPad(img *image.RGBA, px, py int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w+2*px, h+2*py))
	for y := 0; y < h+2*py; y++ {
		sy := b.Min.Y + reflect101(y-py, h)
		for x := 0; x < w+2*px; x++ {
			sx := b.Min.X + reflect101(x-px, w)
			si := img.PixOffset(sx, sy)
			di := out.PixOffset(x, y)
			copy(out.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return out
}

// reflect101 maps an index outside [0, n) back inside by mirroring around
// the first and last element.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}

// fixedGaussian holds the binomial kernels used for small sizes when sigma
// is derived from the kernel size. They sum to exactly 1 in binary floating
// point, so flat regions come through the blur unchanged.
var fixedGaussian = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// gaussianWeights returns a normalized 1-D Gaussian of length n with
// sigma = 0.3*((n-1)*0.5 - 1) + 0.8.
func gaussianWeights(n int) []float64 {
	if w, ok := fixedGaussian[n]; ok {
		return append([]float64(nil), w...)
	}

	sigma := 0.3*((float64(n)-1)*0.5-1) + 0.8
	half := float64(n-1) / 2
	w := make([]float64, n)
	var sum float64
	for i := range w {
		d := float64(i) - half
		w[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
