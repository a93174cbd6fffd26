// Package pipeline runs the full marker detection sequence on one image:
// resize, HSV conversion, blur, then segment, clean and extract for each
// color band, and finally annotation.
//
// A Pipeline holds only read-only state and can be shared between
// goroutines; every call to Process works on buffers it allocates itself.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/marker-detect/internal/annotate"
	"github.com/ironsheep/marker-detect/internal/config"
	"github.com/ironsheep/marker-detect/internal/detection"
	"github.com/ironsheep/marker-detect/internal/imaging"
)

// Pipeline is a validated, frozen detection configuration.
type Pipeline struct {
	cfg    config.PipelineConfig
	se     detection.StructuringElement
	filter detection.ShapeFilter
	style  annotate.Style
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithStyle replaces the default annotation style.
func WithStyle(s annotate.Style) Option {
	return func(p *Pipeline) {
		p.style = s
	}
}

// New validates cfg and returns a pipeline bound to a private copy of it.
// Later changes to cfg or its band slices do not affect the pipeline.
func New(cfg config.PipelineConfig, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	p := &Pipeline{
		cfg:    cfg,
		se:     detection.Ellipse(cfg.StructuringElement.Width, cfg.StructuringElement.Height),
		filter: detection.NewShapeFilter(cfg),
		style:  annotate.DefaultStyle(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns a copy of the configuration the pipeline runs with.
func (p *Pipeline) Config() config.PipelineConfig {
	return p.cfg.Clone()
}

// Prepared is an image after the stages shared by every band.
type Prepared struct {
	// Canonical is the input resized to the configured canonical size.
	Canonical *image.NRGBA

	// HSV is the blurred HSV conversion of Canonical.
	HSV *imaging.HSVImage
}

// BandMasks are the intermediate masks of one band.
type BandMasks struct {
	Band    string
	Raw     *detection.Mask
	Cleaned *detection.Mask
}

// Result is the outcome of processing one image.
type Result struct {
	// Canonical is the resized input, before annotation.
	Canonical *image.NRGBA

	// Annotated is a copy of Canonical with every detection drawn on it.
	Annotated *image.RGBA

	// Detections are ordered by band, then by contour discovery within a band.
	Detections []detection.Detection

	// Masks has one entry per configured band, in band order.
	Masks []BandMasks
}

// Prepare resizes img to the canonical size, converts it to HSV and blurs
// it. This happens once per image; every band reads the same result.
func (p *Pipeline) Prepare(img image.Image) (*Prepared, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", imaging.ErrDecode)
	}

	canonical := imaging.Canonicalize(img, p.cfg.CanonicalSize.Width, p.cfg.CanonicalSize.Height)
	hsv, err := imaging.BlurHSV(imaging.ToHSV(canonical), p.cfg.BlurKernel.Width, p.cfg.BlurKernel.Height)
	if err != nil {
		return nil, err
	}
	return &Prepared{Canonical: canonical, HSV: hsv}, nil
}

// DetectBand segments, cleans and filters one band of a prepared image.
func (p *Pipeline) DetectBand(prep *Prepared, band config.ColorBand) (BandMasks, []detection.Detection) {
	raw := detection.Segment(prep.HSV, band)
	cleaned := detection.Clean(raw, p.se)
	found := detection.Extract(cleaned, band.Name, p.filter)
	return BandMasks{Band: band.Name, Raw: raw, Cleaned: cleaned}, found
}

// Process runs the whole pipeline on img.
//
// The context is checked before the image is prepared and between bands;
// a cancelled context abandons the image and returns ctx.Err(). A nil or
// empty image yields an error wrapping imaging.ErrDecode. Overlapping bands
// are not reconciled: one marker may produce a detection for each band that
// matches it.
func (p *Pipeline) Process(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prep, err := p.Prepare(img)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Canonical:  prep.Canonical,
		Detections: make([]detection.Detection, 0),
		Masks:      make([]BandMasks, 0, len(p.cfg.Bands)),
	}
	for _, band := range p.cfg.Bands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		masks, found := p.DetectBand(prep, band)
		res.Masks = append(res.Masks, masks)
		res.Detections = append(res.Detections, found...)
	}

	res.Annotated = p.style.Annotate(prep.Canonical, res.Detections)
	return res, nil
}

// ProcessImage decodes buf, runs a pipeline built from cfg on it and returns
// the annotated image encoded as PNG together with the detections.
//
// Undecodable input returns an error wrapping imaging.ErrDecode; an invalid
// cfg returns an error wrapping config.ErrInvalidConfig.
func ProcessImage(buf []byte, cfg config.PipelineConfig) ([]byte, []detection.Detection, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}

	img, err := imaging.Decode(buf)
	if err != nil {
		return nil, nil, err
	}

	res, err := p.Process(context.Background(), img)
	if err != nil {
		return nil, nil, err
	}

	out, err := imaging.PNGBytes(res.Annotated)
	if err != nil {
		return nil, nil, err
	}
	return out, res.Detections, nil
}
