// Package batch runs the detection pipeline over every image in a directory
// and writes the annotated copies, optional diagnostic masks and an optional
// JSON report.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/marker-detect/internal/detection"
	"github.com/ironsheep/marker-detect/internal/imaging"
	"github.com/ironsheep/marker-detect/internal/pipeline"
)

// Options selects the directories a Runner reads and writes.
type Options struct {
	// InputDir is scanned non-recursively for .jpg, .jpeg and .png files.
	InputDir string

	// OutputDir receives annotated_<filename> for every processed image.
	OutputDir string

	// IntermediateDir, when set, receives the raw and cleaned mask of every
	// band as <filename>_<band>_mask_raw.png and <filename>_<band>_mask_proc.png.
	IntermediateDir string

	// ReportPath, when set, receives a JSON report of all detections.
	ReportPath string

	// Workers bounds how many images are processed at once. Zero or less
	// means one per CPU.
	Workers int
}

// Summary counts the outcome of a batch.
type Summary struct {
	// Processed images were decoded, analysed and written.
	Processed int `json:"processed"`

	// Skipped images could not be decoded.
	Skipped int `json:"skipped"`

	// Failed images were analysed but their output could not be written.
	Failed int `json:"failed"`

	// Detections is the total across all processed images.
	Detections int `json:"detections"`
}

// FileReport is one entry of the JSON report.
type FileReport struct {
	File       string                `json:"file"`
	Output     string                `json:"output,omitempty"`
	Detections []detection.Detection `json:"detections"`
	Error      string                `json:"error,omitempty"`
}

// Runner processes a directory of images with one pipeline.
type Runner struct {
	pipeline *pipeline.Pipeline
	opts     Options
	log      zerolog.Logger
}

// NewRunner returns a runner. The pipeline is shared by all workers.
func NewRunner(p *pipeline.Pipeline, opts Options, log zerolog.Logger) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Runner{pipeline: p, opts: opts, log: log}
}

// IsImageFile reports whether name has one of the accepted extensions,
// ignoring case.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// OutputName returns the file name an annotated image is written under.
func OutputName(name string) string {
	return "annotated_" + name
}

// MaskName returns the file name of one diagnostic mask; stage is "raw" or "proc".
func MaskName(name, band, stage string) string {
	return fmt.Sprintf("%s_%s_mask_%s.png", name, band, stage)
}

// Run processes every image in the input directory.
//
// Files that cannot be decoded are logged and counted as skipped; files
// whose output cannot be written are logged and counted as failed. Neither
// stops the batch. Run returns an error only when the directories cannot be
// read or created, the report cannot be written, or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	names, err := r.listImages()
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{r.opts.OutputDir, r.opts.IntermediateDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	r.log.Info().
		Str("input", r.opts.InputDir).
		Int("images", len(names)).
		Int("workers", r.opts.Workers).
		Msg("starting batch")

	var (
		mu      sync.Mutex
		summary Summary
		reports = make([]FileReport, len(names))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		i, name := i, name
		g.Go(func() error {
			rep, outcome, err := r.processFile(gctx, name)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			reports[i] = rep
			switch outcome {
			case outcomeProcessed:
				summary.Processed++
				summary.Detections += len(rep.Detections)
			case outcomeSkipped:
				summary.Skipped++
			case outcomeFailed:
				summary.Failed++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &summary, err
	}
	if err := ctx.Err(); err != nil {
		return &summary, err
	}

	if r.opts.ReportPath != "" {
		if err := writeReport(r.opts.ReportPath, reports); err != nil {
			return &summary, err
		}
	}

	r.log.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("detections", summary.Detections).
		Msg("batch complete")

	return &summary, nil
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

// processFile handles one image. Only cancellation is returned as an error;
// every other problem is folded into the outcome.
func (r *Runner) processFile(ctx context.Context, name string) (FileReport, outcome, error) {
	rep := FileReport{File: name, Detections: make([]detection.Detection, 0)}
	log := r.log.With().Str("file", name).Logger()

	img, err := imaging.Open(filepath.Join(r.opts.InputDir, name))
	if err != nil {
		log.Warn().Err(err).Msg("cannot read image, skipping")
		rep.Error = err.Error()
		return rep, outcomeSkipped, nil
	}

	res, err := r.pipeline.Process(ctx, img)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, outcomeFailed, ctxErr
		}
		if errors.Is(err, imaging.ErrDecode) {
			log.Warn().Err(err).Msg("cannot read image, skipping")
			rep.Error = err.Error()
			return rep, outcomeSkipped, nil
		}
		log.Error().Err(err).Msg("processing failed")
		rep.Error = err.Error()
		return rep, outcomeFailed, nil
	}

	for _, d := range res.Detections {
		log.Debug().
			Str("color", d.Color).
			Float64("x", d.X).
			Float64("y", d.Y).
			Float64("radius", d.Radius).
			Float64("circularity", d.Circularity).
			Msg("marker")
	}

	if r.opts.IntermediateDir != "" {
		if err := r.writeMasks(name, res.Masks); err != nil {
			log.Error().Err(err).Msg("cannot write masks")
			rep.Error = err.Error()
			return rep, outcomeFailed, nil
		}
	}

	out := filepath.Join(r.opts.OutputDir, OutputName(name))
	if err := imaging.Save(out, res.Annotated); err != nil {
		log.Error().Err(err).Msg("cannot write output")
		rep.Error = err.Error()
		return rep, outcomeFailed, nil
	}

	rep.Output = out
	rep.Detections = res.Detections
	log.Info().
		Int("detections", len(res.Detections)).
		Str("output", out).
		Msg("processed")
	return rep, outcomeProcessed, nil
}

func (r *Runner) writeMasks(name string, masks []pipeline.BandMasks) error {
	for _, m := range masks {
		raw := filepath.Join(r.opts.IntermediateDir, MaskName(name, m.Band, "raw"))
		if err := imaging.Save(raw, m.Raw.Gray()); err != nil {
			return err
		}
		proc := filepath.Join(r.opts.IntermediateDir, MaskName(name, m.Band, "proc"))
		if err := imaging.Save(proc, m.Cleaned.Gray()); err != nil {
			return err
		}
	}
	return nil
}

// listImages returns the accepted image names in the input directory,
// sorted by name.
func (r *Runner) listImages() ([]string, error) {
	entries, err := os.ReadDir(r.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func writeReport(path string, reports []FileReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
