package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/marker-detect/internal/annotate"
	"github.com/ironsheep/marker-detect/internal/batch"
	"github.com/ironsheep/marker-detect/internal/config"
	"github.com/ironsheep/marker-detect/internal/logging"
	"github.com/ironsheep/marker-detect/internal/pipeline"
	"github.com/ironsheep/marker-detect/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	// Global flags.
	flagConfig       = "config"
	flagLogLevel     = "log-level"
	flagMinArea      = "min-area"
	flagMinRadius    = "min-radius"
	flagMaxRadius    = "max-radius"
	flagCircularity  = "circularity"
	flagOutlineColor = "outline-color"
	flagLabelColor   = "label-color"

	// Run flags.
	flagInput        = "input"
	flagOutput       = "output"
	flagIntermediate = "intermediate"
	flagReport       = "report"
	flagWorkers      = "workers"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "marker-detect: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "marker-detect %s\n", Version)
		fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
	}

	return &cli.App{
		Name:    "marker-detect",
		Usage:   "find colored circular markers in photographs",
		Version: Version,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load the pipeline configuration from YAML `FILE`",
				EnvVars: []string{"MARKER_DETECT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Value:   "info",
				Usage:   "log `LEVEL` (debug, info, warn, error)",
				EnvVars: []string{"MARKER_DETECT_LOG_LEVEL"},
			},
			&cli.Float64Flag{
				Name:    flagMinArea,
				Usage:   "reject regions smaller than `PIXELS`",
				EnvVars: []string{"MARKER_DETECT_MIN_AREA"},
			},
			&cli.Float64Flag{
				Name:    flagMinRadius,
				Usage:   "reject enclosing circles smaller than `PIXELS`",
				EnvVars: []string{"MARKER_DETECT_MIN_RADIUS"},
			},
			&cli.Float64Flag{
				Name:    flagMaxRadius,
				Usage:   "reject enclosing circles larger than `PIXELS`",
				EnvVars: []string{"MARKER_DETECT_MAX_RADIUS"},
			},
			&cli.Float64Flag{
				Name:    flagCircularity,
				Usage:   "reject regions with circularity below `RATIO`",
				EnvVars: []string{"MARKER_DETECT_CIRCULARITY"},
			},
			&cli.StringFlag{
				Name:  flagOutlineColor,
				Value: "#FF0000",
				Usage: "outline `COLOR` as #RRGGBB or #RRGGBBAA",
			},
			&cli.StringFlag{
				Name:  flagLabelColor,
				Value: "#FFFFFF",
				Usage: "label `COLOR` as #RRGGBB or #RRGGBBAA",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "annotate every image in a directory",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    flagInput,
						Aliases: []string{"i"},
						Value:   "images",
						Usage:   "read images from `DIR`",
					},
					&cli.PathFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Value:   "outputs",
						Usage:   "write annotated images to `DIR`",
					},
					&cli.PathFlag{
						Name:  flagIntermediate,
						Usage: "write raw and cleaned band masks to `DIR`",
					},
					&cli.PathFlag{
						Name:  flagReport,
						Usage: "write all detections as JSON to `FILE`",
					},
					&cli.IntFlag{
						Name:    flagWorkers,
						Aliases: []string{"j"},
						Usage:   "process `N` images at once (default: number of CPUs)",
						EnvVars: []string{"MARKER_DETECT_WORKERS"},
					},
				},
				Action: runAction,
			},
			{
				Name:   "serve",
				Usage:  "serve the detection tools over MCP on stdin/stdout",
				Action: serveAction,
			},
		},
	}
}

func runAction(c *cli.Context) error {
	log := newLogger(c)
	p, err := newPipeline(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(p, batch.Options{
		InputDir:        c.Path(flagInput),
		OutputDir:       c.Path(flagOutput),
		IntermediateDir: c.Path(flagIntermediate),
		ReportPath:      c.Path(flagReport),
		Workers:         c.Int(flagWorkers),
	}, logging.Component(log, "batch"))

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "processed %d, skipped %d, failed %d, %d markers\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Detections)
	return nil
}

func serveAction(c *cli.Context) error {
	log := newLogger(c)
	p, err := newPipeline(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	log.Info().Str("version", Version).Str("commit", GitCommit).Msg("starting MCP server")
	return server.New(p, logging.Component(log, "server")).Run(ctx)
}

// newLogger writes to the app's error stream; stdout belongs to results and
// to the MCP protocol.
func newLogger(c *cli.Context) zerolog.Logger {
	level, err := logging.ParseLevel(c.String(flagLogLevel))
	log := logging.NewConsole(c.App.ErrWriter, zerolog.InfoLevel)
	if err != nil {
		log.Warn().Err(err).Msg("using info level")
		return log
	}
	return log.Level(level)
}

// newPipeline loads the configuration file, applies threshold flags on top
// and builds the pipeline. Any validation error is returned before an image
// is touched.
func newPipeline(c *cli.Context) (*pipeline.Pipeline, error) {
	cfg := config.Default()
	if path := c.Path(flagConfig); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(flagMinArea) {
		cfg.MinArea = c.Float64(flagMinArea)
	}
	if c.IsSet(flagMinRadius) {
		cfg.MinRadius = c.Float64(flagMinRadius)
	}
	if c.IsSet(flagMaxRadius) {
		cfg.MaxRadius = c.Float64(flagMaxRadius)
	}
	if c.IsSet(flagCircularity) {
		cfg.CircularityThreshold = c.Float64(flagCircularity)
	}

	style := annotate.DefaultStyle()
	var err error
	if style.Outline, err = annotate.ParseHexColor(c.String(flagOutlineColor)); err != nil {
		return nil, fmt.Errorf("--%s: %w", flagOutlineColor, err)
	}
	if style.Label, err = annotate.ParseHexColor(c.String(flagLabelColor)); err != nil {
		return nil, fmt.Errorf("--%s: %w", flagLabelColor, err)
	}

	return pipeline.New(cfg, pipeline.WithStyle(style))
}
