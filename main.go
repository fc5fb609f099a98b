package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/graphpad/config"
	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/ingest"
	"github.com/TFMV/graphpad/physics"
	"github.com/TFMV/graphpad/render"
	"github.com/TFMV/graphpad/server"
	"github.com/TFMV/graphpad/session"
)

// Options are the command-line settings layered over the config file
type Options struct {
	Mode       string
	ConfigFile string
	OutputFile string
	Buckets    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, opts, cfg, logger); err != nil {
		logger.Fatal("graphpad failed", zap.Error(err))
	}
}

// parseConfig loads the config file and applies any flags that were set.
func parseConfig(args []string) (*Options, *config.Config, error) {
	fs := flag.NewFlagSet("graphpad", flag.ContinueOnError)
	opts := &Options{}

	fs.StringVar(&opts.Mode, "mode", "server", "Run mode: server, stats, svg, ascii, json, dot")
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.OutputFile, "output", "", "Path to output file for render modes (defaults to stdout)")
	fs.IntVar(&opts.Buckets, "buckets", 0, "Histogram bucket count for stats mode")

	dataFile := fs.String("data", "", "Path to graph file (JSON or YAML)")
	addr := fs.String("addr", "", "Listen address for server mode")
	width := fs.Float64("width", 0, "Canvas width")
	height := fs.Float64("height", 0, "Canvas height")
	layout := fs.String("layout", "", "Layout algorithm: force, surreal")
	noise := fs.Float64("noise", 0, "Surreal layout noise intensity (0.0-1.0)")
	steps := fs.Int("iterations", 0, "Maximum iterations for the layout simulation")
	threshold := fs.Duration("drag-threshold", 0, "Press duration that starts an edge drag")
	debug := fs.Bool("debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, _, err = config.LoadFromPath(opts.ConfigFile)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataFile = *dataFile
		case "addr":
			cfg.Server.Address = *addr
		case "width":
			cfg.Canvas.Width = *width
		case "height":
			cfg.Canvas.Height = *height
		case "layout":
			cfg.Layout.Algorithm = *layout
		case "noise":
			cfg.Layout.Noise = *noise
		case "iterations":
			cfg.Layout.Steps = *steps
		case "drag-threshold":
			cfg.Interaction.DragThreshold = config.Duration(*threshold)
		case "debug":
			if *debug {
				cfg.LogLevel = "debug"
			}
		}
	})
	if opts.Buckets <= 0 {
		opts.Buckets = cfg.Stats.HistogramBuckets
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return opts, cfg, nil
}

// loadStore reads the configured data file. Malformed input is fatal; a
// missing setting starts an empty graph.
func loadStore(cfg *config.Config, logger *zap.Logger) (*graph.Store, error) {
	if cfg.DataFile == "" {
		return graph.NewStore(), nil
	}
	store, err := ingest.LoadFile(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process input file: %w", err)
	}
	if bad := store.VerifyDegrees(); len(bad) > 0 {
		logger.Warn("loaded degrees disagree with edges", zap.Strings("nodes", bad))
	}
	logger.Info("graph loaded",
		zap.String("file", cfg.DataFile),
		zap.Int("nodes", store.NodeCount()),
		zap.Int("edges", store.EdgeCount()))
	return store, nil
}

func run(ctx context.Context, opts *Options, cfg *config.Config, logger *zap.Logger) error {
	store, err := loadStore(cfg, logger)
	if err != nil {
		return err
	}

	layout := physics.GetLayoutAlgorithm(cfg.Layout.Algorithm,
		cfg.Canvas.Width, cfg.Canvas.Height, cfg.Layout.Noise, cfg.Layout.Seed)
	if fd, ok := layout.(*physics.ForceDirectedLayout); ok {
		fd.SetMaxIterations(cfg.Layout.Steps)
	}

	name := cfg.DataFile
	if name == "" {
		name = "untitled"
	}
	sess := session.New(store,
		session.WithName(name),
		session.WithCanvas(cfg.Canvas.Width, cfg.Canvas.Height),
		session.WithLogger(logger.Named("session")),
		session.WithLayout(layout),
		session.WithDragThreshold(cfg.Interaction.DragThreshold.Duration()),
		session.WithDropRadius(cfg.Interaction.DropRadius),
	)

	switch opts.Mode {
	case "server":
		srv := server.New(sess, server.Config{
			Address:          cfg.Server.Address,
			ReadTimeout:      cfg.Server.ReadTimeout.Duration(),
			WriteTimeout:     cfg.Server.WriteTimeout.Duration(),
			ShutdownTimeout:  cfg.Server.ShutdownTimeout.Duration(),
			HistogramBuckets: cfg.Stats.HistogramBuckets,
			LayoutSteps:      cfg.Layout.Steps,
		}, logger.Named("server"))
		return srv.ListenAndServe(ctx)

	case "stats":
		sum, err := sess.Stats(opts.Buckets)
		if err != nil {
			return err
		}
		if sum.Empty {
			logger.Warn("graph is empty")
		}
		fmt.Printf("nodes %d, edges %d\n", sum.Nodes, sum.Edges)
		fmt.Println(sum.String())
		_, err = os.Stdout.Write(render.Histogram(sum.Histogram, 40))
		return err

	default:
		if _, err := render.GetRenderer(opts.Mode); err != nil {
			return err
		}
		return renderOutput(ctx, sess, opts, cfg, logger)
	}
}

// renderOutput lays the graph out and writes it in the requested format
func renderOutput(ctx context.Context, sess *session.Session, opts *Options, cfg *config.Config, logger *zap.Logger) error {
	layoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stable, err := sess.Tick(layoutCtx, cfg.Layout.Steps)
	if err != nil && ctx.Err() != nil {
		return err
	}
	if !stable {
		logger.Warn("physics simulation did not fully stabilize, using partial results")
	}

	output, err := sess.Render(render.NewDefaultOptions(opts.Mode))
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	if opts.OutputFile == "" {
		_, err = os.Stdout.Write(output)
		return err
	}
	if err := os.WriteFile(opts.OutputFile, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("processing complete", zap.String("output", opts.OutputFile))
	return nil
}
