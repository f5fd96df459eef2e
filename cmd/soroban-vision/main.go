package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/soroban-vision/internal/config"
	"github.com/ironsheep/soroban-vision/internal/imaging"
	"github.com/ironsheep/soroban-vision/internal/logging"
	"github.com/ironsheep/soroban-vision/internal/metrics"
	"github.com/ironsheep/soroban-vision/internal/pipeline"
	"github.com/ironsheep/soroban-vision/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	envConfig      = "SOROBAN_CONFIG"
	envMetricsAddr = "SOROBAN_METRICS_ADDR"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "soroban-vision - soroban frame and bead-cell extraction")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  soroban-vision                         Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  soroban-vision extract [--lanes N] <image>...")
	fmt.Fprintln(w, "                                         Print one JSON result per image")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  SOROBAN_LOG_LEVEL=debug       Log level (debug, info, warn, error)")
	fmt.Fprintln(w, "  SOROBAN_LOG_FORMAT=json       Log as JSON instead of text")
	fmt.Fprintln(w, "  SOROBAN_CONFIG=path.json      Load configuration from a JSON file")
	fmt.Fprintln(w, "  SOROBAN_METRICS_ADDR=:9090    Serve Prometheus metrics at /metrics")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("soroban-vision %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage(os.Stdout)
			return
		}
	}

	// stdout carries the MCP protocol or extraction output; logs go to stderr.
	logger := logging.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		logger.Error("fatal", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logging.Logger, args []string) error {
	cfg := config.Default()
	if path := os.Getenv(envConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Info("loaded configuration", "path", path)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if addr := os.Getenv(envMetricsAddr); addr != "" {
		prom := metrics.NewPrometheus()
		srv := prom.NewServer(addr)
		go func() {
			if err := prom.Serve(srv); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		opts = append(opts, pipeline.WithMetrics(prom))
		logger.Info("serving metrics", "addr", addr)
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "extract" {
		return extract(ctx, p, args[1:], os.Stdout)
	}
	if len(args) > 0 {
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	logger.Debug("starting MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"backend", p.Backend(),
	)
	return server.New(p, logger).Run(ctx)
}

func extract(ctx context.Context, p *pipeline.Pipeline, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	lanes := fs.Int("lanes", 0, "fixed lane count (0 detects it)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("extract: no images given")
	}

	if *lanes != 0 {
		n := *lanes
		derived, err := p.Derive(func(c *config.Config) { c.Detection.ExpectedLaneCount = n })
		if err != nil {
			return err
		}
		p = derived
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	var failed int
	for _, path := range fs.Args() {
		img, info, err := imaging.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		res := p.ProcessImage(ctx, img)
		summary := server.NewExtractResult(res, info)
		res.Release()
		if err := enc.Encode(map[string]interface{}{"path": path, "result": summary}); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("extract: %d of %d images could not be read", failed, fs.NArg())
	}
	return nil
}
