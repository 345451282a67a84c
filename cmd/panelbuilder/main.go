package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conflictpanel/internal/config"
	"conflictpanel/internal/infrastructure"
	"conflictpanel/internal/operations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one pipeline pass and returns the process exit code
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("panelbuilder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML configuration file (defaults to panel.yaml or configs/panel.yaml when present)")
	baseDir := fs.String("base", "", "base directory that relative input and output directories resolve against")
	inDir := fs.String("in", "", "input directory (overrides inputs.dir)")
	outDir := fs.String("out", "", "output directory, must not exist (overrides outputs.dir)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stderr, "%s %s\n", config.AppName, config.AppVersion)
		return 0
	}

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if *baseDir != "" {
		cfg.BaseDir = *baseDir
	}
	if *inDir != "" {
		cfg.Inputs.Dir = *inDir
	}
	if *outDir != "" {
		cfg.Outputs.Dir = *outDir
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve paths: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(paths.Logging(cfg.Logging))
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(paths.Telemetry(cfg.Telemetry), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	pipeline, err := operations.NewPipeline(&operations.Dependencies{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}, providers)
	if err != nil {
		logger.Error("Failed to build pipeline", slog.String("error", err.Error()))
		return 1
	}

	manifest, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("Panel build failed",
			slog.String("run_id", manifest.RunID),
			slog.String("error", err.Error()))
		return 1
	}

	logger.Info("Panel build finished",
		slog.String("run_id", manifest.RunID),
		slog.String("output_dir", paths.OutputDir),
		slog.String("duration", manifest.Duration))
	return 0
}
