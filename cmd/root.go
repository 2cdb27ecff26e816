// Package cmd implements the konabreed command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/krau/konabreed/adapter"
	"github.com/krau/konabreed/config"
	"github.com/krau/konabreed/metrics"
	"github.com/krau/konabreed/onnx"
	"github.com/krau/konabreed/registry"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	c := &cobra.Command{
		Use:           "konabreed",
		Short:         "Dog breed classification with a multi-model ensemble",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	c.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.toml", "Path to the configuration file")
	c.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	c.AddCommand(
		newServeCmd(opts),
		newPredictCmd(opts),
		newModelsCmd(opts),
	)
	return c
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is everything a command needs after startup.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Recorder
	registry *registry.Registry
	teardown func()
}

func (r *app) Close() {
	if err := r.registry.Close(); err != nil {
		slog.Warn("Failed to release adapters", slog.String("error", err.Error()))
	}
	r.teardown()
}

// start loads the configuration, initializes ONNX Runtime and loads every
// adapter. A missing runtime library only disables local models.
func start(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	teardown, ortErr := onnx.Init(cfg.Libonnx)
	if ortErr != nil {
		slog.Warn("ONNX Runtime unavailable, local models disabled", slog.String("error", ortErr.Error()))
		teardown = func() {}
	}

	rec := metrics.New()
	env := adapter.Env{Logger: slog.Default(), Metrics: rec}
	reg := registry.New(specs(ctx, cfg, env, ortErr), env)
	if !reg.LoadAll() {
		teardown()
		return nil, registry.ErrNoAdapters
	}
	if reg.Demo() {
		slog.Warn("No real model loaded, serving demo predictions")
	}
	return &app{cfg: cfg, metrics: rec, registry: reg, teardown: teardown}, nil
}
