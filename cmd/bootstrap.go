package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/krau/konabreed/adapter"
	"github.com/krau/konabreed/config"
	"github.com/krau/konabreed/imageproc"
	"github.com/krau/konabreed/registry"
)

// specs turns the configured adapters into registry specs, keeping their
// order. ortErr is the ONNX Runtime initialization error, if any; local
// models fail with it instead of touching the runtime.
func specs(ctx context.Context, cfg *config.Config, env adapter.Env, ortErr error) []registry.Spec {
	out := make([]registry.Spec, 0, len(cfg.Adapters))
	for _, a := range cfg.Adapters {
		if a.Disabled {
			continue
		}
		out = append(out, registry.Spec{Name: a.Name, Build: builder(ctx, cfg, a, env, ortErr)})
	}
	return out
}

func builder(ctx context.Context, cfg *config.Config, a config.Adapter, env adapter.Env, ortErr error) func() (adapter.Adapter, error) {
	timeout := time.Duration(a.TimeoutSeconds) * time.Second
	switch a.Kind {
	case config.KindTransformer, config.KindCNN:
		return func() (adapter.Adapter, error) {
			if ortErr != nil {
				return nil, fmt.Errorf("onnx runtime unavailable: %w", ortErr)
			}
			opts := adapter.ONNXOptions{
				Name:       a.Name,
				Category:   a.Category,
				Pretrained: a.Kind == config.KindTransformer,
				ModelPath:  modelPath(cfg.ModelDir, a.ModelFile),
				LabelsPath: modelPath(cfg.ModelDir, a.LabelsFile),
				Size:       imageproc.Size{Width: a.InputWidth, Height: a.InputHeight},
				Layout:     a.Layout,
				Output:     a.Output,
				Mean:       a.Mean,
				Std:        a.Std,
				Sessions:   a.Sessions,
			}
			return adapter.NewONNX(opts, env)
		}
	case config.KindAzure:
		return func() (adapter.Adapter, error) {
			return adapter.NewAzure(adapter.AzureOptions{
				Name:          a.Name,
				Category:      a.Category,
				Endpoint:      a.Endpoint,
				ProjectID:     a.ProjectID,
				Iteration:     a.Iteration,
				PredictionKey: a.PredictionKey,
				Timeout:       timeout,
			}, env)
		}
	case config.KindGemini:
		return func() (adapter.Adapter, error) {
			return adapter.NewGemini(ctx, adapter.GeminiOptions{
				Name:     a.Name,
				Category: a.Category,
				APIKey:   a.APIKey,
				Model:    a.Model,
				Timeout:  timeout,
			}, env)
		}
	}
	return func() (adapter.Adapter, error) {
		return nil, fmt.Errorf("unknown adapter kind %q", a.Kind)
	}
}

func modelPath(dir, file string) string {
	file = strings.TrimSpace(file)
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
