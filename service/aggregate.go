// Package service merges the answers of every loaded adapter into one
// ensemble ranking.
package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/krau/konabreed/adapter"
	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
	"github.com/krau/konabreed/metrics"
)

// Source is the read side of the adapter registry.
type Source interface {
	Names() []string
	Get(name string) (adapter.Adapter, bool)
}

type Options struct {
	// Parallelism caps concurrent adapter calls per request; 0 means no cap.
	Parallelism int
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// Predictor runs one image through all adapters. It holds no per-request
// state and is safe for concurrent use.
type Predictor struct {
	src         Source
	parallelism int
	log         *slog.Logger
	metrics     *metrics.Recorder
}

func New(src Source, opts Options) *Predictor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Predictor{
		src:         src,
		parallelism: opts.Parallelism,
		log:         log.With(slog.String("component", "aggregator")),
		metrics:     opts.Metrics,
	}
}

// Aggregate decodes raw once, runs every adapter on a tensor of its own
// input size and merges the non-empty answers. Only an undecodable image is
// an error; failing adapters are simply left out of the response.
func (p *Predictor) Aggregate(ctx context.Context, raw []byte) (*Response, error) {
	start := time.Now()
	img, err := imageproc.Decode(raw)
	if err != nil {
		p.metrics.ObserveRequest("invalid_image")
		return nil, &PreprocessError{Err: err}
	}

	adapters := p.adapters()
	inputs := p.tensors(img, adapters)

	results := make([]breeds.Result, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	if p.parallelism > 0 {
		g.SetLimit(p.parallelism)
	}
	for i, a := range adapters {
		in, ok := inputs[a.InputSize()]
		if !ok {
			continue
		}
		g.Go(func() error {
			results[i] = a.Predict(gctx, in, raw)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{
		Success: true,
		ImageInfo: ImageInfo{
			Size:       [2]int{img.Size().Width, img.Size().Height},
			Format:     img.Format,
			Dimensions: img.Size().String(),
		},
		ModelPredictions: ModelPredictions{},
		ModelsUsed:       []string{},
		ModelTypes:       make(ModelTypes, 0, len(adapters)),
	}
	for i, a := range adapters {
		resp.ModelTypes = append(resp.ModelTypes, ModelType{Name: a.Name(), Category: a.Category()})
		res := breeds.Rank(results[i])
		if res.Empty() {
			continue
		}
		resp.ModelPredictions = append(resp.ModelPredictions, NamedResult{Name: a.Name(), Result: res})
		resp.ModelsUsed = append(resp.ModelsUsed, a.Name())
	}
	resp.AggregatedResults = Merge(resp.ModelPredictions)

	outcome := "ok"
	if len(resp.AggregatedResults) == 0 {
		outcome = "empty"
	}
	p.metrics.ObserveRequest(outcome)
	p.log.Info("Aggregated prediction",
		slog.Int("adapters", len(adapters)),
		slog.Int("answered", len(resp.ModelsUsed)),
		slog.Duration("elapsed", time.Since(start)))
	return resp, nil
}

func (p *Predictor) adapters() []adapter.Adapter {
	names := p.src.Names()
	out := make([]adapter.Adapter, 0, len(names))
	for _, n := range names {
		if a, ok := p.src.Get(n); ok {
			out = append(out, a)
		}
	}
	return out
}

// tensors builds one input per distinct size. A size that cannot be
// produced is logged and its adapters are skipped.
func (p *Predictor) tensors(img *imageproc.Image, adapters []adapter.Adapter) map[imageproc.Size]*imageproc.Tensor {
	out := make(map[imageproc.Size]*imageproc.Tensor)
	failed := make(map[imageproc.Size]bool)
	for _, a := range adapters {
		size := a.InputSize()
		if _, ok := out[size]; ok || failed[size] {
			continue
		}
		t, err := imageproc.Tensorize(img, size)
		if err != nil {
			failed[size] = true
			p.log.Warn("Skipping input size",
				slog.String("size", size.String()),
				slog.String("error", err.Error()))
			continue
		}
		out[size] = t
	}
	return out
}

// Merge groups predictions by exact breed name, averages their confidence
// over the adapters that ranked them and keeps the best breeds.TopK. Each
// adapter counts once per breed with its best score. Ties on the mean go to
// the breed more adapters agree on, then by name.
func Merge(results []NamedResult) []EnsembleEntry {
	type acc struct {
		sum   float64
		count int
	}
	var order []string
	groups := make(map[string]*acc)
	for _, r := range results {
		best := make(map[string]float64, len(r.Result))
		var seen []string
		for _, pred := range r.Result {
			c, ok := best[pred.Breed]
			if !ok {
				seen = append(seen, pred.Breed)
			}
			if !ok || pred.Confidence > c {
				best[pred.Breed] = pred.Confidence
			}
		}
		for _, b := range seen {
			g, ok := groups[b]
			if !ok {
				g = &acc{}
				groups[b] = g
				order = append(order, b)
			}
			g.sum += best[b]
			g.count++
		}
	}

	out := make([]EnsembleEntry, 0, len(order))
	for _, b := range order {
		g := groups[b]
		mean := g.sum / float64(g.count)
		out = append(out, EnsembleEntry{
			Breed:      b,
			Confidence: mean,
			Percentage: breeds.Percent(mean),
			ModelCount: g.count,
		})
	}
	slices.SortFunc(out, func(a, b EnsembleEntry) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		if c := cmp.Compare(b.ModelCount, a.ModelCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Breed, b.Breed)
	})
	if len(out) > breeds.TopK {
		out = out[:breeds.TopK]
	}
	return out
}
