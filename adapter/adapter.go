// Package adapter wraps heterogeneous breed classifiers behind one interface.
//
// Every adapter turns its native output (a probability vector, logits, or a
// remotely ranked tag list) into a breeds.Result of at most breeds.TopK
// entries. Failures never leave an adapter: Predict logs them and returns an
// empty result so one broken model cannot abort a request.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
	"github.com/krau/konabreed/metrics"
)

// Human readable categories reported by /models and in responses.
const (
	CategoryTransformer = "Pretrained Model (HuggingFace)"
	CategoryCNN         = "From-Scratch Model (CNN)"
	CategoryAzure       = "Cloud Model (Azure Custom Vision)"
	CategoryGemini      = "Cloud Model (Gemini)"
	CategoryDemo        = "Demo Model"
)

// ErrEmptyResponse is returned internally when a remote classifier answers
// without any usable prediction.
var ErrEmptyResponse = errors.New("empty response")

// Adapter is implemented by every classifier. Implementations are immutable
// after construction and safe for concurrent use.
type Adapter interface {
	Name() string
	Category() string
	// InputSize is the resolution of the tensor handed to Predict.
	InputSize() imageproc.Size
	// Classes is the model's own vocabulary, nil for remotely ranked models.
	Classes() []string
	// Synthetic reports adapters that produce placeholder answers.
	Synthetic() bool
	// Predict classifies one image. in is already resized to InputSize and
	// raw is the original upload. It returns an empty result on failure.
	Predict(ctx context.Context, in *imageproc.Tensor, raw []byte) breeds.Result
}

// Env carries the ambient dependencies shared by all adapters.
type Env struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

type base struct {
	name     string
	category string
	size     imageproc.Size
	log      *slog.Logger
	metrics  *metrics.Recorder
}

func newBase(name, category, fallbackCategory string, size imageproc.Size, env Env) base {
	if category == "" {
		category = fallbackCategory
	}
	if !size.Valid() {
		size = imageproc.Default
	}
	return base{
		name:     name,
		category: category,
		size:     size,
		log:      env.logger().With(slog.String("adapter", name)),
		metrics:  env.Metrics,
	}
}

func (b *base) Name() string              { return b.name }
func (b *base) Category() string          { return b.category }
func (b *base) InputSize() imageproc.Size { return b.size }

// guard runs fn and converts errors, timeouts and panics into an empty
// result. Successful results are normalised with breeds.Rank, so callers
// only ever see finite, unique, descending confidences in [0,1].
func (b *base) guard(ctx context.Context, fn func(context.Context) (breeds.Result, error)) (res breeds.Result) {
	start := time.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		if p := recover(); p != nil {
			b.log.Error("Prediction panicked", slog.String("panic", fmt.Sprint(p)))
			res, outcome = nil, metrics.OutcomeFailed
		}
		b.metrics.ObservePrediction(b.name, outcome, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		outcome = metrics.OutcomeTimeout
		b.log.Warn("Prediction skipped", slog.String("error", err.Error()))
		return nil
	}

	var err error
	res, err = fn(ctx)
	if err != nil {
		outcome = metrics.OutcomeFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			outcome = metrics.OutcomeTimeout
		}
		b.log.Error("Prediction failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil
	}
	if len(res) == 0 {
		outcome = metrics.OutcomeEmpty
		return nil
	}
	clean := breeds.Rank(res)
	if len(clean) == 0 {
		outcome = metrics.OutcomeFailed
		b.log.Error("Prediction has no usable scores", slog.Int("dropped", len(res)))
		return nil
	}
	return clean
}
