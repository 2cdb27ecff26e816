package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
)

// Output modes of a local model.
const (
	OutputLogits        = "logits"
	OutputSigmoid       = "sigmoid"
	OutputProbabilities = "probabilities"
)

type ONNXOptions struct {
	Name     string
	Category string
	// Pretrained selects the transformer defaults: HuggingFace category and
	// Stanford Dogs labels when no label file is given.
	Pretrained bool
	ModelPath  string
	LabelsPath string
	Size       imageproc.Size
	// Layout forces nchw or nhwc; empty detects it from the model.
	Layout   string
	Output   string
	Mean     []float32
	Std      []float32
	Sessions int
}

// ONNX runs a local classifier exported to ONNX, either a pretrained
// transformer or a from-scratch CNN.
type ONNX struct {
	base
	classes []string
	layout  string
	output  string
	mean    []float32
	std     []float32
	runner  runner
}

var _ Adapter = (*ONNX)(nil)

// NewONNX loads the model and its vocabulary. The ONNX Runtime environment
// must already be initialized.
func NewONNX(opts ONNXOptions, env Env) (*ONNX, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	pool, err := newSessionPool(opts.ModelPath, opts.Size.Width, opts.Size.Height, strings.ToLower(opts.Layout), opts.Sessions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Name, err)
	}
	classes, err := resolveClasses(opts, pool.classes)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", opts.Name, err)
	}
	opts.Layout = pool.layout
	a := newONNX(opts, classes, pool, env)
	a.log.Info("Loaded ONNX model",
		slog.String("path", opts.ModelPath),
		slog.String("size", opts.Size.String()),
		slog.String("layout", a.layout),
		slog.Int("classes", len(classes)))
	return a, nil
}

func newONNX(opts ONNXOptions, classes []string, r runner, env Env) *ONNX {
	fallback := CategoryCNN
	if opts.Pretrained {
		fallback = CategoryTransformer
	}
	output := strings.ToLower(opts.Output)
	if output == "" {
		output = OutputProbabilities
	}
	layout := strings.ToLower(opts.Layout)
	if layout == "" {
		layout = LayoutNCHW
	}
	return &ONNX{
		base:    newBase(opts.Name, opts.Category, fallback, opts.Size, env),
		classes: classes,
		layout:  layout,
		output:  output,
		mean:    opts.Mean,
		std:     opts.Std,
		runner:  r,
	}
}

func (o ONNXOptions) validate() error {
	if o.Name == "" {
		return fmt.Errorf("adapter name is required")
	}
	if o.ModelPath == "" {
		return fmt.Errorf("%s: model path is required", o.Name)
	}
	if !o.Size.Valid() {
		return fmt.Errorf("%s: invalid input size %s", o.Name, o.Size)
	}
	switch strings.ToLower(o.Output) {
	case "", OutputLogits, OutputSigmoid, OutputProbabilities:
	default:
		return fmt.Errorf("%s: unknown output mode %q", o.Name, o.Output)
	}
	switch strings.ToLower(o.Layout) {
	case "", LayoutNCHW, LayoutNHWC:
	default:
		return fmt.Errorf("%s: unknown layout %q", o.Name, o.Layout)
	}
	if (len(o.Mean) != 0 || len(o.Std) != 0) && (len(o.Mean) != 3 || len(o.Std) != 3) {
		return fmt.Errorf("%s: mean and std need three values each", o.Name)
	}
	for _, s := range o.Std {
		if s == 0 {
			return fmt.Errorf("%s: std must not contain zero", o.Name)
		}
	}
	return nil
}

// resolveClasses picks the vocabulary: the label file when configured, the
// Stanford Dogs list for a pretrained 120-class model, otherwise the
// canonical breed list. Indices past the vocabulary get placeholder names at
// prediction time.
func resolveClasses(opts ONNXOptions, n int) ([]string, error) {
	if opts.LabelsPath != "" {
		labels, err := breeds.ReadLabels(opts.LabelsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read labels: %w", err)
		}
		return labels, nil
	}
	if opts.Pretrained && n == len(breeds.StanfordDogs) {
		return breeds.StanfordDogs, nil
	}
	return breeds.Canonical, nil
}

func (a *ONNX) Classes() []string { return a.classes }
func (a *ONNX) Synthetic() bool   { return false }

func (a *ONNX) Predict(ctx context.Context, in *imageproc.Tensor, _ []byte) breeds.Result {
	return a.guard(ctx, func(ctx context.Context) (breeds.Result, error) {
		if in == nil {
			return nil, fmt.Errorf("no input tensor")
		}
		if in.Size() != a.size {
			return nil, fmt.Errorf("input is %s, model wants %s", in.Size(), a.size)
		}
		scores, err := a.runner.Run(ctx, a.prepare(in))
		if err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
		res := breeds.FromScores(a.postprocess(scores), a.classes)
		if res.Empty() {
			return nil, errors.New("model produced no finite scores")
		}
		return res, nil
	})
}

// prepare applies the per-channel normalisation and lays out the data the
// way the model expects.
func (a *ONNX) prepare(in *imageproc.Tensor) []float32 {
	t := in
	if len(a.mean) == 3 {
		norm := make([]float32, len(in.Data))
		for i, v := range in.Data {
			c := i % 3
			norm[i] = (v - a.mean[c]) / a.std[c]
		}
		t = &imageproc.Tensor{Data: norm, Shape: in.Shape}
	}
	// the runner copies the input, so the shared tensor is never written
	if a.layout == LayoutNHWC {
		return t.Data
	}
	return t.Planar()
}

func (a *ONNX) postprocess(scores []float32) []float32 {
	switch a.output {
	case OutputLogits:
		return breeds.Softmax(scores)
	case OutputSigmoid:
		out := make([]float32, len(scores))
		for i, v := range scores {
			out[i] = breeds.Sigmoid(v)
		}
		return out
	default:
		return scores
	}
}

func (a *ONNX) Close() error {
	if a.runner == nil {
		return nil
	}
	return a.runner.Close()
}
