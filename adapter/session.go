package adapter

import (
	"context"
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// Input layouts.
const (
	LayoutNCHW = "nchw"
	LayoutNHWC = "nhwc"
)

// runner executes one forward pass on a flat input and returns the flat
// output of the first model output.
type runner interface {
	Run(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

type ortSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func (s *ortSession) destroy() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}

// sessionPool holds a fixed number of sessions, each bound to its own input
// and output tensors, so concurrent requests never share buffers.
type sessionPool struct {
	pool    chan *ortSession
	all     []*ortSession
	layout  string
	classes int
}

type modelInfo struct {
	inputName  string
	outputName string
	layout     string
	classes    int
}

func inspectModel(path, layout string) (modelInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return modelInfo{}, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return modelInfo{}, errors.New("model has no inputs or outputs")
	}
	info := modelInfo{
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		layout:     layout,
	}
	if in := inputs[0].Dimensions; info.layout == "" && len(in) == 4 {
		switch {
		case in[1] == 3:
			info.layout = LayoutNCHW
		case in[3] == 3:
			info.layout = LayoutNHWC
		}
	}
	if info.layout == "" {
		info.layout = LayoutNCHW
	}
	out := outputs[0].Dimensions
	if len(out) == 0 || out[len(out)-1] <= 0 {
		return modelInfo{}, fmt.Errorf("cannot infer class count from output shape %v", out)
	}
	info.classes = int(out[len(out)-1])
	return info, nil
}

func newSessionPool(path string, width, height int, layout string, sessions int) (*sessionPool, error) {
	info, err := inspectModel(path, layout)
	if err != nil {
		return nil, err
	}
	if sessions <= 0 {
		sessions = 1
	}

	inputShape := ort.NewShape(1, 3, int64(height), int64(width))
	if info.layout == LayoutNHWC {
		inputShape = ort.NewShape(1, int64(height), int64(width), 3)
	}

	p := &sessionPool{
		pool:    make(chan *ortSession, sessions),
		layout:  info.layout,
		classes: info.classes,
	}
	for range sessions {
		s, err := newORTSession(path, info, inputShape)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.all = append(p.all, s)
		p.pool <- s
	}
	return p, nil
}

func newORTSession(path string, info modelInfo, inputShape ort.Shape) (*ortSession, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	s := &ortSession{}
	s.input, err = ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	s.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(info.classes)))
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	s.session, err = ort.NewAdvancedSession(
		path,
		[]string{info.inputName},
		[]string{info.outputName},
		[]ort.Value{s.input},
		[]ort.Value{s.output},
		opts,
	)
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create ONNX Runtime session: %w", err)
	}
	return s, nil
}

func (p *sessionPool) Run(ctx context.Context, input []float32) ([]float32, error) {
	var s *ortSession
	select {
	case s = <-p.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { p.pool <- s }()

	dst := s.input.GetData()
	if len(dst) != len(input) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), len(dst))
	}
	copy(dst, input)
	if err := s.session.Run(); err != nil {
		return nil, err
	}
	out := make([]float32, len(s.output.GetData()))
	copy(out, s.output.GetData())
	return out, nil
}

func (p *sessionPool) Close() error {
	for _, s := range p.all {
		s.destroy()
	}
	p.all = nil
	return nil
}
