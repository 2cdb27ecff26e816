// Package registry owns the set of loaded adapters for the process lifetime.
package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/krau/konabreed/adapter"
	"github.com/krau/konabreed/imageproc"
)

// ErrNoAdapters means no configured adapter could be loaded.
var ErrNoAdapters = errors.New("no adapters loaded")

// DemoNames are the adapters created when no real model could be loaded.
var DemoNames = []string{"model1", "model2", "model3"}

// Spec describes one adapter to attempt at startup.
type Spec struct {
	Name  string
	Build func() (adapter.Adapter, error)
}

// LoadError records why an adapter is absent from the registry.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load adapter %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Info describes a loaded adapter for clients.
type Info struct {
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	InputSize imageproc.Size `json:"input_size"`
	Classes   int            `json:"classes"`
	Synthetic bool           `json:"synthetic"`
}

// Registry holds the adapters in priority order. It is filled once by
// LoadAll and read-only afterwards, so it is safe for concurrent readers.
type Registry struct {
	specs    []Spec
	env      adapter.Env
	log      *slog.Logger
	names    []string
	adapters map[string]adapter.Adapter
	errs     []*LoadError
	demo     bool
}

func New(specs []Spec, env adapter.Env) *Registry {
	log := env.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		specs:    specs,
		env:      env,
		log:      log.With(slog.String("component", "registry")),
		adapters: make(map[string]adapter.Adapter),
	}
}

// LoadAll builds every spec in order. A failing spec is logged and left
// out. When nothing loads the registry switches to demo adapters. It
// reports whether at least one adapter, real or demo, is available.
func (r *Registry) LoadAll() bool {
	for _, s := range r.specs {
		a, err := build(s)
		if err != nil {
			le := &LoadError{Name: s.Name, Err: err}
			r.errs = append(r.errs, le)
			r.log.Warn("Adapter unavailable", slog.String("adapter", s.Name), slog.String("error", err.Error()))
			continue
		}
		if err := r.add(a); err != nil {
			r.errs = append(r.errs, &LoadError{Name: s.Name, Err: err})
			r.log.Warn("Adapter rejected", slog.String("adapter", s.Name), slog.String("error", err.Error()))
			closeAdapter(a)
			continue
		}
		r.log.Info("Adapter loaded", slog.String("adapter", a.Name()), slog.String("category", a.Category()))
	}
	r.log.Info("Loaded real adapters", slog.Int("loaded", len(r.names)), slog.Int("configured", len(r.specs)))

	if len(r.names) == 0 {
		r.log.Warn("Falling back to demo adapters", slog.String("error", ErrNoAdapters.Error()))
		r.demo = true
		for _, name := range DemoNames {
			_ = r.add(adapter.NewDemo(name, r.env))
		}
	}
	return len(r.names) > 0
}

func build(s Spec) (a adapter.Adapter, err error) {
	defer func() {
		if p := recover(); p != nil {
			a, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	if s.Build == nil {
		return nil, errors.New("no constructor")
	}
	a, err = s.Build()
	if err == nil && a == nil {
		err = errors.New("constructor returned no adapter")
	}
	return a, err
}

func (r *Registry) add(a adapter.Adapter) error {
	if _, dup := r.adapters[a.Name()]; dup {
		return fmt.Errorf("duplicate adapter name %q", a.Name())
	}
	r.adapters[a.Name()] = a
	r.names = append(r.names, a.Name())
	return nil
}

func (r *Registry) Get(name string) (adapter.Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names lists adapters in load order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Demo reports whether the registry is serving synthetic adapters only.
func (r *Registry) Demo() bool { return r.demo }

func (r *Registry) LoadErrors() []*LoadError { return r.errs }

func (r *Registry) Describe() []Info {
	out := make([]Info, 0, len(r.names))
	for _, n := range r.names {
		a := r.adapters[n]
		out = append(out, Info{
			Name:      n,
			Category:  a.Category(),
			InputSize: a.InputSize(),
			Classes:   len(a.Classes()),
			Synthetic: a.Synthetic(),
		})
	}
	return out
}

// Close releases adapters holding native or network resources.
func (r *Registry) Close() error {
	var errs []error
	for _, n := range r.names {
		if err := closeAdapter(r.adapters[n]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n, err))
		}
	}
	return errors.Join(errs...)
}

func closeAdapter(a adapter.Adapter) error {
	if c, ok := a.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
