package service

import (
	"bytes"
	"encoding/json"

	"github.com/krau/konabreed/breeds"
)

// PreprocessError fails a whole request: the upload could not be decoded, so
// no adapter was run.
type PreprocessError struct {
	Err error
}

func (e *PreprocessError) Error() string {
	return "failed to preprocess image: " + e.Err.Error()
}

func (e *PreprocessError) Unwrap() error { return e.Err }

type ImageInfo struct {
	// Size is [width, height] of the upload after orientation.
	Size       [2]int `json:"size"`
	Format     string `json:"format"`
	Dimensions string `json:"dimensions"`
}

type Score struct {
	Breed      string  `json:"breed"`
	Confidence float64 `json:"confidence"`
	Percentage float64 `json:"percentage"`
}

func scores(r breeds.Result) []Score {
	out := make([]Score, len(r))
	for i, p := range r {
		out[i] = Score{Breed: p.Breed, Confidence: p.Confidence, Percentage: p.Percentage()}
	}
	return out
}

// NamedResult is one adapter's non-empty answer.
type NamedResult struct {
	Name   string
	Result breeds.Result
}

// EnsembleEntry is one merged breed. Confidence is the mean over the
// adapters that ranked the breed and ModelCount is how many did.
type EnsembleEntry struct {
	Breed      string  `json:"breed"`
	Confidence float64 `json:"confidence"`
	Percentage float64 `json:"percentage"`
	ModelCount int     `json:"model_count"`
}

// ModelPredictions encodes as a JSON object whose keys keep registry order.
type ModelPredictions []NamedResult

func (m ModelPredictions) MarshalJSON() ([]byte, error) {
	return orderedObject(len(m), func(i int) (string, any) {
		return m[i].Name, scores(m[i].Result)
	})
}

// Get returns the result of the named adapter.
func (m ModelPredictions) Get(name string) (breeds.Result, bool) {
	for _, r := range m {
		if r.Name == name {
			return r.Result, true
		}
	}
	return nil, false
}

type ModelType struct {
	Name     string
	Category string
}

// ModelTypes encodes as a JSON object of adapter name to category, in
// registry order.
type ModelTypes []ModelType

func (m ModelTypes) MarshalJSON() ([]byte, error) {
	return orderedObject(len(m), func(i int) (string, any) {
		return m[i].Name, m[i].Category
	})
}

func orderedObject(n int, entry func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, v := entry(i)
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Response struct {
	Success           bool             `json:"success"`
	ImageInfo         ImageInfo        `json:"image_info"`
	ModelPredictions  ModelPredictions `json:"model_predictions"`
	AggregatedResults []EnsembleEntry  `json:"aggregated_results"`
	ModelsUsed        []string         `json:"models_used"`
	ModelTypes        ModelTypes       `json:"model_types"`
}
