package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
)

const defaultCloudTimeout = 15 * time.Second

type AzureOptions struct {
	Name          string
	Category      string
	Endpoint      string
	ProjectID     string
	Iteration     string
	PredictionKey string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Azure classifies the original upload with an Azure Custom Vision
// published iteration.
type Azure struct {
	base
	url   string
	key   string
	httpc *http.Client
	wait  time.Duration
}

var _ Adapter = (*Azure)(nil)

type azureResponse struct {
	ID          string `json:"id"`
	Iteration   string `json:"iteration"`
	Predictions []struct {
		Probability float64 `json:"probability"`
		TagID       string  `json:"tagId"`
		TagName     string  `json:"tagName"`
	} `json:"predictions"`
}

func NewAzure(opts AzureOptions, env Env) (*Azure, error) {
	var missing []string
	if opts.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if opts.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if opts.Iteration == "" {
		missing = append(missing, "iteration")
	}
	if opts.PredictionKey == "" {
		missing = append(missing, "prediction_key")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: missing %s", opts.Name, strings.Join(missing, ", "))
	}
	if _, err := url.ParseRequestURI(opts.Endpoint); err != nil {
		return nil, fmt.Errorf("%s: bad endpoint: %w", opts.Name, err)
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	wait := opts.Timeout
	if wait <= 0 {
		wait = defaultCloudTimeout
	}
	return &Azure{
		base: newBase(opts.Name, opts.Category, CategoryAzure, imageproc.Default, env),
		url: fmt.Sprintf("%s/customvision/v3.0/Prediction/%s/classify/iterations/%s/image",
			strings.TrimRight(opts.Endpoint, "/"),
			url.PathEscape(opts.ProjectID),
			url.PathEscape(opts.Iteration)),
		key:   opts.PredictionKey,
		httpc: httpc,
		wait:  wait,
	}, nil
}

func (a *Azure) Classes() []string { return nil }
func (a *Azure) Synthetic() bool   { return false }

func (a *Azure) Predict(ctx context.Context, _ *imageproc.Tensor, raw []byte) breeds.Result {
	return a.guard(ctx, func(ctx context.Context) (breeds.Result, error) {
		ctx, cancel := context.WithTimeout(ctx, a.wait)
		defer cancel()
		return a.classify(ctx, raw)
	})
}

func (a *Azure) classify(ctx context.Context, raw []byte) (breeds.Result, error) {
	if len(raw) == 0 {
		return nil, errors.New("no image bytes")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Prediction-Key", a.key)

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("custom vision %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out azureResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("bad custom vision response: %w", err)
	}
	preds := make([]breeds.Prediction, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		preds = append(preds, breeds.Prediction{Breed: p.TagName, Confidence: p.Probability})
	}
	res := breeds.Rank(preds)
	if len(res) == 0 {
		return nil, ErrEmptyResponse
	}
	return res, nil
}
