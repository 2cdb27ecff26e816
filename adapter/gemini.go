package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
)

const defaultGeminiModel = "gemini-2.5-flash"

const geminiInstruction = `You are a dog breed classifier. Look at the photo and name the three most likely dog breeds.
Return STRICT JSON only, no prose:
{"predictions":[{"breed": string, "confidence": number between 0 and 1}]}
Order predictions from most to least likely. If no dog is visible return {"predictions":[]}.`

type GeminiOptions struct {
	Name     string
	Category string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// generator sends one image with the instruction and returns the raw text
// answer.
type generator interface {
	generate(ctx context.Context, mime string, image []byte) (string, error)
	Close() error
}

// Gemini asks a Gemini multimodal model for a ranked breed list.
type Gemini struct {
	base
	gen  generator
	wait time.Duration
}

var _ Adapter = (*Gemini)(nil)

func NewGemini(ctx context.Context, opts GeminiOptions, env Env) (*Gemini, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%s: GEMINI_API_KEY is empty", opts.Name)
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Name, err)
	}
	return newGemini(opts, &genaiGenerator{client: cl, model: model}, env), nil
}

func newGemini(opts GeminiOptions, gen generator, env Env) *Gemini {
	wait := opts.Timeout
	if wait <= 0 {
		wait = defaultCloudTimeout
	}
	return &Gemini{
		base: newBase(opts.Name, opts.Category, CategoryGemini, imageproc.Default, env),
		gen:  gen,
		wait: wait,
	}
}

func (g *Gemini) Classes() []string { return nil }
func (g *Gemini) Synthetic() bool   { return false }

func (g *Gemini) Predict(ctx context.Context, _ *imageproc.Tensor, raw []byte) breeds.Result {
	return g.guard(ctx, func(ctx context.Context) (breeds.Result, error) {
		if len(raw) == 0 {
			return nil, errors.New("no image bytes")
		}
		ctx, cancel := context.WithTimeout(ctx, g.wait)
		defer cancel()
		txt, err := g.gen.generate(ctx, http.DetectContentType(raw), raw)
		if err != nil {
			return nil, err
		}
		return parseGeminiRanking(txt)
	})
}

func (g *Gemini) Close() error { return g.gen.Close() }

func parseGeminiRanking(txt string) (breeds.Result, error) {
	txt = stripCodeFences(txt)
	if txt == "" {
		return nil, ErrEmptyResponse
	}
	var out struct {
		Predictions []breeds.Prediction `json:"predictions"`
	}
	if err := json.Unmarshal([]byte(txt), &out); err != nil {
		return nil, fmt.Errorf("gemini: bad JSON: %w", err)
	}
	for i := range out.Predictions {
		out.Predictions[i].Breed = strings.TrimSpace(out.Predictions[i].Breed)
		out.Predictions[i].Confidence = min(max(out.Predictions[i].Confidence, 0), 1)
	}
	res := breeds.Rank(out.Predictions)
	if len(res) == 0 {
		return nil, ErrEmptyResponse
	}
	return res, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, mime string, image []byte) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if m == nil {
		return "", errors.New("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiInstruction)},
	}
	resp, err := m.GenerateContent(ctx,
		genai.Text("Classify the dog in this photo."),
		&genai.Blob{MIMEType: mime, Data: image},
	)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

func (g *genaiGenerator) Close() error { return g.client.Close() }

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
