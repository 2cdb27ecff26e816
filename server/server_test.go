package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krau/konabreed/adapter"
	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/config"
	"github.com/krau/konabreed/metrics"
	"github.com/krau/konabreed/registry"
	"github.com/krau/konabreed/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	rec := metrics.New()
	env := adapter.Env{Metrics: rec}
	reg := registry.New(nil, env)
	require.True(t, reg.LoadAll())
	p := service.New(reg, service.Options{Metrics: rec})
	return New(p, reg, &cfg, rec, nil)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for y := range 24 {
		for x := range 32 {
			img.Set(x, y, color.NRGBA{R: uint8(8 * x), G: uint8(10 * y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPredict(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	w := serve(s, upload(t, "dog.png", "image/png", pngBytes(t)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success   bool `json:"success"`
		ImageInfo struct {
			Size       []int  `json:"size"`
			Format     string `json:"format"`
			Dimensions string `json:"dimensions"`
		} `json:"image_info"`
		ModelPredictions  map[string][]map[string]any `json:"model_predictions"`
		AggregatedResults []struct {
			Breed      string  `json:"breed"`
			Confidence float64 `json:"confidence"`
			Percentage float64 `json:"percentage"`
			ModelCount int     `json:"model_count"`
		} `json:"aggregated_results"`
		ModelsUsed []string          `json:"models_used"`
		ModelTypes map[string]string `json:"model_types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, []int{32, 24}, resp.ImageInfo.Size)
	assert.Equal(t, "png", resp.ImageInfo.Format)
	assert.Equal(t, "32x24", resp.ImageInfo.Dimensions)
	assert.Equal(t, registry.DemoNames, resp.ModelsUsed)
	assert.Len(t, resp.ModelPredictions, 3)
	for _, preds := range resp.ModelPredictions {
		assert.Len(t, preds, breeds.TopK)
	}
	assert.NotEmpty(t, resp.AggregatedResults)
	assert.LessOrEqual(t, len(resp.AggregatedResults), breeds.TopK)
	for _, e := range resp.AggregatedResults {
		assert.GreaterOrEqual(t, e.ModelCount, 1)
		assert.Equal(t, breeds.Percent(e.Confidence), e.Percentage)
	}
	assert.Equal(t, adapter.CategoryDemo, resp.ModelTypes["model1"])

	again := serve(s, upload(t, "dog.png", "image/png", pngBytes(t)))
	assert.JSONEq(t, w.Body.String(), again.Body.String())
}

func TestPredictRejects(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(c *config.Config) { c.MaxFileSizeMB = 1 })
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{
			name: "NoFile",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/predict", nil)
			},
		},
		{
			name: "NotAnImageType",
			req: func(t *testing.T) *http.Request {
				return upload(t, "notes.png", "text/plain", pngBytes(t))
			},
		},
		{
			name: "ExtensionNotAllowed",
			req: func(t *testing.T) *http.Request {
				return upload(t, "dog.bmp", "image/bmp", pngBytes(t))
			},
		},
		{
			name: "TooLarge",
			req: func(t *testing.T) *http.Request {
				return upload(t, "dog.png", "image/png", make([]byte, 1<<20+1))
			},
		},
		{
			name: "Undecodable",
			req: func(t *testing.T) *http.Request {
				return upload(t, "dog.jpg", "image/jpeg", []byte("definitely not a jpeg"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := serve(s, tt.req(t))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPredictWithoutExtension(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	w := serve(s, upload(t, "blob", "image/png", pngBytes(t)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInfoRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"Dog Breed Classifier API","version":"1.0.0"}`, w.Body.String())

	w = serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"model_status":"demo"`)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/models", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var models struct {
		Loaded    []string        `json:"loaded_models"`
		Total     int             `json:"total_models"`
		Breeds    int             `json:"supported_breeds"`
		ImageSize int             `json:"image_size"`
		MaxMB     int64           `json:"max_file_size_mb"`
		Models    []registry.Info `json:"models"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &models))
	assert.Equal(t, registry.DemoNames, models.Loaded)
	assert.Equal(t, 3, models.Total)
	assert.Equal(t, len(breeds.Canonical), models.Breeds)
	assert.Equal(t, 224, models.ImageSize)
	assert.Equal(t, int64(10), models.MaxMB)
	require.Len(t, models.Models, 3)
	assert.True(t, models.Models[0].Synthetic)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/breeds", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Breeds []string `json:"breeds"`
		Count  int      `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, breeds.Canonical, list.Breeds)
	assert.Equal(t, len(breeds.Canonical), list.Count)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	serve(s, upload(t, "dog.png", "image/png", pngBytes(t)))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `konabreed_aggregate_requests_total{outcome="ok"} 1`)
	assert.Contains(t, w.Body.String(), `konabreed_adapter_predictions_total{adapter="model1",outcome="ok"} 1`)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		origins     []string
		method      string
		origin      string
		wantStatus  int
		wantHeaders map[string]string
	}{
		{
			name:        "AllowedOrigin",
			origins:     []string{"http://localhost:3000"},
			method:      http.MethodGet,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": "http://localhost:3000", "Access-Control-Allow-Credentials": "true"},
		},
		{
			name:        "AllowAll",
			origins:     []string{"*"},
			method:      http.MethodGet,
			origin:      "http://example.com",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": "http://example.com"},
		},
		{
			name:        "DisallowedOrigin",
			origins:     []string{"http://localhost:3000"},
			method:      http.MethodGet,
			origin:      "http://evil.example",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:       "Preflight",
			origins:    []string{"http://localhost:3000"},
			method:     http.MethodOptions,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusNoContent,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "http://localhost:3000",
				"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
				"Access-Control-Allow-Headers": "*",
			},
		},
		{
			name:        "PreflightFromUnknownOrigin",
			origins:     []string{"http://localhost:3000"},
			method:      http.MethodOptions,
			origin:      "http://evil.example",
			wantStatus:  http.StatusNotFound,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:        "Disabled",
			origins:     []string{},
			method:      http.MethodGet,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, func(c *config.Config) { c.CORSOrigins = tt.origins })
			req := httptest.NewRequest(tt.method, "/api/v1/health", nil)
			req.Header.Set("Origin", tt.origin)
			w := serve(s, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			for k, v := range tt.wantHeaders {
				assert.Equal(t, v, w.Header().Get(k), k)
			}
		})
	}
}
