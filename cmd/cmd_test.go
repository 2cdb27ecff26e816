package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krau/konabreed/adapter"
	"github.com/krau/konabreed/config"
	"github.com/krau/konabreed/registry"
)

func TestSpecsFollowConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.ModelDir = "weights"
	cfg.Adapters = append(cfg.Adapters, config.Adapter{Name: "off", Kind: config.KindCNN, Disabled: true})

	ortErr := errors.New("libonnxruntime.so: cannot open shared object file")
	got := specs(context.Background(), &cfg, adapter.Env{}, ortErr)
	require.Len(t, got, 3)
	assert.Equal(t, "HuggingFace_ResNet50", got[0].Name)
	assert.Equal(t, "MPO_MODELE_SCRATCH", got[1].Name)
	assert.Equal(t, "Azure_Custom_Vision", got[2].Name)

	for _, s := range got[:2] {
		_, err := s.Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ortErr)
	}
	_, err := got[2].Build()
	assert.Error(t, err)

	reg := registry.New(got, adapter.Env{})
	require.True(t, reg.LoadAll())
	assert.True(t, reg.Demo())
	assert.Len(t, reg.LoadErrors(), 3)
}

func TestSpecsBuildCloudAdapter(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Adapters = []config.Adapter{{
		Name:           "azure",
		Kind:           config.KindAzure,
		Endpoint:       "https://example.cognitiveservices.azure.com",
		ProjectID:      "p",
		Iteration:      "Iteration1",
		PredictionKey:  "k",
		TimeoutSeconds: 3,
	}}
	got := specs(context.Background(), &cfg, adapter.Env{}, nil)
	require.Len(t, got, 1)
	a, err := got[0].Build()
	require.NoError(t, err)
	assert.Equal(t, adapter.CategoryAzure, a.Category())
}

func TestModelPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("models", "a.onnx"), modelPath("models", "a.onnx"))
	assert.Equal(t, "/abs/a.onnx", modelPath("models", "/abs/a.onnx"))
	assert.Equal(t, "", modelPath("models", " "))
}

func writeFixtures(t *testing.T) (cfgPath, imgPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
libonnx = "/nonexistent/libonnxruntime.so"

[[adapters]]
name = "Azure_Custom_Vision"
kind = "azure"
`), 0o644))

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := range 10 {
		for x := range 20 {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: 100, B: uint8(y * 20), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	imgPath = filepath.Join(dir, "dog.jpg")
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0o644))
	return cfgPath, imgPath
}

func TestPredictCommandFallsBackToDemo(t *testing.T) {
	cfgPath, imgPath := writeFixtures(t)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"predict", "--config", cfgPath, "--compact", imgPath})
	require.NoError(t, root.Execute())

	var resp struct {
		Success    bool     `json:"success"`
		ModelsUsed []string `json:"models_used"`
		ImageInfo  struct {
			Format     string `json:"format"`
			Dimensions string `json:"dimensions"`
		} `json:"image_info"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, registry.DemoNames, resp.ModelsUsed)
	assert.Equal(t, "jpeg", resp.ImageInfo.Format)
	assert.Equal(t, "20x10", resp.ImageInfo.Dimensions)
}

func TestModelsCommand(t *testing.T) {
	cfgPath, _ := writeFixtures(t)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"models", "--config", cfgPath})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "model1")
	assert.Contains(t, out.String(), adapter.CategoryDemo)
	assert.Contains(t, out.String(), "Azure_Custom_Vision")
	assert.Contains(t, out.String(), "unavailable")
}

func TestPredictCommandRejectsBadImage(t *testing.T) {
	cfgPath, _ := writeFixtures(t)
	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"predict", "--config", cfgPath, bad})
	assert.Error(t, root.Execute())
}
