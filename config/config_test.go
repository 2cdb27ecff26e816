package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize())
	require.Len(t, cfg.Adapters, 3)
	assert.Equal(t, KindTransformer, cfg.Adapters[0].Kind)
	assert.Equal(t, KindCNN, cfg.Adapters[1].Kind)
	assert.Equal(t, KindAzure, cfg.Adapters[2].Kind)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("AZURE_CV_PREDICTION_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9090"
parallelism = 2

[[adapters]]
name = "cnn"
kind = "cnn"
model_file = "cnn.onnx"
input_width = 150
input_height = 150

[[adapters]]
name = "gemini"
kind = "gemini"
model = "gemini-2.5-flash"
timeout_seconds = 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2, cfg.Parallelism)
	require.Len(t, cfg.Adapters, 2)
	assert.Equal(t, 150, cfg.Adapters[0].InputWidth)
	assert.Equal(t, "from-env", cfg.Adapters[1].APIKey)
	assert.Equal(t, 5, cfg.Adapters[1].TimeoutSeconds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "UnknownKind", mutate: func(c *Config) { c.Adapters[0].Kind = "tensorflow" }},
		{name: "DuplicateName", mutate: func(c *Config) { c.Adapters[1].Name = c.Adapters[0].Name }},
		{name: "MissingName", mutate: func(c *Config) { c.Adapters[0].Name = " " }},
		{name: "NegativeParallelism", mutate: func(c *Config) { c.Parallelism = -1 }},
		{name: "ZeroFileSize", mutate: func(c *Config) { c.MaxFileSizeMB = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
