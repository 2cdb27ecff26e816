package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Adapter kinds.
const (
	KindTransformer = "transformer"
	KindCNN         = "cnn"
	KindAzure       = "azure"
	KindGemini      = "gemini"
)

type Config struct {
	Host              string   `toml:"host"`
	Port              string   `toml:"port"`
	Libonnx           string   `toml:"libonnx"`
	ModelDir          string   `toml:"model_dir"`
	MaxFileSizeMB     int64    `toml:"max_file_size_mb"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	CORSOrigins       []string `toml:"cors_origins"`
	// Parallelism caps concurrent adapter calls per request; 0 means no cap.
	Parallelism int `toml:"parallelism"`

	Adapters []Adapter `toml:"adapters"`
}

// Adapter describes one classifier to load at startup. Entries are tried in
// order.
type Adapter struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Category string `toml:"category"`
	Disabled bool   `toml:"disabled"`

	// ONNX models
	ModelFile   string    `toml:"model_file"`
	LabelsFile  string    `toml:"labels_file"`
	InputWidth  int       `toml:"input_width"`
	InputHeight int       `toml:"input_height"`
	Layout      string    `toml:"layout"`
	Output      string    `toml:"output"`
	Mean        []float32 `toml:"mean"`
	Std         []float32 `toml:"std"`
	Sessions    int       `toml:"sessions"`

	// cloud models
	Endpoint       string `toml:"endpoint"`
	ProjectID      string `toml:"project_id"`
	Iteration      string `toml:"iteration"`
	PredictionKey  string `toml:"prediction_key"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              "8000",
		ModelDir:          "models",
		MaxFileSizeMB:     10,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "webp", "avif", "gif"},
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:3001",
		},
		Adapters: []Adapter{
			{
				Name:        "HuggingFace_ResNet50",
				Kind:        KindTransformer,
				ModelFile:   "stanford_dogs_resnet50.onnx",
				InputWidth:  224,
				InputHeight: 224,
				Output:      "logits",
				Mean:        []float32{0.485, 0.456, 0.406},
				Std:         []float32{0.229, 0.224, 0.225},
			},
			{
				Name:        "MPO_MODELE_SCRATCH",
				Kind:        KindCNN,
				ModelFile:   "mpo_scratch.onnx",
				LabelsFile:  "class_mapping.csv",
				InputWidth:  150,
				InputHeight: 150,
				Layout:      "nhwc",
				Output:      "probabilities",
			},
			{
				Name:           "Azure_Custom_Vision",
				Kind:           KindAzure,
				Iteration:      "Iteration1",
				TimeoutSeconds: 15,
			},
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Cloud credentials may also come from AZURE_CV_PREDICTION_KEY and
// GEMINI_API_KEY.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		// lists in the file replace the defaults instead of extending them
		def := cfg
		cfg.Adapters, cfg.AllowedExtensions, cfg.CORSOrigins = nil, nil, nil
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if cfg.Adapters == nil {
			cfg.Adapters = def.Adapters
		}
		if cfg.AllowedExtensions == nil {
			cfg.AllowedExtensions = def.AllowedExtensions
		}
		if cfg.CORSOrigins == nil {
			cfg.CORSOrigins = def.CORSOrigins
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	azureKey := os.Getenv("AZURE_CV_PREDICTION_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	for i := range c.Adapters {
		a := &c.Adapters[i]
		switch a.Kind {
		case KindAzure:
			if a.PredictionKey == "" {
				a.PredictionKey = azureKey
			}
		case KindGemini:
			if a.APIKey == "" {
				a.APIKey = geminiKey
			}
		}
	}
}

func (c *Config) Validate() error {
	if c.MaxFileSizeMB <= 0 {
		return errors.New("max_file_size_mb must be positive")
	}
	if c.Parallelism < 0 {
		return errors.New("parallelism must not be negative")
	}
	seen := make(map[string]struct{}, len(c.Adapters))
	for i, a := range c.Adapters {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("adapters[%d]: name is required", i)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("adapters[%d]: duplicate name %q", i, a.Name)
		}
		seen[a.Name] = struct{}{}
		switch a.Kind {
		case KindTransformer, KindCNN, KindAzure, KindGemini:
		default:
			return fmt.Errorf("adapter %q: unknown kind %q", a.Name, a.Kind)
		}
	}
	return nil
}

func (c *Config) Addr() string { return c.Host + ":" + c.Port }

func (c *Config) MaxFileSize() int64 { return c.MaxFileSizeMB << 20 }
