package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

// ErrNoLibrary means no ONNX Runtime shared library could be located.
var ErrNoLibrary = errors.New("onnx runtime library not found")

// LibPath picks the shared library: the configured path, then
// ONNXRUNTIME_LIB, then the onnxlibs directory next to the binary, then
// the usual system locations.
func LibPath(configured string) string {
	if configured != "" {
		return configured
	}
	if p := os.Getenv("ONNXRUNTIME_LIB"); p != "" {
		return p
	}
	for _, p := range candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func candidates() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{
			filepath.Join("onnxlibs", "libonnxruntime-linux-x64.so.1.23.2"),
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
		}
	case "darwin":
		return []string{
			filepath.Join("onnxlibs", "libonnxruntime.dylib"),
			"/usr/local/lib/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	case "windows":
		return []string{filepath.Join("onnxlibs", "onnxruntime.dll"), "onnxruntime.dll"}
	default:
		return nil
	}
}

// Init loads the shared library and initializes the ONNX Runtime
// environment. The returned func tears it down.
func Init(configured string) (func(), error) {
	path := LibPath(configured)
	if path == "" {
		return func() {}, ErrNoLibrary
	}
	slog.Info("Using ONNX Runtime library", slog.String("path", path))
	ort.SetSharedLibraryPath(path)
	if err := ort.InitializeEnvironment(); err != nil {
		return func() {}, fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
	}
	return func() {
		if err := ort.DestroyEnvironment(); err != nil {
			slog.Warn("Failed to destroy ONNX Runtime environment", slog.String("error", err.Error()))
		}
	}, nil
}
