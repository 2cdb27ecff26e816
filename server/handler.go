package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/docker/go-units"
	"github.com/gin-gonic/gin"

	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
	"github.com/krau/konabreed/service"
)

func (s *Server) root(c *gin.Context) {
	status := "real"
	if s.models.Demo() {
		status = "demo"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      ServiceName,
		"version":      Version,
		"model_status": status,
		"health":       "/api/v1/health",
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": Version,
	})
}

func (s *Server) listModels(c *gin.Context) {
	names := s.models.Names()
	c.JSON(http.StatusOK, gin.H{
		"loaded_models":    names,
		"total_models":     len(names),
		"supported_breeds": len(breeds.Canonical),
		"image_size":       imageproc.Default.Width,
		"max_file_size_mb": s.maxFileSize >> 20,
		"demo":             s.models.Demo(),
		"models":           s.models.Describe(),
	})
}

func (s *Server) listBreeds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"breeds":      breeds.Canonical,
		"total_count": len(breeds.Canonical),
	})
}

func (s *Server) predict(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be an image"})
		return
	}
	if !s.extensionAllowed(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported file extension, allowed: %s", strings.Join(s.extensions, ", ")),
		})
		return
	}
	if fileHeader.Size > s.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": s.tooLarge()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open uploaded file"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, s.maxFileSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded file"})
		return
	}
	if int64(len(raw)) > s.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": s.tooLarge()})
		return
	}

	resp, err := s.predictor.Aggregate(c.Request.Context(), raw)
	if err != nil {
		var pe *service.PreprocessError
		if errors.As(err, &pe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image file"})
			return
		}
		s.log.Error("Prediction failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error during prediction"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) extensionAllowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || len(s.extensions) == 0 {
		return true
	}
	return slices.Contains(s.extensions, ext)
}

func (s *Server) tooLarge() string {
	return "file size too large, maximum size: " + units.BytesSize(float64(s.maxFileSize))
}
