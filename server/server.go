// Package server exposes the ensemble over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/krau/konabreed/config"
	"github.com/krau/konabreed/metrics"
	"github.com/krau/konabreed/registry"
	"github.com/krau/konabreed/service"
)

const (
	ServiceName = "Dog Breed Classifier API"
	Version     = "1.0.0"
)

// Aggregator runs one upload through the ensemble.
type Aggregator interface {
	Aggregate(ctx context.Context, raw []byte) (*service.Response, error)
}

// Catalog describes the loaded adapters.
type Catalog interface {
	Names() []string
	Describe() []registry.Info
	Demo() bool
}

type Server struct {
	predictor   Aggregator
	models      Catalog
	log         *slog.Logger
	addr        string
	maxFileSize int64
	extensions  []string
	engine      *gin.Engine
}

func New(p Aggregator, models Catalog, cfg *config.Config, rec *metrics.Recorder, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	exts := make([]string, 0, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(e, ".")))
	}
	s := &Server{
		predictor:   p,
		models:      models,
		log:         log.With(slog.String("component", "server")),
		addr:        cfg.Addr(),
		maxFileSize: cfg.MaxFileSize(),
		extensions:  exts,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests, cors(cfg.CORSOrigins))
	r.MaxMultipartMemory = s.maxFileSize + 1<<20

	r.GET("/", s.root)
	r.GET("/metrics", gin.WrapH(rec.Handler()))
	v1 := r.Group("/api/v1")
	v1.POST("/predict", s.predict)
	v1.GET("/health", s.health)
	v1.GET("/models", s.listModels)
	v1.GET("/breeds", s.listBreeds)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("Listening on", slog.String("address", s.addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("elapsed", time.Since(start)))
}
