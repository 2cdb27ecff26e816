package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/krau/konabreed/server"
	"github.com/krau/konabreed/service"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			slog.Info("Starting KonaBreed", slog.String("version", server.Version))

			rt, err := start(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			p := service.New(rt.registry, service.Options{
				Parallelism: rt.cfg.Parallelism,
				Logger:      slog.Default(),
				Metrics:     rt.metrics,
			})
			if !opts.debug {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.New(p, rt.registry, rt.cfg, rt.metrics, slog.Default())
			if err := srv.Run(ctx); err != nil {
				return err
			}
			slog.Info("Stopped")
			return nil
		},
	}
}
