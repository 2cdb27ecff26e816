package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/krau/konabreed/service"
)

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var compact bool
	c := &cobra.Command{
		Use:   "predict IMAGE",
		Short: "Run one image through the ensemble and print the JSON response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			rt, err := start(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			p := service.New(rt.registry, service.Options{
				Parallelism: rt.cfg.Parallelism,
				Logger:      slog.Default(),
				Metrics:     rt.metrics,
			})
			resp, err := p.Aggregate(cmd.Context(), raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(resp)
		},
	}
	c.Flags().BoolVar(&compact, "compact", false, "Print the response on one line")
	return c
}
