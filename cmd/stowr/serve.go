package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/xiaolin/stowr/internal/metrics"
)

func newServeMetricsCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve Prometheus metrics over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			met := metrics.New()
			mux := http.NewServeMux()
			mux.Handle("/metrics", met.Handler())
			fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on %s/metrics\n", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve metrics on")
	return cmd
}
