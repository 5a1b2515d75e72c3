package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
)

const (
	serveCmdUse   = "serve"
	serveCmdShort = "Expose a Prometheus /metrics endpoint for scraping phase histograms"

	defaultServeAddr  = ":9090"
	readHeaderTimeout = 5 * time.Second
)

// NewServeCommand builds the "serve" subcommand. It mounts only
// PrometheusHandler — no dataset-serving endpoints, which per
// SPEC_FULL.md §2.4 remain an external-app concern.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   serveCmdUse,
		Short: serveCmdShort,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address for the metrics server")

	return cmd
}

func runServe(addr string) error {
	providers, err := observability.Init(observability.Config{
		ServiceName:    "rectjoin",
		ServiceVersion: versionString(),
		Mode:           observability.ModeServe,
		LogLevel:       parseLogLevel(""),
		MetricsEnabled: true,
		SampleRatio:    1,
	})
	if err != nil {
		return fmt.Errorf("serve: init observability: %w", err)
	}

	handler, err := observability.PrometheusHandler(providers)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	providers.Logger.Info("serving metrics", "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
