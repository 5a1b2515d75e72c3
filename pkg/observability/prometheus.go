package observability

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrMetricsDisabled is returned by PrometheusHandler when Providers
// was built with MetricsEnabled false, so there is no registry to
// serve.
var ErrMetricsDisabled = errors.New("observability: metrics are disabled")

// PrometheusHandler returns the /metrics scrape endpoint backed by
// p.Registry. The "serve" CLI subcommand mounts it directly.
func PrometheusHandler(p Providers) (http.Handler, error) {
	if p.Registry == nil {
		return nil, ErrMetricsDisabled
	}

	return promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}), nil
}
