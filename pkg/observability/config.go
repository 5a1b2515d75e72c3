package observability

import "log/slog"

// AppMode tags emitted logs and resource attributes with which CLI
// subcommand produced them.
type AppMode string

// AppMode values.
const (
	ModeRun   AppMode = "run"
	ModeServe AppMode = "serve"
)

// Config configures Init. Mirrors the teacher's observability config:
// a service identity, a log sink selection, and a metrics toggle.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	LogLevel slog.Level
	LogJSON  bool

	// MetricsEnabled turns on the Prometheus-backed meter provider. When
	// false, Meter is a no-op and PhaseRecorder only produces spans.
	MetricsEnabled bool

	// SampleRatio is the trace sampling ratio in [0, 1]; used only when
	// strictly between 0 and 1 (parent-based always-on otherwise).
	SampleRatio float64
}

// DefaultConfig returns a minimal configuration: service "rectjoin" in
// run mode, info-level text logs, metrics off, and full trace sampling.
func DefaultConfig() Config {
	return Config{
		ServiceName: "rectjoin",
		Mode:        ModeRun,
		LogLevel:    slog.LevelInfo,
		SampleRatio: 1,
	}
}
