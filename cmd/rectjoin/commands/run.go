package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/internal/datasetio"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/config"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine1"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine2"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine3"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
)

const (
	runCmdUse   = "run"
	runCmdShort = "Run one framework against a dataset and report |J| plus a uniform sample"
)

// NewRunCommand builds the "run" subcommand: load config, build a
// Runner for the selected variant, drive Reset->Build->Count->Sample,
// and print a summary.
func NewRunCommand() *cobra.Command {
	var (
		configPath  string
		datasetPath string
	)

	v := viper.New()

	cmd := &cobra.Command{
		Use:   runCmdUse,
		Short: runCmdShort,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindRunFlags(v, cmd)

			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}

			return runOnce(cmd.Context(), cfg, datasetPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a rectjoin config file (YAML/JSON)")
	flags.StringVar(&datasetPath, "dataset", "", "path to a JSON dataset file (required)")
	flags.String("method", "", "join.Method override: ours|range_tree|kd_tree")
	flags.String("variant", "", "join.Variant override: sampling|enum_sampling|adaptive")
	flags.Uint32("t", 0, "number of output slots to sample")
	flags.Uint64("seed", 0, "master seed for RNG derivation")
	flags.Uint64("enum-cap", 0, "Framework I materialization cap (0 = unbounded)")
	flags.Uint64("budget", 0, "Framework III memory budget (j_star)")
	flags.Uint64("w-small", 0, "Framework III small-event cache threshold")
	flags.Bool("metrics", false, "enable the Prometheus meter for this run")
	flags.String("log-level", "", "debug|info|warn|error")
	flags.Bool("log-json", false, "emit structured JSON logs")

	return cmd
}

func bindRunFlags(v *viper.Viper, cmd *cobra.Command) {
	_ = v.BindPFlag("method", cmd.Flags().Lookup("method"))
	_ = v.BindPFlag("variant", cmd.Flags().Lookup("variant"))
	_ = v.BindPFlag("t", cmd.Flags().Lookup("t"))
	_ = v.BindPFlag("seed", cmd.Flags().Lookup("seed"))
	_ = v.BindPFlag("enum_cap", cmd.Flags().Lookup("enum-cap"))
	_ = v.BindPFlag("budget", cmd.Flags().Lookup("budget"))
	_ = v.BindPFlag("w_small", cmd.Flags().Lookup("w-small"))
	_ = v.BindPFlag("metrics.enabled", cmd.Flags().Lookup("metrics"))
	_ = v.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag("log_json", cmd.Flags().Lookup("log-json"))
}

func runOnce(ctx context.Context, cfg *config.Config, datasetPath string) error {
	if datasetPath == "" {
		return fmt.Errorf("run: --dataset is required")
	}

	providers, err := observability.Init(observability.Config{
		ServiceName:    "rectjoin",
		ServiceVersion: versionString(),
		Mode:           observability.ModeRun,
		LogLevel:       parseLogLevel(cfg.LogLevel),
		LogJSON:        cfg.LogJSON,
		MetricsEnabled: cfg.Metrics.Enabled,
		SampleRatio:    1,
	})
	if err != nil {
		return fmt.Errorf("run: init observability: %w", err)
	}
	defer providers.Shutdown(ctx) //nolint:errcheck // best-effort flush on exit

	recorder, err := observability.NewPhaseRecorder(providers)
	if err != nil {
		return fmt.Errorf("run: init phase recorder: %w", err)
	}

	joinGauges, err := observability.NewJoinStatsGauges(providers)
	if err != nil {
		return fmt.Errorf("run: init join stats gauges: %w", err)
	}

	src := datasetio.JSONFileSource{Path: datasetPath}

	dataset, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("run: load dataset: %w", err)
	}

	jcfg := cfg.JoinConfig()

	runner, err := selectRunner(jcfg.Variant, recorder)
	if err != nil {
		return err
	}

	runLogger := providers.Logger.With(
		"dataset", dataset.Name, "variant", jcfg.Variant, "t", jcfg.T, "seed", jcfg.Seed)

	runLogger.Info("run starting")

	result, sampleSet, elapsed, runErr := execute(runner, dataset, jcfg)
	if runErr != nil {
		runLogger.Error("run failed", "error", runErr)
		printFailure(runErr)

		return runErr
	}

	runLogger.Info("run completed",
		"count", result.Value, "samples", len(sampleSet.Pairs), "elapsed", elapsed)

	if statser, ok := runner.(interface{ Stats() join.JoinStats }); ok {
		joinGauges.Record(ctx, statser.Stats())
	}

	printSummary(dataset, jcfg, result, sampleSet, elapsed)

	return nil
}

// execute runs the uniform Reset->Build->Count->Sample protocol (C11)
// and returns the total wall time across all three phases.
func execute(runner join.Runner, dataset geo.Dataset, cfg join.Config) (join.CountResult, join.SampleSet, time.Duration, error) {
	start := time.Now()

	runner.Reset()

	if err := runner.Build(dataset, cfg); err != nil {
		return join.CountResult{}, join.SampleSet{}, time.Since(start), fmt.Errorf("build: %w", err)
	}

	result, err := runner.Count(cfg)
	if err != nil {
		return join.CountResult{}, join.SampleSet{}, time.Since(start), fmt.Errorf("count: %w", err)
	}

	sampleSet, err := runner.Sample(cfg)
	if err != nil {
		return result, join.SampleSet{}, time.Since(start), fmt.Errorf("sample: %w", err)
	}

	return result, sampleSet, time.Since(start), nil
}

func selectRunner(variant join.Variant, recorder *observability.PhaseRecorder) (join.Runner, error) {
	switch variant {
	case join.VariantSampling:
		e := engine2.New()
		e.Recorder = recorder

		return e, nil
	case join.VariantEnumSampling:
		e := engine1.New()
		e.Recorder = recorder

		return e, nil
	case join.VariantAdaptive:
		e := engine3.New()
		e.Recorder = recorder

		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", join.ErrConfigMismatch, variant)
	}
}

func printSummary(dataset geo.Dataset, cfg join.Config, result join.CountResult, sampleSet join.SampleSet, elapsed time.Duration) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stdout, "rectjoin run: %s (variant=%s)\n", dataset.Name, cfg.Variant)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"|R|", humanize.Comma(int64(dataset.R.Len()))})
	tbl.AppendRow(table.Row{"|S|", humanize.Comma(int64(dataset.S.Len()))})
	tbl.AppendRow(table.Row{"|J| (exact)", humanize.Comma(int64(result.Value))})
	tbl.AppendRow(table.Row{"t", humanize.Comma(int64(cfg.T))})
	tbl.AppendRow(table.Row{"samples drawn", humanize.Comma(int64(len(sampleSet.Pairs)))})
	tbl.AppendRow(table.Row{"elapsed", elapsed.String()})
	tbl.AppendFooter(table.Row{"status", green.Sprint("ok")})

	tbl.Render()
}

func printFailure(err error) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stdout, "rectjoin run failed: %v\n", err)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
