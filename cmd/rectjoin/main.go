// Command rectjoin runs one of the three rectangle-intersection join
// frameworks (spec.md §1) against a dataset and reports the exact
// cardinality of J plus a uniform sample from it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/cmd/rectjoin/commands"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rectjoin",
		Short: "Rectangle intersection join cardinality and uniform sampling",
		Long: `rectjoin computes, for two collections of axis-aligned rectangles,
the exact size of their intersection join and t uniform draws from it.

Commands:
  run       Run one framework (Sampling, EnumSampling, Adaptive) against a dataset
  serve     Expose a Prometheus /metrics endpoint for long sweeps
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (parsed, not read by any subcommand)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output (parsed, not read by any subcommand)")

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String())
		},
	}
}
