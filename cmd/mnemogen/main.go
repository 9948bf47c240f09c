package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"mnemogen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mnemogen",
	Short: "Opcode table generator",
	Long: `mnemogen turns whitespace-delimited opcode tables into Go map entries
for assembler opcode tables`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(reformatCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to mnemogen.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	registerTraceFlags(rootCmd)
	registerProfileFlags(rootCmd)
}

// main runs the root command. Failures are reported on stderr and exit with
// status 1 after the atexit handlers (trace flushing) have run.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(rootCmd, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return err
	}
	atexit.Register(stopProfiling)
	atexit.Register(cleanup)
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color for the given stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	switch colorFlag {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}
