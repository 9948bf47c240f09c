package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemogen/internal/config"
	"mnemogen/internal/diag"
	"mnemogen/internal/mnemonic"
)

var reformatCmd = &cobra.Command{
	Use:   "reformat [flags] [file]",
	Short: "Reformat an opcode table into Go map entries",
	Long: `Reformat reads an opcode table (opcode, mnemonic, length, ... per line)
and prints one Go map entry per record on standard output, in input order.
Without [file] the [input].path of mnemogen.toml is used, or opcodes.txt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReformat,
}

func init() {
	reformatCmd.Flags().String("format", "literal", "output format (literal|json)")
	reformatCmd.Flags().String("on-malformed", "fail", "what to do with lines of fewer than three tokens (fail|skip)")
	reformatCmd.Flags().Bool("normalize", false, "NFC-normalize tokens before formatting")
}

func runReformat(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	cfg := manifest.Config

	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := mnemonic.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	policyStr := cfg.Input.OnMalformed
	if cmd.Flags().Changed("on-malformed") {
		if policyStr, err = cmd.Flags().GetString("on-malformed"); err != nil {
			return fmt.Errorf("failed to get on-malformed flag: %w", err)
		}
	}
	policy, err := mnemonic.ParsePolicy(policyStr)
	if err != nil {
		return err
	}

	normalize, err := cmd.Flags().GetBool("normalize")
	if err != nil {
		return fmt.Errorf("failed to get normalize flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	bag := diag.NewBag(maxDiagnostics)

	rf := mnemonic.New(mnemonic.Options{
		Template:  templateFrom(cfg),
		Policy:    policy,
		Format:    format,
		Normalize: normalize,
		Reporter:  diag.NewBagReporter(bag),
	})

	timer := newTimer(cmd)
	done := timer.Track("reformat")
	st, runErr := rf.RunFile(cmd.Context(), reformatInput(args, cfg), cmd.OutOrStdout())
	done(fmt.Sprintf("%d records, %d skipped", st.Records, st.Skipped))

	if err := printDiagnostics(cmd, bag); err != nil {
		return err
	}
	printTimings(cmd, timer)
	return runErr
}

// reformatInput picks the table to read: argument, then config, then the
// default file name.
func reformatInput(args []string, cfg config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if cfg.Input.Path != "" {
		return cfg.Input.Path
	}
	return config.DefaultInput
}
