package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mnemogen/internal/diag"
	"mnemogen/internal/diagfmt"
	"mnemogen/internal/mnemonic"
	"mnemogen/internal/table"
	"mnemogen/internal/trace"
)

// reportError prints err on stderr, as a diagnostic when it has a known
// cause, and dumps the trace ring if one was kept.
func reportError(cmd *cobra.Command, err error) {
	stderr := cmd.ErrOrStderr()
	colored := useColor(cmd, os.Stderr)

	if ring, ok := trace.Ring(activeTracer); ok {
		fmt.Fprintln(stderr, "trace (most recent events):")
		if n := ring.Dropped(); n > 0 {
			fmt.Fprintf(stderr, "(%d earlier events dropped)\n", n)
		}
		if dumpErr := ring.Dump(stderr, trace.FormatText); dumpErr != nil {
			fmt.Fprintf(stderr, "trace: dump error: %v\n", dumpErr)
		}
	}

	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}

	d, known := diagnosticFor(err)
	if !known {
		label := color.New(color.FgRed, color.Bold)
		if colored {
			label.EnableColor()
		} else {
			label.DisableColor()
		}
		fmt.Fprintf(stderr, "%s %v\n", label.Sprint("error:"), err)
		return
	}
	bag := diag.NewBag(1)
	bag.Add(d)
	if printErr := diagfmt.Pretty(stderr, bag, diagfmt.PrettyOpts{Color: colored}); printErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

// reportedError marks a failure whose diagnostics were already printed.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// diagnosticFor maps the errors mnemogen produces onto diagnostic codes.
func diagnosticFor(err error) (diag.Diagnostic, bool) {
	var recErr *mnemonic.RecordError
	var srcErr *mnemonic.SourceError
	switch {
	case errors.As(err, &recErr):
		return diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.RecMalformed,
			Path:     recErr.Path,
			Line:     recErr.Line,
			Message:  fmt.Sprintf("record has %d token(s), need %d; no output was written for it or any later line", recErr.Tokens, mnemonic.MinTokens),
		}, true
	case errors.As(err, &srcErr):
		return diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.ResNotFound,
			Path:     srcErr.Path,
			Message:  fmt.Sprintf("cannot read input: %v", srcErr.Err),
		}, true
	case errors.Is(err, table.ErrDuplicateVar):
		return diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.GenDuplicateVar,
			Message:  err.Error(),
		}, true
	}
	return diag.Diagnostic{}, false
}

// printDiagnostics renders collected warnings on stderr.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag) error {
	if bag == nil || bag.Len() == 0 || quiet(cmd) {
		return nil
	}
	bag.Dedup()
	bag.Sort()
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return diagfmt.Pretty(cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{
		Color: useColor(cmd, os.Stderr),
		Max:   maxDiagnostics,
	})
}
