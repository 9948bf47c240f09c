package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemogen/internal/observ"
)

// newTimer returns a timer when --timings is set, nil otherwise.
// A nil *observ.Timer is safe to Track on.
func newTimer(cmd *cobra.Command) *observ.Timer {
	on, _ := cmd.Root().PersistentFlags().GetBool("timings")
	if !on {
		return nil
	}
	return observ.NewTimer()
}

func printTimings(cmd *cobra.Command, timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
}
