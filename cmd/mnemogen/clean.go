package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemogen/internal/dcache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the generation cache",
	Long:  "Remove every entry of the cache `mnemogen table` uses to skip unchanged outputs.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().String("cache-dir", "", "generation cache directory")
}

func runClean(cmd *cobra.Command, _ []string) error {
	dir, err := cacheDir(cmd)
	if err != nil {
		return err
	}
	cache, err := dcache.Open(dir)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "removed generation cache in %s\n", cache.Dir())
	}
	return nil
}
