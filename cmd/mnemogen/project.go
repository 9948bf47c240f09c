package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemogen/internal/config"
	"mnemogen/internal/mnemonic"
)

// loadManifest honours --config, otherwise searches upwards from the
// working directory. Without a project file the defaults are returned.
func loadManifest(cmd *cobra.Command) (*config.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	m, _, err := config.Discover(".")
	return m, err
}

func templateFrom(cfg config.Config) mnemonic.Template {
	return mnemonic.Template{
		TypeName: cfg.Template.Type,
		Operands: cfg.Template.Operands,
		SizeFlag: cfg.Template.SizeFlag,
	}.WithDefaults()
}
