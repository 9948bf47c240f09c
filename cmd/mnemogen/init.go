package main

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mnemogen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter mnemogen.toml",
	Long: `Init writes a commented mnemogen.toml into [dir] (default: the current
directory), creating the directory when needed. The generated package name is
the directory name when that is a valid Go identifier, "data" otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, config.FileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(config.Starter(packageNameFor(target))), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}

	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", manifestPath)
	}
	return nil
}

// packageNameFor derives a package clause from a directory name.
func packageNameFor(dir string) string {
	name := strings.ToLower(strings.TrimSpace(filepath.Base(dir)))
	name = strings.ReplaceAll(name, "-", "_")
	if !token.IsIdentifier(name) {
		return "data"
	}
	return name
}
