package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mnemogen/internal/config"
	"mnemogen/internal/dcache"
	"mnemogen/internal/diag"
	"mnemogen/internal/table"
)

var tableCmd = &cobra.Command{
	Use:   "table [flags]",
	Short: "Generate a Go file with one opcode map per table",
	Long: `Table reformats every configured source ([[table.source]] in mnemogen.toml,
or --var Name=path) and writes a single gofmt'ed Go file with one map
variable per source. Any malformed record aborts the generation.`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

func init() {
	tableCmd.Flags().StringP("output", "o", "", "generated file (default: [table].output)")
	tableCmd.Flags().String("package", "", "package clause of the generated file (default: [table].package)")
	tableCmd.Flags().String("type", "", "composite literal type (default: [template].type)")
	tableCmd.Flags().StringArray("var", nil, "source as Name=path; repeatable, replaces configured sources")
	tableCmd.Flags().Int("jobs", 0, "tables read in parallel (0: [table].jobs or all CPUs)")
	tableCmd.Flags().Bool("normalize", false, "NFC-normalize tokens before formatting")
	tableCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	tableCmd.Flags().Bool("no-cache", false, "always regenerate")
	tableCmd.Flags().String("cache-dir", "", "generation cache directory")
}

func runTable(cmd *cobra.Command, _ []string) error {
	manifest, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	cfg := manifest.Config

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.Table.Output
	}
	pkg, _ := cmd.Flags().GetString("package")
	if pkg == "" {
		pkg = cfg.Table.Package
	}
	tpl := templateFrom(cfg)
	if typeName, _ := cmd.Flags().GetString("type"); typeName != "" {
		tpl.TypeName = typeName
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs <= 0 {
		jobs = cfg.Table.Jobs
	}
	normalize, _ := cmd.Flags().GetBool("normalize")

	varFlags, err := cmd.Flags().GetStringArray("var")
	if err != nil {
		return fmt.Errorf("failed to get var flag: %w", err)
	}
	sources, err := tableSources(varFlags, cfg.Table.Sources)
	if err != nil {
		return err
	}

	uiValue, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	bag := diag.NewBag(maxDiagnostics)

	req := &table.Request{
		Package:   pkg,
		Template:  tpl,
		Sources:   sources,
		Jobs:      jobs,
		Normalize: normalize,
		Reporter:  diag.NewBagReporter(bag),
	}

	timer := newTimer(cmd)
	req.Timer = timer
	cache := openGenCache(cmd)

	var gen table.Generated
	if shouldUseTUI(mode) && !quiet(cmd) {
		gen, err = generateWithUI(cmd.Context(), filepath.Base(output), req, output, cache)
	} else {
		gen, err = table.Generate(cmd.Context(), req, output, cache)
	}

	printErr := printDiagnostics(cmd, bag)
	printTimings(cmd, timer)
	if err != nil {
		if printErr == nil && bag.HasErrors() && !quiet(cmd) {
			return &reportedError{err: err}
		}
		return err
	}
	if printErr != nil {
		return printErr
	}

	if !quiet(cmd) {
		out := cmd.OutOrStdout()
		if gen.UpToDate {
			fmt.Fprintf(out, "%s is up to date\n", output)
		} else {
			fmt.Fprintf(out, "wrote %s (%d records from %d tables)\n", output, gen.Result.Records, len(sources))
		}
	}
	return nil
}

// tableSources parses --var Name=path flags; without any it falls back to
// the configured sources.
func tableSources(varFlags []string, configured []config.SourceConfig) ([]table.Source, error) {
	if len(varFlags) == 0 {
		sources := make([]table.Source, len(configured))
		for i, src := range configured {
			sources[i] = table.Source{Var: src.Var, Path: src.Path}
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("%w: add [[table.source]] to %s or pass --var Name=path", table.ErrNoSources, config.FileName)
		}
		return sources, nil
	}
	sources := make([]table.Source, 0, len(varFlags))
	for _, v := range varFlags {
		name, path, ok := strings.Cut(v, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --var %q (expected Name=path)", v)
		}
		sources = append(sources, table.Source{Var: name, Path: path})
	}
	return sources, nil
}

// openGenCache returns nil when caching is disabled or unavailable; the
// table is then always regenerated.
func openGenCache(cmd *cobra.Command) *dcache.Cache {
	if off, _ := cmd.Flags().GetBool("no-cache"); off {
		return nil
	}
	dir, err := cacheDir(cmd)
	if err != nil {
		warnf(cmd, "generation cache disabled: %v", err)
		return nil
	}
	cache, err := dcache.Open(dir)
	if err != nil {
		warnf(cmd, "generation cache disabled: %v", err)
		return nil
	}
	return cache
}

func cacheDir(cmd *cobra.Command) (string, error) {
	if flag := cmd.Flags().Lookup("cache-dir"); flag != nil && flag.Value.String() != "" {
		return flag.Value.String(), nil
	}
	return dcache.DefaultDir("mnemogen")
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	if quiet(cmd) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}
