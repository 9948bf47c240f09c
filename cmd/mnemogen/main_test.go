package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mnemogen/internal/config"
	"mnemogen/internal/diag"
	"mnemogen/internal/mnemonic"
	"mnemogen/internal/table"
	"mnemogen/internal/trace"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default; cobra keeps flag state
// between Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReformatCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "opcodes.txt", "LDA 0xA9 2 imm\nNOP 0xEA 1\n")
	cfg := writeInput(t, dir, config.FileName, "")

	stdout, _, err := execute(t, "--config", cfg, "reformat", input)
	if err != nil {
		t.Fatalf("reformat: %v", err)
	}
	want := "0xA9: Opcode{0xA9, 2, X, LDA, false},\n0xEA: Opcode{0xEA, 1, X, NOP, false},\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestReformatCommandMalformed(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "opcodes.txt", "LDA 0xA9 2\nBRK 0x00\nNOP 0xEA 1\n")
	cfg := writeInput(t, dir, config.FileName, "")

	stdout, _, err := execute(t, "--config", cfg, "reformat", input)
	if !errors.Is(err, mnemonic.ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	if stdout != "0xA9: Opcode{0xA9, 2, X, LDA, false},\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestReformatCommandUsesConfigInput(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "table.txt", "NOP 0xEA 1\nBRK\n")
	cfg := writeInput(t, dir, config.FileName, "[input]\npath = \"table.txt\"\non_malformed = \"skip\"\n\n[template]\ntype = \"Instr\"\n")

	stdout, stderr, err := execute(t, "--config", cfg, "--color", "off", "reformat")
	if err != nil {
		t.Fatalf("reformat: %v", err)
	}
	if stdout != "0xEA: Instr{0xEA, 1, X, NOP, false},\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "WARNING M1002") {
		t.Errorf("stderr lacks skip warning: %q", stderr)
	}
}

func TestTableCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "6502.txt", "0xea \"nop\" 1\n")
	out := filepath.Join(dir, "opcodes_gen.go")
	cfg := writeInput(t, dir, config.FileName, "")

	args := []string{"--config", cfg, "table", "-o", out, "--ui", "off",
		"--cache-dir", filepath.Join(dir, "cache"), "--var", "Opcodes6502=" + a}
	stdout, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(stdout, "wrote "+out+" (1 records from 1 tables)") {
		t.Errorf("stdout = %q", stdout)
	}
	code, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(code), `"nop": Opcode{"nop", 1, X, 0xea, false},`) {
		t.Errorf("generated:\n%s", code)
	}

	stdout, _, err = execute(t, args...)
	if err != nil {
		t.Fatalf("second table: %v", err)
	}
	if !strings.Contains(stdout, "is up to date") {
		t.Errorf("second run stdout = %q", stdout)
	}
}

func TestTableSources(t *testing.T) {
	configured := []config.SourceConfig{{Var: "A", Path: "a.txt"}}

	got, err := tableSources(nil, configured)
	if err != nil || len(got) != 1 || got[0] != (table.Source{Var: "A", Path: "a.txt"}) {
		t.Errorf("configured fallback = %+v, %v", got, err)
	}

	got, err = tableSources([]string{"B = b.txt", "C=c.txt"}, configured)
	if err != nil || len(got) != 2 || got[0].Var != "B" || got[0].Path != "b.txt" {
		t.Errorf("flags = %+v, %v", got, err)
	}

	if _, err := tableSources([]string{"nopath"}, nil); err == nil {
		t.Error("--var without '=' must fail")
	}
	if _, err := tableSources(nil, nil); !errors.Is(err, table.ErrNoSources) {
		t.Errorf("err = %v, want ErrNoSources", err)
	}
}

func TestReformatInput(t *testing.T) {
	cfg := config.Config{Input: config.InputConfig{Path: "/cfg/in.txt"}}
	if got := reformatInput([]string{"arg.txt"}, cfg); got != "arg.txt" {
		t.Errorf("argument ignored: %q", got)
	}
	if got := reformatInput(nil, cfg); got != "/cfg/in.txt" {
		t.Errorf("config ignored: %q", got)
	}
	if got := reformatInput(nil, config.Config{}); got != config.DefaultInput {
		t.Errorf("default = %q", got)
	}
}

func TestDiagnosticFor(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  diag.Code
		known bool
	}{
		{"record", fmt.Errorf("A: %w", &mnemonic.RecordError{Path: "a.txt", Line: 3, Tokens: 2}), diag.RecMalformed, true},
		{"source", &mnemonic.SourceError{Path: "a.txt", Err: os.ErrNotExist}, diag.ResNotFound, true},
		{"duplicate", fmt.Errorf("%w: A", table.ErrDuplicateVar), diag.GenDuplicateVar, true},
		{"other", errors.New("boom"), diag.UnknownCode, false},
	}
	for _, tt := range tests {
		d, known := diagnosticFor(tt.err)
		if known != tt.known || d.Code != tt.code {
			t.Errorf("%s: diagnosticFor = %+v, %v", tt.name, d, known)
		}
	}
}

func TestInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cpu-tables")
	if _, _, err := execute(t, "init", target); err != nil {
		t.Fatalf("init: %v", err)
	}
	m, err := config.Load(filepath.Join(target, config.FileName))
	if err != nil {
		t.Fatalf("starter does not load: %v", err)
	}
	if m.Config.Table.Package != "cpu_tables" {
		t.Errorf("package = %q, want cpu_tables", m.Config.Table.Package)
	}
	if _, _, err := execute(t, "init", target); err == nil {
		t.Error("second init must refuse to overwrite")
	}
}

func TestPackageNameFor(t *testing.T) {
	tests := map[string]string{
		"/x/data":   "data",
		"/x/My-CPU": "my_cpu",
		"/x/6502":   "data",
	}
	for in, want := range tests {
		if got := packageNameFor(in); got != want {
			t.Errorf("packageNameFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	if m, err := readUIMode("ON"); err != nil || m != uiModeOn {
		t.Errorf("readUIMode(ON) = %v, %v", m, err)
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("readUIMode accepted an invalid value")
	}
	if shouldUseTUI(uiModeOff) {
		t.Error("off must disable the UI")
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3"}
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"git_commit": "unknown"`) || strings.Contains(buf.String(), "build_date") {
		t.Errorf("json = %s", buf.String())
	}
}

func TestCleanCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	gen := filepath.Join(dir, "gen")
	if err := os.MkdirAll(gen, 0o755); err != nil {
		t.Fatal(err)
	}
	writeInput(t, gen, "entry.mp", "x")

	stdout, _, err := execute(t, "clean", "--cache-dir", dir)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(stdout, "removed generation cache in "+dir) {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(gen); !os.IsNotExist(err) {
		t.Errorf("cache entries survived: %v", err)
	}
}

func TestTableCommandReportsFailureOnce(t *testing.T) {
	dir := t.TempDir()
	bad := writeInput(t, dir, "bad.txt", "0xea \"nop\"\n")
	cfg := writeInput(t, dir, config.FileName, "")

	_, stderr, err := execute(t, "--config", cfg, "--color", "off", "table", "--ui", "off", "--no-cache",
		"-o", filepath.Join(dir, "out.go"), "--var", "Bad="+bad)
	if !errors.Is(err, mnemonic.ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	if strings.Count(stderr, "ERROR M1001") != 1 {
		t.Errorf("stderr = %q, want one M1001 diagnostic", stderr)
	}

	var after bytes.Buffer
	rootCmd.SetErr(&after)
	defer rootCmd.SetErr(nil)
	reportError(rootCmd, err)
	if after.Len() != 0 {
		t.Errorf("reported twice: %q", after.String())
	}
}

func TestReportErrorDumpsRing(t *testing.T) {
	ring := trace.NewRingTracer(2, trace.LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		trace.Point(ring, trace.ScopeRecord, name, "", 0)
	}
	prev := activeTracer
	activeTracer = ring
	defer func() { activeTracer = prev }()

	resetFlags(rootCmd)
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	defer rootCmd.SetErr(nil)
	if err := rootCmd.PersistentFlags().Set("color", "off"); err != nil {
		t.Fatal(err)
	}

	reportError(rootCmd, errors.New("boom"))
	out := stderr.String()
	for _, want := range []string{"(3 earlier events dropped)", "• d", "• e", "error: boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("stderr lacks %q:\n%s", want, out)
		}
	}
}
