package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project file looked up from the working directory.
const FileName = "mnemogen.toml"

// DefaultInput is the table `reformat` reads when nothing else is given.
const DefaultInput = "opcodes.txt"

// Config is the decoded project file.
type Config struct {
	Input    InputConfig    `toml:"input"`
	Template TemplateConfig `toml:"template"`
	Table    TableConfig    `toml:"table"`
}

type InputConfig struct {
	Path        string `toml:"path"`
	OnMalformed string `toml:"on_malformed"`
}

type TemplateConfig struct {
	Type     string `toml:"type"`
	Operands string `toml:"operands"`
	SizeFlag string `toml:"size_flag"`
}

type TableConfig struct {
	Package string         `toml:"package"`
	Output  string         `toml:"output"`
	Jobs    int            `toml:"jobs"`
	Sources []SourceConfig `toml:"source"`
}

type SourceConfig struct {
	Var  string `toml:"var"`
	Path string `toml:"path"`
}

// Manifest is a Config together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the settings used without a project file.
func Default() Config {
	return Config{
		Input: InputConfig{Path: DefaultInput, OnMalformed: "fail"},
		Table: TableConfig{Package: "data", Output: "opcodes_gen.go"},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the project file above startDir.
// ok is false when there is none; the returned Manifest then carries Default.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, _ := filepath.Abs(startDir)
		return &Manifest{Root: root, Config: Default()}, false, nil
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load decodes the file at path. Missing keys take Default values and
// relative paths are resolved against the file's directory.
func Load(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	root := filepath.Dir(path)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(root)
	return &Manifest{Path: path, Root: root, Config: cfg}, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Input.OnMalformed)) {
	case "", "fail", "skip":
	default:
		return fmt.Errorf("[input].on_malformed must be fail or skip, got %q", c.Input.OnMalformed)
	}
	if c.Table.Jobs < 0 {
		return fmt.Errorf("[table].jobs must not be negative")
	}
	seen := make(map[string]bool, len(c.Table.Sources))
	for i, src := range c.Table.Sources {
		if strings.TrimSpace(src.Var) == "" {
			return fmt.Errorf("[[table.source]] #%d: missing var", i+1)
		}
		if strings.TrimSpace(src.Path) == "" {
			return fmt.Errorf("[[table.source]] %s: missing path", src.Var)
		}
		if seen[src.Var] {
			return fmt.Errorf("[[table.source]] %s: declared twice", src.Var)
		}
		seen[src.Var] = true
	}
	return nil
}

func (c *Config) resolve(root string) {
	c.Input.Path = resolvePath(root, c.Input.Path)
	c.Table.Output = resolvePath(root, c.Table.Output)
	for i := range c.Table.Sources {
		c.Table.Sources[i].Path = resolvePath(root, c.Table.Sources[i].Path)
	}
}

func resolvePath(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// Starter returns the commented project file written by `mnemogen init`.
func Starter(pkg string) string {
	if pkg == "" {
		pkg = "data"
	}
	return fmt.Sprintf(`# mnemogen project file
[input]
path = %q
on_malformed = "fail"   # fail | skip

[template]
type = "Opcode"
operands = "X"
size_flag = "false"

[table]
package = %q
output = "opcodes_gen.go"

# [[table.source]]
# var = "Opcodes6502"
# path = "opcodes6502.txt"
`, DefaultInput, pkg)
}
