package dcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// bump when Entry changes shape
const schemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never set.
func (d Digest) IsZero() bool { return d == Digest{} }

// HashBytes hashes b.
func HashBytes(b []byte) Digest { return sha256.Sum256(b) }

// HashFile hashes the file at path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// Input is one source table as seen by the last generation.
type Input struct {
	Var    string
	Path   string
	Digest Digest
}

// Entry records what produced a generated file.
type Entry struct {
	Schema      uint16
	Output      string
	Settings    string // template and package settings, rendered by the caller
	Inputs      []Input
	OutputHash  Digest
	Records     int
	GeneratedAt time.Time
}

// Matches reports whether e was produced from the same settings and inputs.
func (e *Entry) Matches(settings string, inputs []Input) bool {
	if e == nil || e.Schema != schemaVersion || e.Settings != settings || len(e.Inputs) != len(inputs) {
		return false
	}
	for i := range inputs {
		if e.Inputs[i] != inputs[i] {
			return false
		}
	}
	return true
}

// Cache stores one Entry per generated output path. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open creates dir if needed and returns a cache rooted there.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(output string) string {
	abs, err := filepath.Abs(output)
	if err != nil {
		abs = output
	}
	key := sha256.Sum256([]byte(abs))
	return filepath.Join(c.dir, "gen", hex.EncodeToString(key[:])+".mp")
}

// Put writes e atomically, replacing any previous entry for e.Output.
func (c *Cache) Put(e *Entry) error {
	if c == nil || e == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e.Schema = schemaVersion
	p := c.pathFor(e.Output)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get loads the entry for output. ok is false when there is none or it was
// written by another schema version.
func (c *Cache) Get(output string) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(output))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "gen")); err != nil {
		return fmt.Errorf("drop cache: %w", err)
	}
	return nil
}
