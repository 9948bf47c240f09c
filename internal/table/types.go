package table

import (
	"errors"
	"time"

	"mnemogen/internal/diag"
	"mnemogen/internal/mnemonic"
	"mnemogen/internal/observ"
)

var (
	// ErrNoSources is returned for a request without sources.
	ErrNoSources = errors.New("no table sources")
	// ErrDuplicateVar is returned when two sources bind the same variable.
	ErrDuplicateVar = errors.New("duplicate table variable")
	// ErrInvalidVar is returned when a variable name is not a Go identifier.
	ErrInvalidVar = errors.New("invalid table variable")
)

// Source binds one input table to one Go variable.
type Source struct {
	Var  string
	Path string
}

// Status captures progress of one source.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a source (or for the whole build when Var is empty).
type Event struct {
	Var     string
	Path    string
	Status  Status
	Records uint32
	Err     error
	Elapsed time.Duration
}

// Request describes one generated file.
type Request struct {
	Package   string
	Template  mnemonic.Template
	Sources   []Source
	Jobs      int  // <= 0 means runtime.NumCPU()
	Normalize bool // NFC-normalize tokens
	Progress  ProgressSink
	Reporter  diag.Reporter
	Timer     *observ.Timer // phases of Generate; nil disables timing
}

// SourceResult is the outcome for one source.
type SourceResult struct {
	Source
	Stats   mnemonic.Stats
	Elapsed time.Duration
}

// Result is the outcome of Build.
type Result struct {
	Code    []byte // gofmt'ed Go source
	Records int
	Sources []SourceResult
}
