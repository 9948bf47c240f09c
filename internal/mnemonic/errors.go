package mnemonic

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound is returned when the input cannot be opened.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrMalformedRecord is returned for a line with fewer than MinTokens tokens.
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError locates a malformed record.
type RecordError struct {
	Path   string
	Line   uint32
	Tokens int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v: got %d token(s), need %d", e.Path, e.Line, ErrMalformedRecord, e.Tokens, MinTokens)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// SourceError wraps a failure to open or read the input.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrResourceNotFound, e.Err)
}

// Unwrap exposes both ErrResourceNotFound and the underlying error, so
// errors.Is(err, fs.ErrNotExist) keeps working.
func (e *SourceError) Unwrap() []error { return []error{ErrResourceNotFound, e.Err} }
