// Package diag defines the diagnostic model shared by the reformatter and the
// table generator.
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Path and Line – where in the input table the finding was made.
//   - Message – human oriented text; keep it short and actionable.
//
// Producers emit through a Reporter so they never depend on storage. The CLI
// wires a BagReporter and renders the Bag with internal/diagfmt once the
// command finishes.
//
// Package diag does not perform any formatting or IO.
package diag
