package diag

import "fmt"

type Diagnostic struct {
	Severity Severity
	Code     Code
	Path     string
	Line     uint32 // 1-based, 0 when the finding is not tied to a line
	Message  string
}

// Location renders "path:line", "path" or "" depending on what is known.
func (d Diagnostic) Location() string {
	switch {
	case d.Path != "" && d.Line > 0:
		return fmt.Sprintf("%s:%d", d.Path, d.Line)
	case d.Path != "":
		return d.Path
	case d.Line > 0:
		return fmt.Sprintf("line %d", d.Line)
	}
	return ""
}
