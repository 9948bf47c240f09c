package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Record level
	RecInfo      Code = 1000
	RecMalformed Code = 1001
	RecSkipped   Code = 1002

	// Input resources
	ResInfo     Code = 2000
	ResNotFound Code = 2001
	ResEmpty    Code = 2002

	// Table generation
	GenInfo         Code = 3000
	GenDuplicateVar Code = 3001
)

var codeDescription = map[Code]string{
	UnknownCode:     "Unknown error",
	RecInfo:         "Record information",
	RecMalformed:    "Record has fewer than three tokens",
	RecSkipped:      "Malformed record skipped",
	ResInfo:         "Resource information",
	ResNotFound:     "Input resource not found",
	ResEmpty:        "Input resource has no records",
	GenInfo:         "Generator information",
	GenDuplicateVar: "Duplicate table variable",
}

// ID returns the stable identifier, e.g. "M1001".
func (c Code) ID() string {
	return fmt.Sprintf("M%04d", uint16(c))
}

func (c Code) String() string {
	return c.ID()
}

// Title returns a short human readable description.
func (c Code) Title() string {
	if d, ok := codeDescription[c]; ok {
		return d
	}
	return codeDescription[UnknownCode]
}
