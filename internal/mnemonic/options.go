package mnemonic

import (
	"fmt"
	"strings"
)

// Policy decides what happens to a malformed record.
type Policy uint8

const (
	// PolicyFail stops at the first malformed record.
	PolicyFail Policy = iota
	// PolicySkip drops malformed records and reports a warning for each.
	PolicySkip
)

func (p Policy) String() string {
	switch p {
	case PolicyFail:
		return "fail"
	case PolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParsePolicy accepts "fail" or "skip"; empty means fail.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return PolicyFail, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyFail, fmt.Errorf("invalid malformed-record policy %q (expected fail|skip)", s)
	}
}

// Format selects the output encoding.
type Format uint8

const (
	// FormatLiteral emits Go map entries.
	FormatLiteral Format = iota
	// FormatJSON emits one JSON object per record.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatLiteral:
		return "literal"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat accepts "literal" or "json"; empty means literal.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return FormatLiteral, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatLiteral, fmt.Errorf("unknown format: %s (expected literal|json)", s)
	}
}
