package mnemonic

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// MinTokens is the number of tokens a record needs.
const MinTokens = 3

// Record is one input line split on whitespace.
type Record struct {
	Line   uint32 // 1-based
	Tokens []string
}

// Split tokenizes line. ok is false for blank lines, which are not records.
// lineNo is clamped to the uint32 range.
func Split(line string, lineNo int) (Record, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Record{}, false
	}
	n, err := safecast.Conv[uint32](lineNo)
	if err != nil {
		n = 0
		if lineNo > 0 {
			n = ^uint32(0)
		}
	}
	return Record{Line: n, Tokens: tokens}, true
}

// Valid reports whether r has the tokens the template reads.
func (r Record) Valid() bool {
	return len(r.Tokens) >= MinTokens
}

// Opcode is token 0.
func (r Record) Opcode() string { return r.token(0) }

// Name is token 1, the mnemonic used as the map key.
func (r Record) Name() string { return r.token(1) }

// Value is token 2.
func (r Record) Value() string { return r.token(2) }

func (r Record) token(i int) string {
	if i < len(r.Tokens) {
		return r.Tokens[i]
	}
	return ""
}

func (r Record) String() string {
	return fmt.Sprintf("%d: %s", r.Line, strings.Join(r.Tokens, " "))
}
