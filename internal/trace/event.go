package trace

import (
	"fmt"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string { return lookupName(kindNames[:], int(k)) }

// MarshalText encodes the kind by name in NDJSON output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Scope indicates the granularity of the event. Lower values are coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1 // one CLI command
	ScopeFile                     // one input table
	ScopeRecord                   // one input line
)

var scopeNames = [...]string{ScopeCommand: "command", ScopeFile: "file", ScopeRecord: "record"}

func (s Scope) String() string { return lookupName(scopeNames[:], int(s)) }

// MarshalText encodes the scope by name in NDJSON output.
func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func lookupName(names []string, i int) string {
	if i <= 0 || i >= len(names) || names[i] == "" {
		return "unknown"
	}
	return names[i]
}

// Event is one trace record. Seq is assigned by the tracer that stores it.
type Event struct {
	Time     time.Time         `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     Kind              `json:"kind"`
	Scope    Scope             `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`   // "table:build", "file:opcodes.txt"
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func (ev *Event) marker() string {
	switch ev.Kind {
	case KindSpanBegin:
		return "→"
	case KindSpanEnd:
		return "←"
	case KindPoint:
		return "•"
	}
	return fmt.Sprintf("?%d", ev.Kind)
}
