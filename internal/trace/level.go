package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // kept in memory, dumped on failure
	LevelPhase        // command boundaries
	LevelDetail       // per-file events
	LevelDebug        // every record
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest is the finest scope each level lets through.
var deepest = [...]Scope{
	LevelError:  ScopeFile,
	LevelPhase:  ScopeCommand,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeRecord,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level; "" means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if l == LevelOff || int(l) >= len(deepest) {
		return false
	}
	return scope <= deepest[l]
}
