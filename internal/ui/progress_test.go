package ui

import (
	"strings"
	"testing"

	"mnemogen/internal/table"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"opcodes65816.txt", 10, "opco..."},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestProgressModelTracksEvents(t *testing.T) {
	sources := []table.Source{{Var: "A", Path: "a.txt"}, {Var: "B", Path: "b.txt"}}
	events := make(chan table.Event)
	m := NewProgressModel("opcodes_gen.go", sources, events).(*progressModel)

	m.Update(eventMsg(table.Event{Var: "A", Status: table.StatusDone, Records: 151}))
	m.Update(eventMsg(table.Event{Var: "B", Status: table.StatusWorking}))
	m.Update(eventMsg(table.Event{Var: "unknown", Status: table.StatusDone}))

	if got := m.fraction(); got != 0.75 {
		t.Errorf("fraction = %v, want 0.75", got)
	}
	view := m.View()
	if !strings.Contains(view, "(151 records)") {
		t.Errorf("view lacks record count:\n%s", view)
	}

	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Error("doneMsg must finish the model")
	}
	if !strings.HasPrefix(strings.TrimSpace(stripANSI(m.View())), "done: opcodes_gen.go") {
		t.Errorf("final view:\n%s", m.View())
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
