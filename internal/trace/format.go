package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen from the output path
	FormatText                 // one human-readable line per event
	FormatNDJSON               // newline-delimited JSON
)

// formatFor picks NDJSON for .ndjson and .jsonl outputs.
func formatFor(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders ev as one newline-terminated line.
func FormatEvent(ev *Event, format Format) []byte {
	if format != FormatNDJSON {
		return formatText(ev)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		data = fmt.Appendf(nil, `{"error":%q}`, err.Error())
	}
	return append(data, '\n')
}

// formatText renders: [seq] scope  marker name (detail) k=v ...
// Child events are indented by two spaces.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] %-7s ", ev.Seq, ev.Scope)
	if ev.ParentID != 0 {
		sb.WriteString("  ")
	}
	sb.WriteString(ev.marker())
	sb.WriteByte(' ')
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%s", k, ev.Extra[k])
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
