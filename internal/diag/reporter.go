package diag

import "sync"

// Reporter is the minimal sink producers emit into.
type Reporter interface {
	Report(code Code, sev Severity, path string, line uint32, msg string)
}

// BagReporter writes into a Bag. It is safe for concurrent use.
type BagReporter struct {
	mu  sync.Mutex
	Bag *Bag
}

func NewBagReporter(bag *Bag) *BagReporter {
	return &BagReporter{Bag: bag}
}

func (r *BagReporter) Report(code Code, sev Severity, path string, line uint32, msg string) {
	if r == nil || r.Bag == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Path: path, Line: line, Message: msg,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, uint32, string) {}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, path string, line uint32, msg string) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, path, line, msg)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, path string, line uint32, msg string) {
	if r == nil {
		return
	}
	r.Report(code, SevError, path, line, msg)
}
