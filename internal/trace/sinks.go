package trace

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

var seq atomic.Uint64

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seq.Add(1) }

// gate holds the level shared by every tracer implementation.
type gate struct{ level Level }

func (g gate) Level() Level  { return g.level }
func (g gate) Enabled() bool { return g.level > LevelOff }
func (g gate) pass(ev *Event) bool {
	return g.level.ShouldEmit(ev.Scope)
}

type nopTracer struct{ gate }

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// StreamTracer writes each event to w as it arrives.
type StreamTracer struct {
	gate
	format Format

	mu sync.Mutex
	w  io.Writer
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{gate: gate{level}, w: w, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.pass(ev) {
		return
	}
	ev.Seq = NextSeq()
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	// best-effort: a broken trace output never fails the command
	_, _ = t.w.Write(line)
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RingTracer keeps the most recent events in memory.
type RingTracer struct {
	gate

	mu    sync.Mutex
	buf   []Event
	total uint64 // events ever stored
}

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{gate: gate{level}, buf: make([]Event, size)}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.pass(ev) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.buf[t.total%uint64(len(t.buf))] = stored
	t.total++
	t.mu.Unlock()
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := uint64(len(t.buf)); t.total > n {
		return t.total - n
	}
	return 0
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.buf))
	start := uint64(0)
	if t.total > size {
		start = t.total - size
	}
	out := make([]Event, 0, t.total-start)
	for i := start; i < t.total; i++ {
		out = append(out, t.buf[i%size])
	}
	return out
}

// Dump writes the snapshot to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }
func (t *RingTracer) Close() error { return nil }

// MultiTracer forwards every event to several tracers.
type MultiTracer struct {
	gate
	tracers []Tracer
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{gate: gate{level}, tracers: tracers}
}

// Emit hands each tracer its own copy since tracers assign Seq.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}
