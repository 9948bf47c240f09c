package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// Span tracks one begin/end pair. A Span from a disabled tracer is inert.
type Span struct {
	tracer  Tracer
	ev      Event // prototype shared by the begin and end events
	started time.Time
}

func active(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Begin emits a begin event for name under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !active(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		ev: Event{
			Scope:    scope,
			SpanID:   spanIDs.Add(1),
			ParentID: parent,
			Name:     name,
		},
	}
	begin := s.ev
	begin.Time, begin.Kind = s.started, KindSpanBegin
	t.Emit(&begin)
	return s
}

// BeginCtx begins a span with the tracer and parent span found in ctx and
// returns a context carrying the new span.
func BeginCtx(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	s := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx))
	return s, WithSpan(ctx, s)
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	end := s.ev
	end.Time, end.Kind, end.Detail = time.Now(), KindSpanEnd, detail
	s.tracer.Emit(&end)
	return end.Time.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.ev.Extra == nil {
		s.ev.Extra = make(map[string]string)
	}
	s.ev.Extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ev.SpanID
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !active(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
