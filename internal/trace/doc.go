// Package trace is the logging layer of mnemogen.
//
// Events are spans (begin/end) and points, grouped by scope:
//
//   - ScopeCommand: one CLI command
//   - ScopeFile: one input table
//   - ScopeRecord: one input line
//
// Verbosity is a Level; LevelPhase keeps only command events, LevelDetail
// adds files and LevelDebug adds every record.
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, 0)
//	defer span.End("")
//
// Enable from the command line:
//
//	mnemogen reformat --trace=- --trace-level=detail opcodes.txt
package trace
