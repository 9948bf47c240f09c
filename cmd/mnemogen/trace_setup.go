package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemogen/internal/trace"
)

// activeTracer is the tracer installed for the running command.
var activeTracer trace.Tracer = trace.Nop

func registerTraceFlags(root *cobra.Command) {
	root.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	root.PersistentFlags().Int("trace-ring-size", 1024, "events kept in the trace ring")
}

// setupTracing reads the trace flags, installs the tracer in the command
// context and returns the func that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelDetail
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	// error level only makes sense as a crash buffer
	if level == trace.LevelError {
		mode = trace.ModeRing
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer

	span := trace.Begin(tracer, trace.ScopeCommand, "cmd:"+cmd.Name(), 0)
	ctx := trace.WithSpan(trace.WithTracer(cmd.Context(), tracer), span)
	cmd.SetContext(ctx)

	cleaned := false
	return func() {
		if cleaned {
			return
		}
		cleaned = true
		span.End("")
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
