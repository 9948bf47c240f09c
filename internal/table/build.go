package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mnemogen/internal/diag"
	"mnemogen/internal/mnemonic"
	"mnemogen/internal/trace"
)

// Header is the first line of every generated file.
const Header = "// Code generated by mnemogen; DO NOT EDIT."

// Build reformats every source concurrently and assembles one Go file with a
// map variable per source, in request order. Any malformed record fails the
// whole build.
func Build(ctx context.Context, req *Request) (Result, error) {
	if req == nil {
		return Result{}, fmt.Errorf("missing table request")
	}
	if err := validate(req); err != nil {
		return Result{}, err
	}
	progress := req.Progress
	if progress == nil {
		progress = NopSink{}
	}
	reporter := req.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}

	span, ctx := trace.BeginCtx(ctx, trace.ScopeCommand, "table:build")
	defer span.End("")

	for _, src := range req.Sources {
		progress.OnEvent(Event{Var: src.Var, Path: src.Path, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	bodies := make([]bytes.Buffer, len(req.Sources))
	results := make([]SourceResult, len(req.Sources))
	rf := mnemonic.New(mnemonic.Options{
		Template:  req.Template,
		Policy:    mnemonic.PolicyFail,
		Normalize: req.Normalize,
		Reporter:  reporter,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Sources)))
	for i, src := range req.Sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			progress.OnEvent(Event{Var: src.Var, Path: src.Path, Status: StatusWorking})
			start := time.Now()
			st, err := rf.RunFile(gctx, src.Path, &bodies[i])
			elapsed := time.Since(start)
			if err != nil {
				progress.OnEvent(Event{Var: src.Var, Path: src.Path, Status: StatusError, Err: err, Elapsed: elapsed})
				reportFailure(reporter, src, err)
				return fmt.Errorf("%s: %w", src.Var, err)
			}
			if st.Records == 0 {
				diag.ReportWarning(reporter, diag.ResEmpty, src.Path, 0,
					fmt.Sprintf("%s will be an empty map", src.Var))
			}
			results[i] = SourceResult{Source: src, Stats: st, Elapsed: elapsed}
			progress.OnEvent(Event{Var: src.Var, Path: src.Path, Status: StatusDone, Records: st.Records, Elapsed: elapsed})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	code, err := assemble(req, bodies)
	if err != nil {
		return Result{}, err
	}
	res := Result{Code: code, Sources: results}
	for _, r := range results {
		res.Records += int(r.Stats.Records)
	}
	span.WithExtra("records", fmt.Sprint(res.Records))
	return res, nil
}

// reportFailure records why src could not be read. Cancellation caused by
// another source failing is not reported.
func reportFailure(r diag.Reporter, src Source, err error) {
	var recErr *mnemonic.RecordError
	var srcErr *mnemonic.SourceError
	switch {
	case errors.As(err, &recErr):
		diag.ReportError(r, diag.RecMalformed, recErr.Path, recErr.Line,
			fmt.Sprintf("%s: record has %d token(s), need %d", src.Var, recErr.Tokens, mnemonic.MinTokens))
	case errors.As(err, &srcErr):
		diag.ReportError(r, diag.ResNotFound, srcErr.Path, 0,
			fmt.Sprintf("%s: cannot read input: %v", src.Var, srcErr.Err))
	}
}

func validate(req *Request) error {
	if len(req.Sources) == 0 {
		return ErrNoSources
	}
	pkg := req.Package
	if pkg == "" {
		pkg = "data"
		req.Package = pkg
	}
	if !token.IsIdentifier(pkg) {
		return fmt.Errorf("invalid package name %q", pkg)
	}
	seen := make(map[string]bool, len(req.Sources))
	for _, src := range req.Sources {
		if !token.IsIdentifier(src.Var) {
			return fmt.Errorf("%w: %q", ErrInvalidVar, src.Var)
		}
		if seen[src.Var] {
			return fmt.Errorf("%w: %s", ErrDuplicateVar, src.Var)
		}
		seen[src.Var] = true
	}
	return nil
}

func assemble(req *Request, bodies []bytes.Buffer) ([]byte, error) {
	typeName := req.Template.WithDefaults().TypeName

	var b bytes.Buffer
	b.WriteString(Header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "package %s\n", req.Package)
	for i, src := range req.Sources {
		fmt.Fprintf(&b, "\n// %s is generated from %s.\n", src.Var, filepath.Base(src.Path))
		if bodies[i].Len() == 0 {
			fmt.Fprintf(&b, "var %s = map[string]%s{}\n", src.Var, typeName)
			continue
		}
		fmt.Fprintf(&b, "var %s = map[string]%s{\n", src.Var, typeName)
		for _, line := range strings.SplitAfter(bodies[i].String(), "\n") {
			if line == "" {
				continue
			}
			b.WriteString("\t")
			b.WriteString(line)
		}
		b.WriteString("}\n")
	}

	code, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated table is not valid Go (are the mnemonics quoted?): %w", err)
	}
	return code, nil
}
