package mnemonic

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"mnemogen/internal/diag"
	"mnemogen/internal/trace"
)

// Options configure a Reformatter. The zero value is the default contract:
// literal output, default template, stop at the first malformed record.
type Options struct {
	Template  Template
	Policy    Policy
	Format    Format
	Normalize bool          // NFC-normalize tokens before formatting
	Reporter  diag.Reporter // receives a warning per skipped record
}

// Stats summarises one pass.
type Stats struct {
	Lines   uint32 // lines read, blank ones included
	Records uint32 // lines written
	Skipped uint32 // malformed lines dropped under PolicySkip
}

// Reformatter turns record tables into output lines.
type Reformatter struct {
	opts Options
}

// New returns a Reformatter; empty template fields take their defaults.
func New(opts Options) *Reformatter {
	opts.Template = opts.Template.WithDefaults()
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return &Reformatter{opts: opts}
}

// Run reformats the table at path to standard output with the default
// options.
func Run(path string) error {
	_, err := New(Options{}).RunFile(context.Background(), path, os.Stdout)
	return err
}

// RunFile opens path and reformats it into w.
func (r *Reformatter) RunFile(ctx context.Context, path string, w io.Writer) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, &SourceError{Path: path, Err: err}
	}
	defer f.Close()
	return r.Reformat(ctx, path, f, w)
}

// Reformat reads records from src and writes one line per record to w as
// soon as it is formatted. name labels errors and diagnostics.
//
// Blank lines are not records and produce nothing. Under PolicyFail the
// first malformed record ends the pass with a *RecordError; lines before it
// have already been written.
func (r *Reformatter) Reformat(ctx context.Context, name string, src io.Reader, w io.Writer) (Stats, error) {
	span, ctx := trace.BeginCtx(ctx, trace.ScopeFile, "file:"+name)
	p := &pass{name: name, w: w, tracer: trace.FromContext(ctx), parent: span.ID()}
	p.recordTrace = p.tracer.Enabled() && p.tracer.Level().ShouldEmit(trace.ScopeRecord)
	defer func() {
		span.WithExtra("lines", strconv.FormatUint(uint64(p.st.Lines), 10)).
			WithExtra("records", strconv.FormatUint(uint64(p.st.Records), 10)).
			WithExtra("skipped", strconv.FormatUint(uint64(p.st.Skipped), 10)).
			End("")
	}()

	// lines of any length
	br := bufio.NewReader(src)
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return p.st, err
		}
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return p.st, &SourceError{Path: name, Err: readErr}
		}
		if line == "" && readErr == io.EOF {
			break
		}
		lineNo++
		p.st.Lines++
		if err := r.line(p, line, lineNo); err != nil {
			return p.st, err
		}
		if readErr == io.EOF {
			break
		}
	}
	return p.st, nil
}

// pass is the state of one Reformat call.
type pass struct {
	name        string
	w           io.Writer
	st          Stats
	tracer      trace.Tracer
	recordTrace bool
	parent      uint64
}

// line handles one raw input line, trailing newline included.
func (r *Reformatter) line(p *pass, line string, lineNo int) error {
	rec, ok := Split(line, lineNo)
	if !ok {
		return nil
	}
	if !rec.Valid() {
		if r.opts.Policy == PolicySkip {
			p.st.Skipped++
			diag.ReportWarning(r.opts.Reporter, diag.RecSkipped, p.name, rec.Line,
				fmt.Sprintf("skipped record with %d token(s), need %d", len(rec.Tokens), MinTokens))
			return nil
		}
		return &RecordError{Path: p.name, Line: rec.Line, Tokens: len(rec.Tokens)}
	}
	if r.opts.Normalize {
		for i, tok := range rec.Tokens {
			rec.Tokens[i] = norm.NFC.String(tok)
		}
	}

	out, err := r.render(rec)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(p.w, out+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	p.st.Records++
	if p.recordTrace {
		trace.Point(p.tracer, trace.ScopeRecord, "record", rec.String(), p.parent)
	}
	return nil
}

func (r *Reformatter) render(rec Record) (string, error) {
	if r.opts.Format == FormatJSON {
		return formatJSON(rec)
	}
	return r.opts.Template.Format(rec), nil
}
