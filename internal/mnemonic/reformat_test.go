package mnemonic

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"mnemogen/internal/diag"
	"mnemogen/internal/trace"
)

func reformatString(t *testing.T, opts Options, input string) (string, Stats, error) {
	t.Helper()
	var out bytes.Buffer
	st, err := New(opts).Reformat(context.Background(), "opcodes.txt", strings.NewReader(input), &out)
	return out.String(), st, err
}

func TestReformatWellFormed(t *testing.T) {
	input := "LDA 0xA9 2 imm\n\nNOP 0xEA 1\n   \nBRK 0x00 2"
	want := "0xA9: Opcode{0xA9, 2, X, LDA, false},\n" +
		"0xEA: Opcode{0xEA, 1, X, NOP, false},\n" +
		"0x00: Opcode{0x00, 2, X, BRK, false},\n"

	got, st, err := reformatString(t, Options{}, input)
	if err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	if got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
	if st.Lines != 5 || st.Records != 3 || st.Skipped != 0 {
		t.Errorf("stats = %+v", st)
	}

	again, _, _ := reformatString(t, Options{}, input)
	if again != got {
		t.Error("second run produced different output")
	}
}

func TestReformatLongLine(t *testing.T) {
	tail := strings.Repeat("c", 2<<20)
	input := "LDA 0xA9 2 " + tail + "\r\nNOP 0xEA 1\n"
	want := "0xA9: Opcode{0xA9, 2, X, LDA, false},\n" +
		"0xEA: Opcode{0xEA, 1, X, NOP, false},\n"

	got, st, err := reformatString(t, Options{}, input)
	if err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if st.Records != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestReformatReadFailure(t *testing.T) {
	boom := errors.New("disk gone")
	src := io.MultiReader(strings.NewReader("NOP 0xEA 1\n"), iotest.ErrReader(boom))
	var out bytes.Buffer
	_, err := New(Options{}).Reformat(context.Background(), "in.txt", src, &out)
	if !errors.Is(err, boom) || !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("err = %v, want read failure", err)
	}
	if out.String() != "0xEA: Opcode{0xEA, 1, X, NOP, false},\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestReformatEmptyInput(t *testing.T) {
	got, st, err := reformatString(t, Options{}, "")
	if err != nil || got != "" || st.Records != 0 {
		t.Errorf("empty input: out=%q stats=%+v err=%v", got, st, err)
	}
}

func TestReformatMalformedStops(t *testing.T) {
	input := "LDA 0xA9 2\nBRK 0x00\nNOP 0xEA 1\n"
	got, st, err := reformatString(t, Options{}, input)

	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	var recErr *RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("err %T is not *RecordError", err)
	}
	if recErr.Line != 2 || recErr.Tokens != 2 || recErr.Path != "opcodes.txt" {
		t.Errorf("RecordError = %+v", recErr)
	}
	if got != "0xA9: Opcode{0xA9, 2, X, LDA, false},\n" {
		t.Errorf("output before failure = %q", got)
	}
	if st.Records != 1 {
		t.Errorf("Records = %d, want 1", st.Records)
	}
}

func TestReformatSkipPolicy(t *testing.T) {
	bag := diag.NewBag(10)
	opts := Options{Policy: PolicySkip, Reporter: diag.NewBagReporter(bag)}
	got, st, err := reformatString(t, opts, "LDA 0xA9 2\nBRK\nNOP 0xEA 1\n")
	if err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	if strings.Count(got, "\n") != 2 {
		t.Errorf("output = %q, want two lines", got)
	}
	if st.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", st.Skipped)
	}
	if bag.Len() != 1 {
		t.Fatalf("bag has %d items, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.RecSkipped || d.Severity != diag.SevWarning || d.Line != 2 {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestReformatJSON(t *testing.T) {
	got, _, err := reformatString(t, Options{Format: FormatJSON}, "NOP 0xEA 1\n")
	if err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	want := `{"line":1,"opcode":"NOP","name":"0xEA","value":"1"}` + "\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReformatNormalize(t *testing.T) {
	input := "x e\u0301 1\n"
	got, _, err := reformatString(t, Options{Normalize: true}, input)
	if err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	if !strings.HasPrefix(got, "\u00e9: ") {
		t.Errorf("token not normalized: %q", got)
	}

	raw, _, _ := reformatString(t, Options{}, input)
	if !strings.HasPrefix(raw, "e\u0301: ") {
		t.Errorf("token changed without Normalize: %q", raw)
	}
}

func TestReformatCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Reformat(ctx, "x", strings.NewReader("a b c\n"), io.Discard)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestReformatTracesRecords(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := New(Options{}).Reformat(ctx, "t.txt", strings.NewReader("a b c\nd e f\n"), io.Discard); err != nil {
		t.Fatalf("Reformat: %v", err)
	}
	var points int
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Scope == trace.ScopeRecord {
			points++
		}
	}
	if points != 2 {
		t.Errorf("got %d record events, want 2", points)
	}
}

func TestRunFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := New(Options{}).RunFile(context.Background(), path, io.Discard)
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want to wrap fs.ErrNotExist", err)
	}
}

func TestRunWritesStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opcodes.txt")
	if err := os.WriteFile(path, []byte("LDA 0xA9 2 imm\nNOP 0xEA 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	runErr := Run(path)
	os.Stdout = orig
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	want := "0xA9: Opcode{0xA9, 2, X, LDA, false},\n0xEA: Opcode{0xEA, 1, X, NOP, false},\n"
	if string(got) != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}
