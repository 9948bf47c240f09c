package table

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mnemogen/internal/dcache"
	"mnemogen/internal/mnemonic"
)

// Generated is the outcome of Generate.
type Generated struct {
	Output   string
	UpToDate bool // nothing was written
	Result   Result
}

// Generate builds req into output. With a cache, an output whose inputs,
// settings and on-disk content match the last run is left untouched.
func Generate(ctx context.Context, req *Request, output string, cache *dcache.Cache) (Generated, error) {
	if req == nil {
		return Generated{}, fmt.Errorf("missing table request")
	}
	if err := validate(req); err != nil {
		return Generated{}, err
	}
	gen := Generated{Output: output}

	var inputs []dcache.Input
	settings := settingsKey(req)
	if cache != nil {
		done := req.Timer.Track("cache:check")
		var err error
		inputs, err = digestInputs(req.Sources)
		fresh := false
		if err == nil {
			fresh, err = upToDate(cache, output, settings, inputs)
		}
		done(fmt.Sprintf("%d inputs, up to date: %t", len(req.Sources), fresh))
		if err != nil {
			return gen, err
		}
		if fresh {
			gen.UpToDate = true
			return gen, nil
		}
	}

	done := req.Timer.Track("build")
	res, err := Build(ctx, req)
	done(fmt.Sprintf("%d records", res.Records))
	if err != nil {
		return gen, err
	}
	gen.Result = res

	done = req.Timer.Track("write")
	err = writeAtomic(output, res.Code)
	done(fmt.Sprintf("%d bytes", len(res.Code)))
	if err != nil {
		return gen, err
	}
	if cache != nil {
		stored := req.Timer.Track("cache:store")
		defer stored("")
		entry := &dcache.Entry{
			Output:      output,
			Settings:    settings,
			Inputs:      inputs,
			OutputHash:  dcache.HashBytes(res.Code),
			Records:     res.Records,
			GeneratedAt: time.Now().UTC(),
		}
		if err := cache.Put(entry); err != nil {
			return gen, fmt.Errorf("update cache: %w", err)
		}
	}
	return gen, nil
}

func settingsKey(req *Request) string {
	tpl := req.Template.WithDefaults()
	return fmt.Sprintf("package=%s type=%s operands=%s flag=%s normalize=%t",
		req.Package, tpl.TypeName, tpl.Operands, tpl.SizeFlag, req.Normalize)
}

func digestInputs(sources []Source) ([]dcache.Input, error) {
	inputs := make([]dcache.Input, len(sources))
	for i, src := range sources {
		d, err := dcache.HashFile(src.Path)
		if err != nil {
			return nil, &mnemonic.SourceError{Path: src.Path, Err: err}
		}
		inputs[i] = dcache.Input{Var: src.Var, Path: src.Path, Digest: d}
	}
	return inputs, nil
}

func upToDate(cache *dcache.Cache, output, settings string, inputs []dcache.Input) (bool, error) {
	entry, ok, err := cache.Get(output)
	if err != nil || !ok || !entry.Matches(settings, inputs) {
		// a corrupt entry only costs a regeneration
		return false, nil
	}
	current, err := dcache.HashFile(output)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return current == entry.OutputHash, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".mnemogen-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
