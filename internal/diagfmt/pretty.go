package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"mnemogen/internal/diag"
)

// Pretty writes one line per diagnostic:
//
//	<path>:<line>: <SEV> <CODE>: <Message>
//
// Items are printed in bag order; call bag.Sort() first for stable output.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	sevColors := map[diag.Severity]*color.Color{
		diag.SevInfo:    color.New(color.FgCyan),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevError:   color.New(color.FgRed, color.Bold),
	}
	locColor := color.New(color.Bold)
	for _, c := range sevColors {
		setColor(c, opts.Color)
	}
	setColor(locColor, opts.Color)

	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	for _, d := range items {
		d.Path = displayPath(d.Path, opts)
		loc := d.Location()
		if loc != "" {
			loc = locColor.Sprint(loc) + ": "
		}
		sev := sevColors[d.Severity]
		if sev == nil {
			sev = sevColors[diag.SevError]
		}
		if _, err := fmt.Fprintf(w, "%s%s %s: %s\n", loc, sev.Sprint(d.Severity), d.Code.ID(), d.Message); err != nil {
			return err
		}
	}
	if hidden := bag.Len() - len(items); hidden > 0 {
		if _, err := fmt.Fprintf(w, "... and %d more\n", hidden); err != nil {
			return err
		}
	}
	return nil
}

func setColor(c *color.Color, on bool) {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

func displayPath(path string, opts PrettyOpts) string {
	if path == "" {
		return ""
	}
	switch opts.PathMode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		base := opts.BaseDir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return path
			}
			base = wd
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		if rel, err := filepath.Rel(base, abs); err == nil {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}
