package diagfmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"modgen/internal/diag"
	"modgen/internal/source"
)

// Pretty writes diagnostics in a human-readable form, walking bag.Items()
// (sort the bag first). Each diagnostic is printed as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message> [subject]
//
// followed, when the unit file is known, by the offending line and a caret
// under the column, then the notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	bw := bufio.NewWriter(w)
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(fs, d.Pos, opts.PathMode, opts.BaseDir)
		fmt.Fprintf(bw, "%s: %s %s: %s", p.loc(loc), p.severity(d.Severity), p.code(d.Code.ID()), d.Message)
		if d.Subject != "" && !strings.Contains(d.Message, d.Subject) {
			fmt.Fprintf(bw, " [%s]", d.Subject)
		}
		bw.WriteString("\n")
		if opts.Context {
			writeContext(bw, fs, d.Pos, p)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(bw, "  %s %s: %s\n", p.note("note:"), location(fs, n.Pos, opts.PathMode, opts.BaseDir), n.Msg)
			}
		}
	}
	return bw.Flush()
}

func writeContext(bw *bufio.Writer, fs *source.FileSet, pos source.Pos, p palette) {
	if !pos.Known() {
		return
	}
	f := fs.Get(pos.File)
	if f == nil || pos.File == source.NoFileID {
		return
	}
	line, ok := lineText(f.Content, pos.Line)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%5d | ", pos.Line)
	bw.WriteString(gutter + line + "\n")
	col := 0
	if pos.Col > 1 {
		prefix := line
		if int(pos.Col-1) < len(line) {
			prefix = line[:pos.Col-1]
		}
		col = runewidth.StringWidth(prefix)
	}
	fmt.Fprintf(bw, "%s| %s%s\n", strings.Repeat(" ", len(gutter)-2), strings.Repeat(" ", col), p.caret("^"))
}

func lineText(content []byte, line uint32) (string, bool) {
	for n := uint32(1); ; n++ {
		end := bytes.IndexByte(content, '\n')
		if n == line {
			if end < 0 {
				end = len(content)
			}
			return strings.TrimRight(string(content[:end]), "\r"), true
		}
		if end < 0 {
			return "", false
		}
		content = content[end+1:]
	}
}

type palette struct {
	enabled bool
	err     *color.Color
	warn    *color.Color
	info    *color.Color
	bold    *color.Color
	cyan    *color.Color
	green   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		enabled: enabled,
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgBlue, color.Bold),
		bold:    color.New(color.Bold),
		cyan:    color.New(color.FgCyan),
		green:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.bold, p.cyan, p.green} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err.Sprint(s.String())
	case diag.SevWarning:
		return p.warn.Sprint(s.String())
	default:
		return p.info.Sprint(s.String())
	}
}

func (p palette) loc(s string) string   { return p.bold.Sprint(s) }
func (p palette) code(s string) string  { return p.cyan.Sprint(s) }
func (p palette) note(s string) string  { return p.info.Sprint(s) }
func (p palette) caret(s string) string { return p.green.Sprint(s) }
