package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Text writes doc as a listing, one declaration per line with the names
// padded to one column. Aggregate aliases are followed by their fields;
// unions list one accessor per member, all at offset 0.
func Text(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	signedness := "unsigned"
	if doc.CharSigned {
		signedness = "signed"
	}
	fmt.Fprintf(bw, "// unit %s (%s, char is %s)\n", doc.Unit, doc.Target, signedness)

	width := 0
	for _, d := range doc.Decls {
		width = max(width, runewidth.StringWidth(d.Name))
	}
	kindWidth := 0
	for _, d := range doc.Decls {
		kindWidth = max(kindWidth, len(keyword(d.Kind)))
	}

	for _, d := range doc.Decls {
		kw := runewidth.FillRight(keyword(d.Kind), kindWidth)
		name := runewidth.FillRight(d.Name, width)
		switch d.Kind {
		case "const", "enum-const":
			fmt.Fprintf(bw, "%s %s : %s = %s", kw, name, d.Type, d.Value)
			if d.Literal != "" && d.Literal != d.Value {
				fmt.Fprintf(bw, "  // %s", d.Literal)
			}
		case "var":
			fmt.Fprintf(bw, "%s %s : %s", kw, name, d.Type)
			if d.Linkage != "" {
				fmt.Fprintf(bw, "  %s", d.Linkage)
			}
			if d.ReadOnly {
				bw.WriteString("  readonly")
			}
			fmt.Fprintf(bw, "  size=%d align=%d", d.Size, d.Align)
		case "func":
			params := make([]string, len(d.Params))
			for i, p := range d.Params {
				params[i] = p.Name + ": " + p.Type
			}
			fmt.Fprintf(bw, "%s %s : fn(%s) -> %s", kw, name, strings.Join(params, ", "), d.Result)
			if d.Linkage != "" && d.Linkage != "extern" {
				fmt.Fprintf(bw, "  %s", d.Linkage)
			}
		case "alias":
			fmt.Fprintf(bw, "%s %s = %s  size=%d align=%d", kw, name, d.Type, d.Size, d.Align)
		default:
			fmt.Fprintf(bw, "%s %s : %s", kw, name, d.Type)
		}
		bw.WriteString("\n")
		writeFields(bw, d)
	}
	return bw.Flush()
}

func writeFields(bw *bufio.Writer, d DeclDoc) {
	if len(d.Fields) == 0 {
		return
	}
	label := "field"
	if d.Union {
		label = "accessor"
	}
	width := 0
	for _, f := range d.Fields {
		width = max(width, runewidth.StringWidth(f.Name))
	}
	for _, f := range d.Fields {
		fmt.Fprintf(bw, "    %s %s : %s @%d\n", label, runewidth.FillRight(f.Name, width), f.Type, f.Offset)
	}
}

func keyword(kind string) string {
	switch kind {
	case "const", "enum-const":
		return "const"
	case "alias":
		return "type"
	default:
		return kind
	}
}
