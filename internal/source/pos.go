package source

import "fmt"

// FileID identifies a unit file inside a FileSet.
type FileID uint32

// NoFileID marks entries synthesized in memory (tests, the classify command).
const NoFileID FileID = 0

// Pos is the location the front end reported for a macro or declaration.
// Line and Col are 1-based; the zero Pos means "unknown".
type Pos struct {
	File FileID
	Line uint32
	Col  uint32
}

// Known reports whether the position carries line information.
func (p Pos) Known() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.Known() {
		return fmt.Sprintf("%d:?", p.File)
	}
	if p.Col == 0 {
		return fmt.Sprintf("%d:%d", p.File, p.Line)
	}
	return fmt.Sprintf("%d:%d:%d", p.File, p.Line, p.Col)
}

// Before orders positions by file, then line, then column.
func (p Pos) Before(other Pos) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
