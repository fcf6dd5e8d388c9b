package diagfmt

import (
	"path/filepath"
	"strconv"

	"modgen/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode, baseDir string) string {
	if id == source.NoFileID || fs == nil {
		return "<memory>"
	}
	path := fs.Path(id)
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		base := baseDir
		if base == "" {
			base = "."
		}
		absBase, err1 := filepath.Abs(base)
		absPath, err2 := filepath.Abs(path)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absBase, absPath); err == nil {
				return rel
			}
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

// location renders "path:line:col" with the parts that are known.
func location(fs *source.FileSet, pos source.Pos, mode PathMode, baseDir string) string {
	loc := formatPath(fs, pos.File, mode, baseDir)
	if !pos.Known() {
		return loc
	}
	loc += ":" + strconv.FormatUint(uint64(pos.Line), 10)
	if pos.Col > 0 {
		loc += ":" + strconv.FormatUint(uint64(pos.Col), 10)
	}
	return loc
}
