package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// File describes one loaded unit file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Hash    [32]byte
}

// FileSet owns the unit files of one driver run. ID 0 is reserved for NoFileID.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: []File{{ID: NoFileID, Path: "<memory>"}},
		index: make(map[string]FileID),
	}
}

// Add stores content under path and returns a fresh FileID.
func (fs *FileSet) Add(path string, content []byte) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	clean := filepath.Clean(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    clean,
		Content: content,
		Hash:    sha256.Sum256(content),
	})
	fs.index[clean] = id
	return id
}

// Load reads path from disk and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}
	return fs.Add(path, content), nil
}

// Get returns the file for id, or nil when id is unknown.
func (fs *FileSet) Get(id FileID) *File {
	if fs == nil || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Path returns the stored path for id.
func (fs *FileSet) Path(id FileID) string {
	if f := fs.Get(id); f != nil {
		return f.Path
	}
	return "<unknown>"
}

// Lookup finds the latest FileID loaded for path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.Clean(path)]
	return id, ok
}

// Len counts stored files, the reserved slot included.
func (fs *FileSet) Len() int {
	return len(fs.files)
}
