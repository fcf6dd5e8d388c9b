package emit

import (
	"encoding/json"
	"io"
)

// JSON writes documents as one indented JSON array.
func JSON(w io.Writer, docs []Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
