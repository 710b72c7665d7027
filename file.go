package syncboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jpalmerr/syncboard/table"
)

const (
	shortHashLen = 10
	ellipsis     = "..."

	// unknownChunks is shown when a record carries no chunk list at all.
	unknownChunks = "?"
)

// FileColumns are the headers of the file table, in cell order.
var FileColumns = []string{"Path", "Size", "Hash", "Chunks"}

// FileRecord is the metadata of one tracked file as reported by GET /metadata.
//
// Chunks is nil when the key is missing or null, and non-nil (possibly empty)
// when the node sent a list. The descriptors themselves are opaque.
type FileRecord struct {
	Path   string            `json:"path"`
	Size   int64             `json:"size"`
	Hash   string            `json:"hash"`
	Chunks []json.RawMessage `json:"chunks"`
}

// ShortHash returns the first 10 characters of the hash followed by "...".
// Shorter hashes are shown in full, still followed by "...".
func (f FileRecord) ShortHash() string {
	runes := []rune(f.Hash)
	if len(runes) > shortHashLen {
		runes = runes[:shortHashLen]
	}
	return string(runes) + ellipsis
}

// ChunkCount returns "?" when the record has no chunk list and the number of
// descriptors otherwise.
func (f FileRecord) ChunkCount() string {
	if f.Chunks == nil {
		return unknownChunks
	}
	return strconv.Itoa(len(f.Chunks))
}

// FileRow renders a file record as path | size | short hash | chunk count.
func FileRow(f FileRecord) table.Row {
	return table.NewRow(
		table.Text(f.Path),
		table.Text(strconv.FormatInt(f.Size, 10)),
		table.Text(f.ShortHash()),
		table.Text(f.ChunkCount()),
	)
}

var errNotFileArray = errors.New("expected a JSON array of file records")

// DecodeFiles parses a /metadata body.
//
// An empty body or a JSON falsy value (null, false, 0, "") means the node
// tracks no files and yields zero records without error. Any other non-array
// value is an error, as is a null element or a negative size.
func DecodeFiles(body []byte) ([]FileRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []FileRecord{}, nil
	}

	if trimmed[0] != '[' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
		if isFalsy(v) {
			return []FileRecord{}, nil
		}
		return nil, errNotFileArray
	}

	files, err := decodeObjects[FileRecord](trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	for i, f := range files {
		if f.Size < 0 {
			return nil, fmt.Errorf("decode files: element %d has negative size %d", i, f.Size)
		}
	}
	return files, nil
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}
