package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spigell/tender-bid/internal/tender"
)

// File reads tenders from a JSON file holding an array or {"tenders": [...]}.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Discover(_ context.Context) (*tender.Tenders, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read tenders file: %w", err)
	}

	out, err := Parse(data, KindFile)
	if err != nil {
		return nil, fmt.Errorf("parse tenders file %s: %w", f.Path, err)
	}
	return out, nil
}

// Parse decodes a JSON array of tenders or an object with a "tenders" array.
// Items without an id are dropped; source fills in a missing source field.
func Parse(data []byte, source string) (*tender.Tenders, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if obj, ok := raw.(map[string]any); ok {
		raw = obj["tenders"]
	}
	if raw == nil {
		return tender.NewTenders(), nil
	}

	return decodeTenders(raw, source)
}
