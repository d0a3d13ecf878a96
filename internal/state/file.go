package state

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type rotationFile struct {
	LastSelectedIDs []string `json:"last_selected_ids"`
}

// File keeps the rotation record as JSON and the audit trail as CSV. A single
// mutex serializes read-then-write sequences within the process.
type File struct {
	mu           sync.Mutex
	rotationPath string
	auditPath    string
}

func NewFile(rotationPath, auditPath string) *File {
	return &File{rotationPath: rotationPath, auditPath: auditPath}
}

// LastSelected returns nil when the rotation file does not exist or is empty.
func (f *File) LastSelected(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.rotationPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rotation file: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var rec rotationFile
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode rotation file: %w", err)
	}
	return rec.LastSelectedIDs, nil
}

// SetLastSelected replaces the rotation record.
func (f *File) SetLastSelected(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ids == nil {
		ids = []string{}
	}
	raw, err := json.MarshalIndent(rotationFile{LastSelectedIDs: ids}, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureDir(f.rotationPath); err != nil {
		return err
	}
	if err := os.WriteFile(f.rotationPath, raw, 0o644); err != nil {
		return fmt.Errorf("write rotation file: %w", err)
	}
	return nil
}

// AppendAudit appends one row, writing the header first when the file is new.
func (f *File) AppendAudit(_ context.Context, rec AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ensureDir(f.auditPath); err != nil {
		return err
	}

	file, err := os.OpenFile(f.auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := w.Write(AuditHeader); err != nil {
			return err
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
