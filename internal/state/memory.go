package state

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process store used by tests and the HTTP server when no
// persistence is configured.
type Memory struct {
	mu       sync.Mutex
	selected []string
	audit    []AuditRecord
}

func NewMemory(selected ...string) *Memory {
	return &Memory{selected: slices.Clone(selected)}
}

func (m *Memory) LastSelected(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.selected), nil
}

func (m *Memory) SetLastSelected(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = slices.Clone(ids)
	return nil
}

func (m *Memory) AppendAudit(_ context.Context, rec AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, rec)
	return nil
}

// Audit returns the recorded audit rows.
func (m *Memory) Audit() []AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.audit)
}
