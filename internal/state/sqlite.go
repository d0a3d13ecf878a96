package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rotation (
	position  INTEGER NOT NULL,
	tender_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS selection_audit (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp           TEXT NOT NULL,
	tender_id           TEXT NOT NULL,
	title               TEXT,
	organization        TEXT,
	estimated_value     REAL,
	deadline            TEXT,
	days_until_due      INTEGER,
	priority_score      REAL,
	qualification_score REAL,
	combined_score      REAL,
	cable_type          TEXT,
	voltage             TEXT,
	length_km           REAL,
	cores               TEXT,
	armoring            TEXT,
	conductor_material  TEXT,
	insulation_type     TEXT,
	standards           TEXT
);`

// SQLite stores rotation and audit data in a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LastSelected(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tender_id FROM rotation ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query rotation: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) SetLastSelected(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rotation`); err != nil {
		return fmt.Errorf("clear rotation: %w", err)
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rotation (position, tender_id) VALUES (?, ?)`, i, id); err != nil {
			return fmt.Errorf("insert rotation: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) AppendAudit(ctx context.Context, rec AuditRecord) error {
	var days sql.NullInt64
	if rec.DaysUntilDue != nil {
		days = sql.NullInt64{Int64: int64(*rec.DaysUntilDue), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO selection_audit (
	timestamp, tender_id, title, organization, estimated_value, deadline, days_until_due,
	priority_score, qualification_score, combined_score, cable_type, voltage, length_km,
	cores, armoring, conductor_material, insulation_type, standards
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"), rec.TenderID, rec.Title, rec.Organization,
		rec.EstimatedValue, rec.Deadline, days, rec.PriorityScore, rec.QualificationScore,
		rec.CombinedScore, rec.CableType, rec.Voltage, rec.LengthKM, rec.Cores, rec.Armoring,
		rec.ConductorMaterial, rec.InsulationType, strings.Join(rec.Standards, "; "),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// AuditCount returns the number of audit rows.
func (s *SQLite) AuditCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM selection_audit`).Scan(&n)
	return n, err
}
