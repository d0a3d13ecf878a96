package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/tender"
)

const selectUnprocessed = `
SELECT tender_id, source, title, description, deadline, estimated_value,
       organization, location, cable_type, voltage_class, estimated_length_km, document_url
FROM discovered_tenders
WHERE processed = false
ORDER BY discovered_at, id`

const markProcessed = `UPDATE discovered_tenders SET processed = true, updated_at = now() WHERE tender_id = ANY($1)`

// querier is the subset of *pgxpool.Pool the source uses.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres reads unprocessed rows of the discovered_tenders table filled by
// the crawlers.
type Postgres struct {
	db     querier
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := newPostgres(pool, logger)
	p.pool = pool
	return p, nil
}

func newPostgres(db querier, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: db, logger: logger}
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) Discover(ctx context.Context) (*tender.Tenders, error) {
	rows, err := p.db.Query(ctx, selectUnprocessed)
	if err != nil {
		return nil, fmt.Errorf("failed to query discovered tenders: %w", err)
	}
	defer rows.Close()

	var items []*tender.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discovered tender: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read discovered tenders: %w", err)
	}

	p.logger.Info("loaded unprocessed tenders", zap.String("source", KindPostgres), zap.Int("count", len(items)))
	return tender.NewTenders(items...), nil
}

// MarkProcessed flags tenders so the next discovery skips them.
func (p *Postgres) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := p.db.Exec(ctx, markProcessed, ids); err != nil {
		return fmt.Errorf("failed to mark tenders processed: %w", err)
	}
	return nil
}

func scanTender(row pgx.Row) (*tender.Tender, error) {
	var (
		id                                                      string
		source, title, description, org, location, cable, volts *string
		docURL                                                  *string
		deadline                                                *time.Time
		value, length                                           *float64
	)

	if err := row.Scan(&id, &source, &title, &description, &deadline, &value,
		&org, &location, &cable, &volts, &length, &docURL); err != nil {
		return nil, err
	}

	t := &tender.Tender{
		ID:           id,
		Source:       deref(source),
		Title:        deref(title),
		Description:  deref(description),
		Organization: deref(org),
		Location:     deref(location),
		CableType:    deref(cable),
		VoltageClass: deref(volts),
		DocumentURL:  deref(docURL),
		LengthKM:     length,
	}
	if t.Source == "" {
		t.Source = KindPostgres
	}
	if value != nil {
		t.EstimatedValue = *value
	}
	if deadline != nil {
		t.Deadline = deadline.Format(time.RFC3339)
	}
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
