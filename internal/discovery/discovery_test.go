package discovery

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAcceptsArrayAndObject(t *testing.T) {
	dir := t.TempDir()
	array := filepath.Join(dir, "array.json")
	require.NoError(t, os.WriteFile(array, []byte(`[
		{"tender_id": "T-1", "title": "11kV XLPE", "estimated_value": 1200000, "length_km": 5,
		 "scope_of_supply": [{"item_no": 1, "description": "cable", "quantity": 5, "unit": "km"}]},
		{"title": "no id is skipped"}
	]`), 0o600))
	object := filepath.Join(dir, "object.json")
	require.NoError(t, os.WriteFile(object, []byte(`{"tenders": [{"tender_id": "T-2", "source": "GeM", "estimated_value": "900"}]}`), 0o600))

	got, err := NewFile(array).Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	first := got.Items[0]
	assert.Equal(t, "T-1", first.ID)
	assert.Equal(t, KindFile, first.Source)
	assert.Equal(t, 1_200_000.0, first.EstimatedValue)
	require.NotNil(t, first.LengthKM)
	assert.Equal(t, 5.0, *first.LengthKM)
	require.Len(t, first.Scope, 1)
	assert.Equal(t, 5.0, first.Scope[0].Quantity)

	got, err = NewFile(object).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"T-2"}, got.IDs())
	assert.Equal(t, "GeM", got.Items[0].Source)
	assert.Equal(t, 900.0, got.Items[0].EstimatedValue)
}

func TestFileErrors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.json")).Discover(context.Background())
	assert.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`[{`), 0o600))
	_, err = NewFile(broken).Discover(context.Background())
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0o600))
	got, err := NewFile(empty).Discover(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestPortalFollowsPages(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "cable", r.URL.Query().Get("text"))

		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		resp := map[string]any{"pages": 2, "found": 2, "per_page": 100}
		switch page {
		case "":
			resp["page"] = 0
			resp["items"] = []map[string]any{{"tender_id": "P-1", "title": "first"}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			resp["page"] = 1
			resp["items"] = []map[string]any{{"tender_id": "P-2", "title": "second"}}
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			require.NoError(t, json.NewEncoder(gz).Encode(resp))
			require.NoError(t, gz.Close())
		}
	}))
	defer srv.Close()

	p := NewPortal(srv.URL, "/tenders", "secret", nil)
	p.Query.Set("text", "cable")

	got, err := p.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"P-1", "P-2"}, got.IDs())
	assert.Equal(t, KindPortal, got.Items[1].Source)
	assert.Equal(t, []string{"", "1"}, pages)
}

func TestPortalBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPortal(srv.URL, "/", "", nil).Discover(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad status")
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("want %d columns, got %d", len(dest), len(row))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = row[i].(string)
		case **string:
			if row[i] != nil {
				v := row[i].(string)
				*d = &v
			}
		case **float64:
			if row[i] != nil {
				v := row[i].(float64)
				*d = &v
			}
		case **time.Time:
			if row[i] != nil {
				v := row[i].(time.Time)
				*d = &v
			}
		default:
			return fmt.Errorf("unexpected destination %T", d)
		}
	}
	return nil
}

type fakeDB struct {
	rows     *fakeRows
	execArgs []any
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return f.rows, nil
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	f.execArgs = args
	return pgconn.CommandTag{}, nil
}

func TestPostgresDiscover(t *testing.T) {
	deadline := time.Date(2025, 7, 1, 17, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		{"PG-1", "GeM", "11kV XLPE cable", nil, deadline, 2_500_000.0, "NTPC", nil, "XLPE", "11 kV", 12.0, nil},
		{"PG-2", nil, "Control cable", "LV cable", nil, nil, nil, nil, nil, nil, nil, nil},
	}}}

	p := newPostgres(db, nil)
	got, err := p.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	first := got.Items[0]
	assert.Equal(t, "GeM", first.Source)
	assert.Equal(t, "2025-07-01T17:00:00Z", first.Deadline)
	assert.Equal(t, 2_500_000.0, first.EstimatedValue)
	require.NotNil(t, first.LengthKM)
	assert.Equal(t, 12.0, *first.LengthKM)

	second := got.Items[1]
	assert.Equal(t, KindPostgres, second.Source)
	assert.Empty(t, second.Deadline)
	assert.Nil(t, second.LengthKM)

	require.NoError(t, p.MarkProcessed(context.Background(), []string{"PG-1"}))
	assert.Equal(t, []any{[]string{"PG-1"}}, db.execArgs)
	require.NoError(t, p.MarkProcessed(context.Background(), nil))
}

func TestSampleIsDeterministic(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	a := NewSample(5, 42, now).Generate()
	b := NewSample(5, 42, now).Generate()
	require.Len(t, a, 5)
	assert.Equal(t, a, b)

	for _, tn := range a {
		assert.Equal(t, KindSample, tn.Source)
		assert.NotEmpty(t, tn.VoltageClass)
		assert.Positive(t, tn.EstimatedValue)
		require.NotNil(t, tn.LengthKM)
	}
	assert.Equal(t, "SAMPLE-20250601-001", a[0].ID)
}
