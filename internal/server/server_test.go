package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/tender-bid/internal/ai"
	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/discovery"
	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/policy"
	"github.com/spigell/tender-bid/internal/tender"
)

type stubEvaluator struct {
	mu   sync.Mutex
	seen []*tender.Tenders
}

func (e *stubEvaluator) Run(_ context.Context, candidates *tender.Tenders) *pipeline.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, candidates)
	rec := &pipeline.Record{RunID: "run-1", Status: pipeline.StatusSuccess, Recommendation: "BID"}
	if candidates.Len() > 0 {
		rec.SelectedRFP = &pipeline.SelectedRFP{TenderID: candidates.Items[0].ID}
	}
	return rec
}

type stubNarrator struct{}

func (stubNarrator) Narrate(_ context.Context, rec *pipeline.Record) (*ai.Brief, error) {
	return &ai.Brief{Headline: "Bid on " + rec.SelectedRFP.TenderID, Consistent: true}, nil
}

func setupRouter(opts Options) *Server {
	gin.SetMode(gin.TestMode)
	return New(opts, nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := setupRouter(Options{})
	w := do(t, s, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := setupRouter(Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestEvaluate(t *testing.T) {
	eval := &stubEvaluator{}
	var recorded []*pipeline.Record
	s := setupRouter(Options{
		Evaluator: eval,
		Narrator:  stubNarrator{},
		OnRecord:  func(r *pipeline.Record) { recorded = append(recorded, r) },
	})

	body := `{"tenders": [{"tender_id": "T-1", "title": "11kV cable", "estimated_value": "1500000"}, {"title": "no id"}]}`
	w := do(t, s, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec pipeline.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "BID", rec.Recommendation)
	assert.Equal(t, "Bid on T-1", rec.Brief)

	require.Len(t, eval.seen, 1)
	require.Equal(t, 1, eval.seen[0].Len())
	assert.Equal(t, discovery.KindAPI, eval.seen[0].Items[0].Source)
	assert.Equal(t, 1_500_000.0, eval.seen[0].Items[0].EstimatedValue)
	assert.Len(t, recorded, 1)
}

func TestEvaluateAcceptsArray(t *testing.T) {
	eval := &stubEvaluator{}
	s := setupRouter(Options{Evaluator: eval})

	w := do(t, s, http.MethodPost, "/api/v1/evaluate", `[{"tender_id": "T-2"}]`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, eval.seen, 1)
	assert.Equal(t, []string{"T-2"}, eval.seen[0].IDs())
}

func TestEvaluateErrors(t *testing.T) {
	w := do(t, setupRouter(Options{}), http.MethodPost, "/api/v1/evaluate", `[]`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, setupRouter(Options{Evaluator: &stubEvaluator{}}), http.MethodPost, "/api/v1/evaluate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid tenders payload")
}

func TestCatalogAndPolicy(t *testing.T) {
	p := policy.Default()
	s := setupRouter(Options{Catalog: catalog.New("builtin", catalog.Builtin()), Policy: p})

	w := do(t, s, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Source   string            `json:"source"`
		Products []catalog.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "builtin", body.Source)
	assert.Len(t, body.Products, len(catalog.Builtin()))

	w = do(t, s, http.MethodGet, "/api/v1/policy", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got policy.Policy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, p.Overheads, got.Overheads)

	w = do(t, setupRouter(Options{}), http.MethodGet, "/api/v1/catalog", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
