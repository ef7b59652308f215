package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
	"github.com/kailas-cloud/angelsearch/internal/index"
	logpkg "github.com/kailas-cloud/angelsearch/internal/logger"
	"github.com/kailas-cloud/angelsearch/internal/repository/store"
	healthuc "github.com/kailas-cloud/angelsearch/internal/usecase/health"
	rerankuc "github.com/kailas-cloud/angelsearch/internal/usecase/rerank"
	searchuc "github.com/kailas-cloud/angelsearch/internal/usecase/search"
)

// --- Fixtures ---

// stubIndex returns every row in position order.
type stubIndex struct {
	total int
}

func (s *stubIndex) Len() int { return s.total }

func (s *stubIndex) Search(_ context.Context, _ string, k int) ([]index.Hit, error) {
	if k > s.total {
		k = s.total
	}
	hits := make([]index.Hit, k)
	for i := range hits {
		hits[i] = index.Hit{Row: i, Distance: float32(i)}
	}
	return hits, nil
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	raw := `[
		{"name":"A","personal_info":{"location":"Tallinn, Estonia"},
		 "investment_profile":{"is_investor":true,"sectors_of_interest":["FinTech"]}},
		{"name":"B","investment_profile":{"is_investor":false}},
		{"name":"C","investment_profile":{"is_investor":true,"sectors_of_interest":["HealthTech"]}}
	]`
	var records []profile.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return store.New(records)
}

func newTestRouter(t *testing.T, profiles *store.Store, total int) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	ix := &stubIndex{total: total}
	reranker := rerankuc.New(nil, 0, logger) // no oracle: pass-through order
	searchSvc := searchuc.New(profiles, ix, reranker, logger)
	healthSvc := healthuc.New(profiles, ix)

	server := NewServer(searchSvc, profiles, healthSvc, logger)
	r := chi.NewRouter()
	server.Routes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSearch(t *testing.T, w *httptest.ResponseRecorder) searchResponse {
	t.Helper()
	var resp searchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestSearchPost(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodPost, "/search",
		`{"query":"fintech investor","max_results":2,"filters":{"is_investor":true}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := decodeSearch(t, w)
	if resp.TotalFound != 2 {
		t.Errorf("total_found = %d, want 2", resp.TotalFound)
	}
	if resp.Query != "fintech investor" {
		t.Errorf("query = %q", resp.Query)
	}
	if resp.Results[0].Name != "A" || resp.Results[1].Name != "C" {
		t.Errorf("order = [%s, %s]", resp.Results[0].Name, resp.Results[1].Name)
	}
}

func TestSearchPost_EmptyQuery(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodPost, "/search", `{"query":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchPost_InvalidBody(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodPost, "/search", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchPost_UnreadyIndex(t *testing.T) {
	h := newTestRouter(t, testStore(t), 0)

	w := doRequest(t, h, http.MethodPost, "/search", `{"query":"q"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSearchPost_EmptyStore(t *testing.T) {
	h := newTestRouter(t, store.New(nil), 3)

	w := doRequest(t, h, http.MethodPost, "/search", `{"query":"q"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSearchGet_FilterAssembly(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodGet,
		"/search?query=angels&max_results=5&is_investor=true&sectors=fintech,ai", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := decodeSearch(t, w)
	if resp.TotalFound != 1 || resp.Results[0].Name != "A" {
		t.Errorf("expected only A (investor + fintech), got %+v", resp)
	}
}

func TestSearchGet_LocationFilter(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodGet, "/search?query=angels&location=tallinn", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeSearch(t, w)
	if resp.TotalFound != 1 || resp.Results[0].Name != "A" {
		t.Errorf("expected only A, got %+v", resp)
	}
}

func TestSearchGet_BadParams(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	for _, target := range []string{
		"/search?query=q&max_results=abc",
		"/search?query=q&is_investor=maybe",
		"/search?max_results=5", // missing query
	} {
		if w := doRequest(t, h, http.MethodGet, target, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestGetProfile(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodGet, "/profiles/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rec map[string]any
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["name"] != "B" {
		t.Errorf("name = %v", rec["name"])
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	if w := doRequest(t, h, http.MethodGet, "/profiles/42", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := doRequest(t, h, http.MethodGet, "/profiles/abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for non-integer id", w.Code)
	}
}

func TestListProfiles(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodGet, "/profiles?skip=2&limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp profilesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Profiles) != 1 || resp.Total != 3 || resp.Skip != 2 {
		t.Errorf("resp = %+v", resp)
	}

	// Out-of-range skip yields an empty page, not an error.
	w = doRequest(t, h, http.MethodGet, "/profiles?skip=5&limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Profiles) != 0 {
		t.Errorf("expected empty page, got %d", len(resp.Profiles))
	}
}

func TestListProfiles_BadParams(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	for _, target := range []string{
		"/profiles?skip=-1",
		"/profiles?limit=0",
		"/profiles?limit=101",
	} {
		if w := doRequest(t, h, http.MethodGet, target, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	ready := newTestRouter(t, testStore(t), 3)
	if w := doRequest(t, ready, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("ready status = %d", w.Code)
	}

	unready := newTestRouter(t, testStore(t), 0)
	if w := doRequest(t, unready, http.MethodGet, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unready status = %d", w.Code)
	}
}

func TestDomainError_UsesRequestLogger(t *testing.T) {
	core, observed := observer.New(zap.WarnLevel)
	reqLogger := zap.New(core)

	inner := newTestRouter(t, testStore(t), 3)
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
		inner.ServeHTTP(w, r.WithContext(ctx))
	})

	w := doRequest(t, h, http.MethodPost, "/search", `{"query":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	entries := observed.FilterMessage("domain error").All()
	if len(entries) != 1 {
		t.Fatalf("domain error entries = %d, want 1", len(entries))
	}
}

func TestRoot(t *testing.T) {
	h := newTestRouter(t, testStore(t), 3)

	w := doRequest(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["profiles_loaded"] != float64(3) {
		t.Errorf("profiles_loaded = %v", resp["profiles_loaded"])
	}
}
