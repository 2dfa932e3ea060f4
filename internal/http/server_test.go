package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

func newTestServer(t *testing.T, rateLimit int) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "bilancio.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	summaries := cache.NewLRUCache[core.MonthlySummary](16, time.Minute)
	srv := NewServer(":0", services.New(repo, summaries), Options{
		Logger:             quietLogger(),
		Pinger:             repo,
		SummaryCache:       summaries,
		RateLimitPerMinute: rateLimit,
	})
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createdID(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s, want 201", rr.Code, rr.Body.String())
	}
	var body IDBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.ID == "" {
		t.Fatalf("decode id from %q: %v", rr.Body.String(), err)
	}
	if loc := rr.Header().Get("Location"); !strings.HasSuffix(loc, body.ID) {
		t.Errorf("Location=%q does not end with id %s", loc, body.ID)
	}
	return body.ID
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t, 100)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("%s Content-Type=%q", path, ct)
		}
	}

	rr := do(t, srv, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rr.Code)
	}
	for _, name := range []string{"http_requests_total", "mutations_total", "summary_cache_hits_total", "rate_limit_hits_total"} {
		if !strings.Contains(rr.Body.String(), name) {
			t.Errorf("/metrics missing %s", name)
		}
	}
}

func TestResponsesCarryTraceAndSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, 100)
	rr := do(t, srv, http.MethodGet, "/api/categories", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty category list body=%q, want []", rr.Body.String())
	}
}

func TestMonthlySummaryScenario(t *testing.T) {
	srv := newTestServer(t, 100)

	market := createdID(t, do(t, srv, http.MethodPost, "/api/categories", `{"name":"Market","type":2}`))

	if rr := do(t, srv, http.MethodPut, "/api/income/monthly", `{"year":2025,"month":6,"amount":3000}`); rr.Code != http.StatusNoContent {
		t.Fatalf("upsert income status=%d body=%s", rr.Code, rr.Body.String())
	}
	createdID(t, do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":2,"amount":450.50,"year":2025,"month":6,"day":10,"categoryId":"`+market+`"}`))
	createdID(t, do(t, srv, http.MethodPost, "/api/goals/monthly/savings",
		`{"year":2025,"month":6,"amount":200,"description":"rainy day"}`))

	rr := do(t, srv, http.MethodGet, "/api/summary/monthly?year=2025&month=6", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d body=%s", rr.Code, rr.Body.String())
	}
	for _, want := range []string{
		`"income":3000.00`,
		`"expense":450.50`,
		`"invested":200.00`,
		`"balance":2349.50`,
		`"expensesByCategory":[{"category":"Market","total":450.50}]`,
	} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("summary body %s missing %s", rr.Body.String(), want)
		}
	}

	rr = do(t, srv, http.MethodGet, "/api/goals/monthly?year=2025&month=6", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("goal status=%d", rr.Code)
	}
	var goal goalDTO
	if err := json.Unmarshal(rr.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if goal.TargetAmount.Cents != 0 || goal.SavedAmount.Cents != 20000 || len(goal.Savings) != 1 {
		t.Errorf("goal = %+v", goal)
	}
	if _, err := time.Parse(time.RFC3339, goal.Savings[0].CreatedAtUTC); err != nil {
		t.Errorf("createdAtUtc %q is not RFC 3339: %v", goal.Savings[0].CreatedAtUTC, err)
	}
}

func TestTransactionAmountIsRoundedToCents(t *testing.T) {
	srv := newTestServer(t, 100)

	id := createdID(t, do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":1,"amount":10.005,"year":2025,"month":6,"day":1,"description":"refund"}`))

	rr := do(t, srv, http.MethodGet, "/api/transactions?year=2025&month=6", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"id":"`+id+`"`) || !strings.Contains(body, `"amount":10.01`) {
		t.Errorf("list body = %s, want amount 10.01", body)
	}
	if !strings.Contains(body, `"date":"2025-06-01"`) {
		t.Errorf("list body = %s, want date 2025-06-01", body)
	}
}

func TestTransactionUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t, 100)
	id := createdID(t, do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":1,"amount":"12.30","year":2025,"month":5,"day":3}`))

	rr := do(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"type":1,"amount":15,"year":2025,"month":5,"day":4,"description":"corrected"}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Body.Len() != 0 {
		t.Errorf("204 carried a body: %q", rr.Body.String())
	}

	body := do(t, srv, http.MethodGet, "/api/transactions", "").Body.String()
	if !strings.Contains(body, `"amount":15.00`) || !strings.Contains(body, `"description":"corrected"`) {
		t.Errorf("list after update = %s", body)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+id, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+id, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status=%d, want 404", rr.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t, 100)
	createdID(t, do(t, srv, http.MethodPost, "/api/categories", `{"name":"Rent","type":2}`))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/transactions", `{"type":`, http.StatusBadRequest},
		{"empty body", http.MethodPut, "/api/income/monthly", "", http.StatusBadRequest},
		{"trailing data", http.MethodPost, "/api/categories", `{"name":"A","type":1} {}`, http.StatusBadRequest},
		{"non-numeric amount", http.MethodPut, "/api/income/monthly", `{"year":2025,"month":1,"amount":"lots"}`, http.StatusBadRequest},
		{"huge exponent amount", http.MethodPut, "/api/income/monthly", `{"year":2025,"month":1,"amount":1e100000000}`, http.StatusBadRequest},
		{"tiny exponent amount", http.MethodPost, "/api/transactions", `{"type":1,"amount":1e-100000000,"year":2025,"month":1,"day":1}`, http.StatusBadRequest},
		{"invalid entry type", http.MethodPost, "/api/categories", `{"name":"Other","type":3}`, http.StatusBadRequest},
		{"duplicate category", http.MethodPost, "/api/categories", `{"name":"Rent","type":2}`, http.StatusBadRequest},
		{"month out of range", http.MethodGet, "/api/summary/monthly?year=2025&month=13", "", http.StatusBadRequest},
		{"missing year", http.MethodGet, "/api/income/monthly?month=1", "", http.StatusBadRequest},
		{"non-uuid id", http.MethodDelete, "/api/transactions/not-an-id", "", http.StatusNotFound},
		{"unknown category", http.MethodDelete, "/api/categories/6f1c1f3e-4f43-4b8e-9d0a-1c2b3d4e5f60", "", http.StatusNotFound},
		{"unknown saving", http.MethodPut, "/api/goals/monthly/savings/6f1c1f3e-4f43-4b8e-9d0a-1c2b3d4e5f60", `{"amount":1,"description":"x"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status=%d body=%s, want %d", rr.Code, rr.Body.String(), tt.want)
			}
			var body ErrorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("error body = %q", rr.Body.String())
			}
		})
	}
}

func TestCategoryDeleteCascadesToTransactions(t *testing.T) {
	srv := newTestServer(t, 100)
	cat := createdID(t, do(t, srv, http.MethodPost, "/api/categories", `{"name":"Travel","type":2}`))
	createdID(t, do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":2,"amount":80,"year":2025,"month":7,"day":2,"categoryId":"`+cat+`"}`))

	if rr := do(t, srv, http.MethodDelete, "/api/categories/"+cat, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete category status=%d body=%s", rr.Code, rr.Body.String())
	}

	body := do(t, srv, http.MethodGet, "/api/transactions?year=2025&month=7", "").Body.String()
	if strings.TrimSpace(body) != "[]" {
		t.Errorf("transactions after cascade = %s, want []", body)
	}
}

func TestBudgetUsage(t *testing.T) {
	srv := newTestServer(t, 100)
	food := createdID(t, do(t, srv, http.MethodPost, "/api/categories", `{"name":"Food","type":2}`))

	if rr := do(t, srv, http.MethodPut, "/api/budgets", `{"year":2025,"month":3,"categoryId":"`+food+`","amount":100}`); rr.Code != http.StatusNoContent {
		t.Fatalf("upsert budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	createdID(t, do(t, srv, http.MethodPost, "/api/transactions",
		`{"type":2,"amount":125,"year":2025,"month":3,"day":9,"categoryId":"`+food+`"}`))

	var usage []budgetUsageDTO
	rr := do(t, srv, http.MethodGet, "/api/budgets/usage?year=2025&month=3", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode usage %s: %v", rr.Body.String(), err)
	}
	if len(usage) != 1 || usage[0].Percent != 125 || !usage[0].Exceeded {
		t.Errorf("usage = %+v", usage)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPut, "/api/income/monthly", `{"year":2025,"month":1,"amount":10}`); rr.Code != http.StatusNoContent {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}

	rr := do(t, srv, http.MethodPut, "/api/income/monthly", `{"year":2025,"month":1,"amount":10}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	if rr := do(t, srv, http.MethodGet, "/api/income/monthly?year=2025&month=1", ""); rr.Code != http.StatusOK {
		t.Errorf("reads must not be limited, status=%d", rr.Code)
	}
}
