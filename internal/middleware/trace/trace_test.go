package trace

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bilancio/internal/log"

	"github.com/google/uuid"
)

func TestMiddleware_AssignsRequestIDAndCounts(t *testing.T) {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	m := NewMiddleware(log.New(cfg), func(*http.Request) string { return "127.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("request id %q is not a UUID: %v", seen, err)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}

	for _, path := range []string{"/missing", "/boom", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 4 || got.ClientErrors != 2 || got.ServerErrors != 1 {
		t.Errorf("GetMetrics() = %+v", got)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestID(r); got != "" {
		t.Errorf("RequestID() = %q, want empty", got)
	}
}
