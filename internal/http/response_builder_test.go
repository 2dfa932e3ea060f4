package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	OK(map[string]int{"n": 1}).Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "{\"n\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_Created(t *testing.T) {
	w := httptest.NewRecorder()

	Created("/api/categories/abc", "abc").Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if loc := w.Header().Get("Location"); loc != "/api/categories/abc" {
		t.Errorf("Location = %q", loc)
	}
	if !strings.Contains(w.Body.String(), `"id":"abc"`) {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoContentHasNoBody(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent().Payload(map[string]string{"ignored": "yes"}).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *JSONResponseBuilder
		wantCode int
		wantBody string
	}{
		{"bad request", BadRequestError("amount must be positive"), http.StatusBadRequest, `{"error":"amount must be positive"}`},
		{"not found", NotFoundError("saving not found"), http.StatusNotFound, `{"error":"saving not found"}`},
		{"internal", InternalServerError(), http.StatusInternalServerError, `{"error":"internal server error"}`},
		{"too many", TooManyRequestsError(), http.StatusTooManyRequests, `"error":"rate limit exceeded`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("Body = %q, want it to contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestJSONResponseBuilder_UnencodablePayload(t *testing.T) {
	w := httptest.NewRecorder()

	OK(make(chan int)).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
