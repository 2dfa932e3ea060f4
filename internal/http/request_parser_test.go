package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bilancio/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    MonthParams
		wantErr bool
	}{
		{"both present", url.Values{"year": {"2025"}, "month": {"6"}}, MonthParams{Year: 2025, Month: 6}, false},
		{"surrounding spaces", url.Values{"year": {" 2025 "}, "month": {"12"}}, MonthParams{Year: 2025, Month: 12}, false},
		{"month out of range is left to services", url.Values{"year": {"2025"}, "month": {"13"}}, MonthParams{Year: 2025, Month: 13}, false},
		{"missing year", url.Values{"month": {"6"}}, MonthParams{}, true},
		{"missing month", url.Values{"year": {"2025"}}, MonthParams{}, true},
		{"non-numeric", url.Values{"year": {"twenty"}, "month": {"6"}}, MonthParams{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query)
			if tt.wantErr {
				if !core.IsValidation(err) {
					t.Fatalf("ParseMonthParams() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthParams() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseMonthParams() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseOptionalMonthParams(t *testing.T) {
	year, month, err := ParseOptionalMonthParams(url.Values{})
	if err != nil || year != nil || month != nil {
		t.Errorf("empty query = (%v, %v, %v), want all nil", year, month, err)
	}

	year, month, err = ParseOptionalMonthParams(url.Values{"year": {"2024"}})
	if err != nil || year == nil || *year != 2024 || month != nil {
		t.Errorf("year only = (%v, %v, %v)", year, month, err)
	}

	if _, _, err := ParseOptionalMonthParams(url.Values{"month": {"x"}}); !core.IsValidation(err) {
		t.Errorf("bad month error = %v, want validation error", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"year":2025,"month":1,"amount":12.5}`, false},
		{"amount as string", `{"year":2025,"month":1,"amount":"12.50"}`, false},
		{"empty", ``, true},
		{"malformed", `{"year":`, true},
		{"wrong field type", `{"year":"2025"}`, true},
		{"trailing object", `{"year":2025} {"year":2026}`, true},
		{"invalid amount", `{"amount":"abc"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPut, "/api/income/monthly", strings.NewReader(tt.body))
			var dst upsertIncomeRequest
			err := decodeJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr {
				if !core.IsValidation(err) {
					t.Errorf("decodeJSON() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Errorf("decodeJSON() error = %v", err)
			}
		})
	}
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	body := `{"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/api/goals/monthly/savings", strings.NewReader(body))

	var dst addSavingRequest
	if err := decodeJSON(httptest.NewRecorder(), r, &dst); !core.IsValidation(err) {
		t.Errorf("decodeJSON() error = %v, want validation error", err)
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/transactions/x", nil)
	r.SetPathValue("id", "not-a-uuid")
	if _, err := pathID(r, "transaction"); !core.IsNotFound(err) {
		t.Errorf("pathID() error = %v, want not found", err)
	}

	const id = "6f1c1f3e-4f43-4b8e-9d0a-1c2b3d4e5f60"
	r.SetPathValue("id", id)
	got, err := pathID(r, "transaction")
	if err != nil || got != id {
		t.Errorf("pathID() = %q, %v", got, err)
	}
}
