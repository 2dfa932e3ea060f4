// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: JSON bodies, period query parameters and path identifiers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bilancio/internal/core"

	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON value from the body into dst. Malformed
// input is reported as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var domainErr *core.Error
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &domainErr):
			return err
		case errors.As(err, &maxErr):
			return core.Validationf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return core.Validationf("request body is required")
		}
		return core.Validationf("invalid JSON body: %v", err)
	}

	if dec.More() {
		return core.Validationf("invalid JSON body: unexpected data after the object")
	}
	return nil
}

// requiredInt parses a mandatory integer query parameter.
func requiredInt(query url.Values, key string) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, core.Validationf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Validationf("%s must be an integer", key)
	}
	return n, nil
}

// optionalInt parses an integer query parameter that may be absent.
func optionalInt(query url.Values, key string) (*int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, core.Validationf("%s must be an integer", key)
	}
	return &n, nil
}

// MonthParams holds year/month values from query parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts the mandatory year and month. Range checks are
// left to the services.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	year, err := requiredInt(query, "year")
	if err != nil {
		return MonthParams{}, err
	}
	month, err := requiredInt(query, "month")
	if err != nil {
		return MonthParams{}, err
	}
	return MonthParams{Year: year, Month: month}, nil
}

// ParseOptionalMonthParams extracts year and month when present.
func ParseOptionalMonthParams(query url.Values) (year, month *int, err error) {
	if year, err = optionalInt(query, "year"); err != nil {
		return nil, nil, err
	}
	if month, err = optionalInt(query, "month"); err != nil {
		return nil, nil, err
	}
	return year, month, nil
}

// pathID returns the {id} path value. Identifiers are UUIDs, so anything
// else cannot name an existing record.
func pathID(r *http.Request, subject string) (string, error) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", core.NotFoundf("%s not found", subject)
	}
	return id, nil
}

func location(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
