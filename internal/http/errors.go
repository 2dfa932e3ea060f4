package http

import (
	"errors"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// writeServiceError maps domain error kinds to status codes. Anything that
// is not a domain error is logged and hidden behind a generic 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, component, operation string, err error) {
	var domainErr *core.Error
	message := err.Error()
	if errors.As(err, &domainErr) {
		message = domainErr.Msg
	}

	switch {
	case core.IsValidation(err), core.IsConflict(err):
		BadRequestError(message).Write(w)
	case core.IsNotFound(err):
		NotFoundError(message).Write(w)
	default:
		s.events.LogError(r.Context(), "Request failed", err, component, operation,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		InternalServerError().Write(w)
	}
}

// mutated counts a successful write for /metrics.
func (s *Server) mutated() {
	s.appMetrics.mutations.Add(1)
}
