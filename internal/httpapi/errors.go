package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"creditrisk/internal/backend"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/manager"
	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	var he HTTPError
	switch {
	case prompt.IsFormattingError(err):
		return http.StatusBadRequest
	case manager.IsBackendNotFound(err):
		return http.StatusNotFound
	case backend.IsBackendUnavailable(err), errors.Is(err, manager.ErrClosed), errors.Is(err, dispatch.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case dispatch.IsAggregateFailure(err):
		return http.StatusBadGateway
	case errors.Is(err, dispatch.ErrNoBackends):
		return http.StatusBadRequest
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status and returns the status.
func writeServiceError(w http.ResponseWriter, err error) int {
	status := statusForError(err)
	resp := types.ErrorResponse{Error: err.Error(), Code: status}
	var fe *prompt.FormattingError
	if errors.As(err, &fe) {
		resp.Field = fe.Field
	}
	writeJSON(w, status, resp)
	return status
}

// statusForResult maps a failed single-backend result to a status code.
func statusForResult(r backend.InferenceResult) int {
	switch {
	case r.OK():
		return http.StatusOK
	case r.Status == backend.StatusUnavailable:
		return http.StatusServiceUnavailable
	case r.IsCanceled():
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
