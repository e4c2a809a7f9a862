package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeFacetNotFound       ErrorCode = "facet_not_found"
	CodeRecordNotFound      ErrorCode = "record_not_found"
	CodeSessionNotFound     ErrorCode = "session_not_found"
	CodeButtonDisabled      ErrorCode = "button_disabled"
	CodeSubmitDisabled      ErrorCode = "submit_disabled"
	CodeBenchActionDisabled ErrorCode = "bench_action_disabled"
	CodeUpstreamError       ErrorCode = "upstream_error"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(facet.ErrUnknownFacet, http.StatusNotFound, CodeFacetNotFound),
		sentinelHandler(facet.ErrUnknownValue, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(facet.ErrUnknownAction, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(facet.ErrButtonDisabled, http.StatusConflict, CodeButtonDisabled),
		sentinelHandler(panel.ErrSubmitDisabled, http.StatusConflict, CodeSubmitDisabled),
		sentinelHandler(panel.ErrBenchActionDisabled, http.StatusConflict, CodeBenchActionDisabled),
		sentinelHandler(panel.ErrUnknownRecord, http.StatusNotFound, CodeRecordNotFound),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, CodeUpstreamError),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		facet.ErrUnknownFacet,
		facet.ErrUnknownValue,
		facet.ErrUnknownAction,
		facet.ErrButtonDisabled,
		panel.ErrSubmitDisabled,
		panel.ErrBenchActionDisabled,
		panel.ErrUnknownRecord,
		domain.ErrSessionNotFound,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
