package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/viniciuslks7/API-Starwars/auth"
	"github.com/viniciuslks7/API-Starwars/catalog"
	"github.com/viniciuslks7/API-Starwars/images"
	"github.com/viniciuslks7/API-Starwars/observe"
	"github.com/viniciuslks7/API-Starwars/query"
	"github.com/viniciuslks7/API-Starwars/resilience"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// ErrBadRequest marks request errors detected by the handlers themselves.
var ErrBadRequest = errors.New("server: bad request")

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error          string `json:"error"`
	Detail         string `json:"detail,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// httpError carries a status and a client-facing message for err.
type httpError struct {
	status int
	msg    string
	err    error
}

func (e *httpError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *httpError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...), err: ErrBadRequest}
}

// notFound replaces an upstream not-found with a message naming the entity.
func notFound(err error, what string, id int) error {
	if swapi.IsNotFound(err) {
		return &httpError{status: http.StatusNotFound, msg: fmt.Sprintf("%s with ID %d not found", what, id), err: err}
	}
	return err
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, swapi.ErrNotFound), errors.Is(err, catalog.ErrUnknownRanking):
		return http.StatusNotFound
	case errors.Is(err, query.ErrInvalidParam),
		errors.Is(err, query.ErrUnknownSortKey),
		errors.Is(err, query.ErrInvalidOrder),
		errors.Is(err, catalog.ErrComparisonSize),
		errors.Is(err, catalog.ErrComparisonTooFew),
		errors.Is(err, images.ErrInvalidKind),
		errors.Is(err, swapi.ErrSearchUnsupported),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrBulkheadFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, swapi.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorWriter writes ErrorBody responses. Details of 500 responses are
// only shown in debug mode.
type errorWriter struct {
	debug  bool
	logger observe.Logger
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := ErrorBody{
		Error:     http.StatusText(status),
		RequestID: observe.RequestIDFromContext(r.Context()),
	}
	var he *httpError
	switch {
	case errors.As(err, &he):
		body.Detail = he.msg
	case status == http.StatusInternalServerError && !ew.debug:
		body.Detail = "An unexpected error occurred"
	case err != nil:
		body.Detail = err.Error()
	}
	if status == http.StatusBadGateway {
		body.UpstreamStatus = swapi.StatusOf(err)
	}
	if status >= http.StatusInternalServerError {
		ew.logger.Error(r.Context(), "request error",
			observe.String("path", r.URL.Path),
			observe.Int("status", status),
			observe.Err(err),
		)
	}
	writeJSON(w, status, body)
}

// fail maps err to a status and writes it.
func (ew errorWriter) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// The client went away; nobody reads the response.
		return
	}
	ew.write(w, r, StatusFor(err), err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
