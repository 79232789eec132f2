package responder

import (
	"net/http"

	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/json"
	"github.com/leeforge/picture/logging"
)

// writeJSON is the internal helper for all responses
func writeJSON(w http.ResponseWriter, status int, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		fallback := []byte(`{"error":{"type":"internal","code":"INTERNAL_ERROR","message":"encode failed"},"meta":{}}`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(fallback)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

// meta builds the response metadata. The request ID set by
// logging.HTTPMiddleware is filled in unless an option overrides it.
func meta(r *http.Request, opts []Option) Meta {
	m := NewMeta(opts...)
	if m.RequestID == "" && r != nil {
		m.RequestID = logging.GetRequestID(r.Context())
	}
	return *m
}

// Write sends a success response with data
func Write(w http.ResponseWriter, r *http.Request, status int, data any, opts ...Option) {
	writeJSON(w, status, &Response{
		Data: data,
		Meta: meta(r, opts),
	})
}

// OK responds with 200 OK and data
func OK(w http.ResponseWriter, r *http.Request, data any, opts ...Option) {
	Write(w, r, http.StatusOK, data, opts...)
}

// WriteError sends err with the status of its error type. Errors that are
// not application errors are reported as internal.
func WriteError(w http.ResponseWriter, r *http.Request, err error, opts ...Option) {
	res := apperrors.ToHTTPResponse(err)
	writeJSON(w, res.HTTPStatus, &Response{
		Error: &Error{
			Type:    res.Error.Type,
			Code:    res.Error.Code,
			Message: res.Error.Message,
			Details: res.Error.Details,
		},
		Meta: meta(r, opts),
	})
}

// NotFound responds with 404 for an unknown route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, apperrors.NewNotFound("route", r.URL.Path))
}

// MethodNotAllowed responds with 405.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	err := apperrors.New(apperrors.ErrorTypeInvalidConfiguration, "method "+r.Method+" not allowed").
		WithCode("METHOD_NOT_ALLOWED").
		WithHTTPStatus(http.StatusMethodNotAllowed)
	WriteError(w, r, err)
}
