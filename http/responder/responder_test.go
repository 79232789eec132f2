package responder

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/json"
	"github.com/leeforge/picture/logging"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestWrite(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Write(rr, req, http.StatusCreated, "hello", WithRequestID("req-1"), WithTook(42))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decode(t, rr)
	assert.Equal(t, "hello", resp.Data)
	assert.Nil(t, resp.Error)
	assert.Equal(t, Meta{RequestID: "req-1", Took: 42}, resp.Meta)
}

func TestWriteTakesRequestIDFromContext(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logging.SetRequestID(req.Context(), "from-ctx"))

	OK(rr, req, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "from-ctx", decode(t, rr).Meta.RequestID)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		errType  string
		code     string
		hasField bool
	}{
		{"invalid configuration", apperrors.NewInvalidConfiguration("zoom", 120, "out of range"), http.StatusBadRequest, "invalid_configuration", apperrors.CodeInvalidConfiguration, true},
		{"not found", apperrors.NewNotFound("picture configuration", "hero"), http.StatusNotFound, "not_found", apperrors.CodeNotFound, false},
		{"resize failure", apperrors.NewResizeFailure(errors.New("disk full"), 10, 10), http.StatusBadGateway, "resize_failure", apperrors.CodeResizeFailure, false},
		{"wrapped without status", apperrors.WrapWithType(errors.New("bad"), apperrors.ErrorTypeInvalidConfiguration, "picture \"hero\""), http.StatusBadRequest, "invalid_configuration", "invalid_configuration", false},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "unknown", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			WriteError(rr, req, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			resp := decode(t, rr)
			assert.Nil(t, resp.Data)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.errType, resp.Error.Type)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
			if tt.hasField {
				assert.Equal(t, "zoom", resp.Error.Details["field"])
			}
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "/nope", decode(t, rr).Error.Details["id"])

	rr = httptest.NewRecorder()
	MethodNotAllowed(rr, httptest.NewRequest(http.MethodDelete, "/pictures/hero", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decode(t, rr).Error.Code)
}
