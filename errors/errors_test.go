package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	inner := errors.New("disk full")

	assert.Equal(t, "resize failed: disk full", NewResizeFailure(inner, 10, 20).Error())
	assert.Equal(t, "invalid zoom 120: must be at most 100", NewInvalidConfiguration("zoom", 120, "must be at most 100").Error())
	assert.Equal(t, "internal", (&AppError{Type: ErrorTypeInternal}).Error())
}

func TestTypeChecks(t *testing.T) {
	invalid := NewInvalidConfiguration("densities", "2y", "unknown descriptor")
	wrapped := fmt.Errorf("picture hero: %w", invalid)

	assert.True(t, IsInvalidConfiguration(wrapped))
	assert.False(t, IsResizeFailure(wrapped))
	assert.True(t, errors.Is(wrapped, New(ErrorTypeInvalidConfiguration, "")))

	resize := NewResizeFailure(errors.New("boom"), 1, 1)
	assert.True(t, IsResizeFailure(resize))
	assert.True(t, HasType(WrapWithType(resize, ErrorTypeInternal, "generate"), ErrorTypeResizeFailure))

	assert.False(t, IsInvalidConfiguration(nil))
	assert.False(t, IsInvalidConfiguration(errors.New("plain")))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	nf := NewNotFound("image", "a.jpg")
	assert.Same(t, nf, FromError(fmt.Errorf("open: %w", nf)))

	plain := FromError(errors.New("plain"))
	assert.Equal(t, ErrorTypeUnknown, plain.Type)
	assert.EqualError(t, plain, "unknown: plain")
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{NewInvalidConfiguration("zoom", -1, "negative"), http.StatusBadRequest, CodeInvalidConfiguration},
		{NewNotFound("picture configuration", "hero"), http.StatusNotFound, CodeNotFound},
		{NewResizeFailure(errors.New("x"), 1, 1), http.StatusBadGateway, CodeResizeFailure},
		{NewStorage(errors.New("x"), "put failed"), http.StatusInternalServerError, CodeStorage},
		{NewCache(errors.New("x"), "get failed"), http.StatusInternalServerError, CodeCache},
		{NewInternal("oops"), http.StatusInternalServerError, CodeInternalError},
		{WrapWithType(errors.New("x"), ErrorTypeNotFound, "gone"), http.StatusNotFound, "not_found"},
		{errors.New("plain"), http.StatusInternalServerError, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			res := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.status, res.HTTPStatus)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.Equal(t, FromError(tt.err).Error(), res.Error.Message)
		})
	}
}

func TestDetailsAndStack(t *testing.T) {
	err := NewResizeFailure(errors.New("x"), 30, 40).WithStack()
	assert.Equal(t, 30, err.Details["width"])
	assert.Equal(t, 40, err.Details["height"])
	assert.NotEmpty(t, err.Stack)
}
