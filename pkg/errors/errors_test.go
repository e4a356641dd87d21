package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOfUnwrapsChain(t *testing.T) {
	base := New(CodeNotFound, "tag not found")
	wrapped := fmt.Errorf("resolve: %w", base)

	require.True(t, IsCode(wrapped, CodeNotFound))
	require.Equal(t, CodeUnknown, CodeOf(fmt.Errorf("plain")))

	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "tag not found", ae.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(cause, CodeInternal, "list deployments failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal: list deployments failed: connection reset", err.Error())

	assert.Nil(t, Wrap(nil, CodeInvalid, "x").Err)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalid:      http.StatusBadRequest,
		CodeNotFound:     http.StatusNotFound,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeInternal:     http.StatusInternalServerError,
		CodeUnknown:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), string(code))
	}
}
