package types

import (
	"net/http"

	appErr "github.com/stackhook/engine/pkg/errors"
)

const internalMessage = "Internal server error."

// FromAppError converts err into an API payload. Wrapped causes and errors
// that are not AppErrors are never exposed.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	e, ok := appErr.As(err)
	if !ok {
		return &APIError{Code: string(appErr.CodeInternal), Message: internalMessage}
	}
	if e.Code == appErr.CodeInternal || e.Code == appErr.CodeUnknown {
		return &APIError{Code: string(appErr.CodeInternal), Message: internalMessage}
	}
	return &APIError{Code: string(e.Code), Message: e.Message}
}

// StatusOf maps err to an HTTP status code.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return appErr.HTTPStatus(appErr.CodeOf(err))
}
