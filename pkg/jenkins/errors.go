package jenkins

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound matches API errors with status 404.
	ErrNotFound = errors.New("jenkins: not found")
	// ErrUnauthorized matches API errors with status 401 or 403.
	ErrUnauthorized = errors.New("jenkins: unauthorized")
	// ErrCredentialExists matches a 409 from the credentials store.
	ErrCredentialExists = errors.New("jenkins: credential already exists")
)

// maxErrorBody bounds how much of a response body is kept on an APIError.
const maxErrorBody = 512

// APIError is returned for any non-successful Jenkins response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       string(body),
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code: %d", e.Method, e.Path, e.StatusCode)
}

// Is lets errors.Is match an APIError against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrCredentialExists:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// retryable reports whether a failed GET is worth repeating.
func (e *APIError) retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
