package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aidar/taskboard-client/internal/domain"
)

// genericErrorMessage is shown when the backend error body carries no
// usable message field.
const genericErrorMessage = "something went wrong, please try again later"

// Error represents a non-2xx backend response.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// errorBody covers the error shapes the backend is known to produce:
// a flat {message} and the nested {error:{code,message}} envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newError builds an Error from a failed response body, extracting the
// user-facing message with a generic fallback if absent.
func newError(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode, Message: genericErrorMessage}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}
	if parsed.Error != nil {
		apiErr.Code = parsed.Error.Code
		if parsed.Error.Message != "" {
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}
	if parsed.Message != "" {
		apiErr.Message = parsed.Message
	}
	return apiErr
}

// IsUnauthorized reports whether err represents an HTTP 401 failure.
// The retry wrapper treats these as permanent: recovery belongs to the
// refresh transport, never to retries.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrSessionExpired)
}

// UserMessage converts any client error into a plain string suitable for
// per-feature error state. Raw payloads and stacks never reach the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrSessionExpired) {
		return "your session has expired, please sign in again"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return genericErrorMessage
}
