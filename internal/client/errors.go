package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrorKind is the closed set of failure classes a backend call can produce
type ErrorKind string

const (
	KindValidation ErrorKind = "ValidationError"
	KindAuth       ErrorKind = "AuthError"
	KindNotFound   ErrorKind = "NotFoundError"
	KindServer     ErrorKind = "ServerError"
	KindNetwork    ErrorKind = "NetworkError"
)

// SessionExpiredMessage is shown when the refresh token can no longer renew the session
const SessionExpiredMessage = "Session expired. Please login again."

// ErrSessionExpired is wrapped by the AuthError returned after a failed refresh
var ErrSessionExpired = errors.New("session expired")

// APIError is the normalized form of every failed backend call
type APIError struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	ErrorText  string    `json:"error,omitempty"`
	Code       string    `json:"code,omitempty"`
	Err        error     `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status to an error kind
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	case status >= 400:
		return KindValidation
	default:
		return KindServer
	}
}

// IsKind reports whether err is an *APIError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// AsAPIError normalizes any error into an *APIError
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return newNetworkError(err)
}

// NewValidationError builds a client-side validation failure
func NewValidationError(code, message string) *APIError {
	return &APIError{
		Kind:       KindValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Code:       code,
	}
}

func newNetworkError(err error) *APIError {
	message := "Network error. Please check your connection and try again."
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &APIError{
		Kind:       KindNetwork,
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        err,
	}
}

func newSessionExpiredError() *APIError {
	return &APIError{
		Kind:       KindAuth,
		StatusCode: http.StatusUnauthorized,
		Message:    SessionExpiredMessage,
		Code:       "SESSION_EXPIRED",
		Err:        ErrSessionExpired,
	}
}

// backendErrorBody is the backend's error envelope; message may be a string,
// a list of strings, or a nested {message, code} object
type backendErrorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
}

type nestedMessage struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// parseErrorResponse builds an APIError from a non-2xx response
func parseErrorResponse(status int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Message:    http.StatusText(status),
	}

	var parsed backendErrorBody
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		return apiErr
	}

	apiErr.ErrorText = parsed.Error
	apiErr.Code = parsed.Code
	if msg, code := flattenMessage(parsed.Message); msg != "" {
		apiErr.Message = msg
		if code != "" {
			apiErr.Code = code
		}
	} else if parsed.Error != "" {
		apiErr.Message = parsed.Error
	}
	return apiErr
}

func flattenMessage(raw json.RawMessage) (string, string) {
	if len(raw) == 0 {
		return "", ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, ""
	}

	var nested nestedMessage
	if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
		return nested.Message, nested.Code
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", "), ""
	}
	return "", ""
}
