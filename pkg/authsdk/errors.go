package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service, carrying the error
// envelope fields the login endpoints populate.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`

	// Message is the human-readable error string.
	Message string `json:"error"`

	// Locked is set when the account is under a temporary lockout.
	Locked bool `json:"locked"`

	// RemainingMinutes is the lockout duration left, in minutes.
	RemainingMinutes int `json:"remainingMinutes"`

	// RemainingAttempts is how many failures remain before lockout.
	RemainingAttempts int `json:"remainingAttempts"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// IsLocked reports whether err is an APIError for a locked account.
func IsLocked(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Locked
}

// IsUnauthorized reports whether err is an APIError with a 401 status.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// parseErrorResponse turns a non-2xx response body into an *APIError.
// Bodies that are not the standard envelope still produce a usable error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
