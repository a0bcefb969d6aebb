package graph

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingAppID is returned when the client is built without an app ID.
	ErrMissingAppID = errors.New("graph: missing app ID")

	// ErrMissingAppSecret is returned when the client is built without an app secret.
	ErrMissingAppSecret = errors.New("graph: missing app secret")

	// ErrMissingCallbackURL is returned when a login URL or code exchange has no redirect URI.
	ErrMissingCallbackURL = errors.New("graph: missing callback URL")

	// ErrStateMissing is returned when the callback request carries a code but no state.
	ErrStateMissing = errors.New("graph: state parameter missing from callback request")

	// ErrStateMismatch is returned when the callback state is unknown to the persistent data
	// handler. This covers forged requests as well as replays of an already consumed callback.
	ErrStateMismatch = errors.New("graph: cross-site request forgery validation failed")

	// ErrEmptyToken is returned when an operation requires an access token and got none.
	ErrEmptyToken = errors.New("graph: empty access token")

	// ErrAppIDMismatch is returned when token metadata belongs to another application.
	ErrAppIDMismatch = errors.New("graph: access token metadata contains unexpected app ID")

	// ErrUserIDMismatch is returned when token metadata belongs to another user.
	ErrUserIDMismatch = errors.New("graph: access token metadata contains unexpected user ID")

	// ErrTokenExpired is returned when an inspected access token has expired.
	ErrTokenExpired = errors.New("graph: inspected access token has expired")

	// ErrNilResponse is returned when the HTTP client returns neither a response nor an error.
	ErrNilResponse = errors.New("graph: nil response from graph API")

	// ErrRequestFailed is returned when the Graph API answers with a non-OK status
	// and the body is not a Graph error object.
	ErrRequestFailed = errors.New("graph: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding a Graph API response fails.
	ErrDecodeFailed = errors.New("graph: failed to decode response")
)

// Error is the error object returned by the Graph API,
// e.g. {"error": {"message": "...", "type": "OAuthException", "code": 100}}.
type Error struct {
	Message     string `json:"message"`
	Type        string `json:"type"`
	UserTitle   string `json:"error_user_title"`
	UserMessage string `json:"error_user_msg"`
	TraceID     string `json:"fbtrace_id"`
	Code        int    `json:"code"`
	Subcode     int    `json:"error_subcode"`
	StatusCode  int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph: %s (type=%s code=%d subcode=%d status=%d)",
		e.Message, e.Type, e.Code, e.Subcode, e.StatusCode)
}

// IsOAuth reports whether the Graph API classified the failure as an OAuth error.
func (e *Error) IsOAuth() bool {
	return e.Type == "OAuthException"
}

// parseError extracts a Graph error object from a response body.
// Returns nil when the body is not a Graph error envelope.
func parseError(statusCode int, body []byte) *Error {
	var envelope struct {
		Error *Error `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	envelope.Error.StatusCode = statusCode
	return envelope.Error
}

// CallbackError describes an error the authorization dialog reported back
// through the redirect, e.g. when the user denied the requested permissions.
type CallbackError struct {
	Name        string // error
	Code        string // error_code
	Reason      string // error_reason
	Description string // error_description
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("graph: authorization dialog returned %s (code=%s reason=%s): %s",
		e.Name, e.Code, e.Reason, e.Description)
}
