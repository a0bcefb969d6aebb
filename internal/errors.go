package internal

import "errors"

// Sentinel errors. Failures are composed with errors.Join, so one error may
// match several of these (e.g. a rejected callback is both ErrAuthorization and ErrGraph).
var (
	// ErrConfiguration is returned for invalid or missing builder input.
	ErrConfiguration = errors.New("fbgraph: invalid configuration")

	// ErrGraph is returned when the Graph API or the login dialog reported an error.
	// Use errors.As with *graph.Error or *graph.CallbackError for details.
	ErrGraph = errors.New("fbgraph: graph API returned an error")

	// ErrSDK is returned for local validation and protocol failures.
	ErrSDK = errors.New("fbgraph: sdk error")

	// ErrAuthorization is returned when no access token could be obtained from a callback.
	ErrAuthorization = errors.New("fbgraph: authorization failed")

	// ErrNoCallback is returned by User when the request is not an authorization callback.
	ErrNoCallback = errors.New("fbgraph: request carries no authorization callback")

	// ErrMissingToken is returned when a user handle without access token is used for data access.
	ErrMissingToken = errors.New("fbgraph: user handle has no access token")

	// ErrSerialization is returned when serializing a user handle without access token.
	ErrSerialization = errors.New("fbgraph: cannot serialize user handle without access token")

	// ErrIndexOutOfRange is returned for a token selector that points past the stored tokens.
	ErrIndexOutOfRange = errors.New("fbgraph: token index out of range")
)

// ErrorKind classifies a token lifecycle failure.
type ErrorKind string

const (
	// KindGraph marks failures reported by the Graph API or the login dialog.
	KindGraph ErrorKind = "graph_error"
	// KindSDK marks local validation and protocol failures.
	KindSDK ErrorKind = "sdk_error"
	// KindAuthorization marks requests that yielded no access token at all.
	KindAuthorization ErrorKind = "authorization_error"
)

// prefix is prepended to the failure message recorded as last error.
func (k ErrorKind) prefix() string {
	switch k {
	case KindGraph:
		return "Graph API returned an error: "
	case KindSDK:
		return "SDK returned an error: "
	default:
		return ""
	}
}
