// Package internal implements the fbgraph facade.
//
// Import "github.com/dmitrymomot/fbgraph" instead; it re-exports the public API.
//
// # Types
//
//   - Registry: one Provider per application identity (id plus secret fingerprint)
//   - Provider: requested permissions and the access tokens acquired so far
//   - App: configuration builder that lazily resolves a Session
//   - Session: Provider plus a Graph client built from one configuration generation
//   - User: authenticated handle bound to one stored access token
//
// # Token lifecycle
//
// RetrieveAccessToken moves a callback request through
// acquire, validate, optional long-lived exchange and store.
// A request without code or dialog error is reported as StatusNoCallback.
// Failures are joined with the sentinel errors of this package:
//
//	res, err := app.RetrieveAccessToken(ctx, r)
//	switch {
//	case errors.Is(err, internal.ErrGraph):
//	    // remote rejected the code or the user denied access
//	case errors.Is(err, internal.ErrSDK):
//	    // state mismatch, invalid token, exchange failure
//	case err == nil && res.Status == internal.StatusNoCallback:
//	    // show the login link
//	}
package internal
