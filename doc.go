// Package fbgraph is a facade over Facebook login and the Graph API.
//
// It builds the login dialog URL, consumes the authorization callback,
// validates the resulting access token, optionally trades it for a long-lived
// one, and hands out an authenticated user handle for Graph reads and writes.
//
// # Quick Start
//
//	app := fbgraph.Create(appID, appSecret).
//	    WithPermissions("public_profile", "email").
//	    WithCallbackFromRequest(r)
//
//	if !app.IsCallback(r) {
//	    url, err := app.LoginURL(r.Context())
//	    // redirect to url
//	}
//
//	user, err := app.User(r.Context(), r)
//	if err != nil {
//	    // errors.Is(err, fbgraph.ErrAuthorization), app.LastError()
//	}
//	id, _ := user.ID(r.Context())
//
// # Registry
//
// Apps with the same id and secret share one Provider through a [Registry],
// so tokens acquired by one request are visible to the next. Apps use
// [DefaultRegistry] unless [UseRegistry] or App.WithRegistry says otherwise.
// The registry also owns the in-memory store that keeps login state between
// the redirect and the callback. For several processes, configure
// App.WithPersistentDataHandler with store.NewRedis.
//
// # Configuration
//
// Builder methods validate their input and keep the first failure, which
// Resolve, LoginURL and User return. Every successful change bumps the
// configuration generation; the next Resolve rebuilds the Session.
//
// # Errors
//
// Failures are joined with sentinel errors: [ErrConfiguration], [ErrGraph],
// [ErrSDK], [ErrAuthorization], [ErrMissingToken], [ErrSerialization],
// [ErrIndexOutOfRange] and [ErrNoCallback]. Use errors.As with *graph.Error
// for the remote error object.
package fbgraph
