package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
)

// TokenStatus is the outcome of RetrieveAccessToken.
type TokenStatus int

const (
	// StatusNoCallback means the request carried neither a code nor a dialog error.
	StatusNoCallback TokenStatus = iota
	// StatusStored means a validated token was stored in the provider.
	StatusStored
)

func (s TokenStatus) String() string {
	switch s {
	case StatusStored:
		return "stored"
	default:
		return "no_callback"
	}
}

// TokenResult reports what RetrieveAccessToken did with a request.
type TokenResult struct {
	Token  graph.AccessToken
	Index  int
	Status TokenStatus
}

// RetrieveAccessToken runs the token lifecycle for a callback request:
// acquire the token from the code, validate it, exchange it for a long-lived
// token when configured, and store it in the provider.
//
// A request that is not a callback yields StatusNoCallback and no error.
// Failures are recorded as LastError and logged.
func (a *App) RetrieveAccessToken(ctx context.Context, r *http.Request) (TokenResult, error) {
	s, err := a.Resolve(ctx)
	if err != nil {
		return TokenResult{}, err
	}
	return a.retrieve(ctx, s, r)
}

// User acquires a token from the callback request and returns its user handle.
// A request that is not a callback fails with ErrAuthorization.
func (a *App) User(ctx context.Context, r *http.Request) (*User, error) {
	s, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	res, err := a.retrieve(ctx, s, r)
	if err != nil {
		return nil, err
	}
	if res.Status == StatusNoCallback {
		return nil, a.fail(ctx, KindAuthorization, "no access token could be obtained",
			errors.Join(ErrAuthorization, ErrNoCallback))
	}
	return s.User(Index(res.Index))
}

// CurrentUser returns the handle of the latest stored token,
// or runs User when the provider has no token yet.
func (a *App) CurrentUser(ctx context.Context, r *http.Request) (*User, error) {
	s, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if s.provider.HasAccessTokens() {
		return s.User(Auto)
	}
	return a.User(ctx, r)
}

func (a *App) retrieve(ctx context.Context, s *Session, r *http.Request) (TokenResult, error) {
	ctx = logger.WithAppID(ctx, s.config.Identity.ID)

	token, err := a.acquire(ctx, s, r)
	if err != nil {
		return TokenResult{}, err
	}
	if token == nil {
		return TokenResult{Status: StatusNoCallback}, nil
	}

	if err := a.validate(ctx, s, *token); err != nil {
		return TokenResult{}, err
	}

	if s.config.LongLived && !token.IsLongLived() {
		long, err := s.client.ExchangeForLongLived(ctx, *token)
		if err != nil {
			return TokenResult{}, a.fail(ctx, KindSDK, err.Error(), errors.Join(ErrSDK, err))
		}
		token = long
	}

	idx := s.provider.AddAccessToken(*token)
	a.logger.InfoContext(ctx, "access token stored",
		slog.Int("index", idx),
		slog.Bool("long_lived", token.IsLongLived()),
		slog.Any("token", *token),
	)
	return TokenResult{Token: *token, Index: idx, Status: StatusStored}, nil
}

// acquire returns (nil, nil) for a request that is not a callback at all.
func (a *App) acquire(ctx context.Context, s *Session, r *http.Request) (*graph.AccessToken, error) {
	if r == nil || r.URL == nil {
		return nil, nil
	}
	token, err := s.client.ExchangeCallback(ctx, r, s.config.CallbackURL)
	if err != nil {
		var gerr *graph.Error
		if errors.As(err, &gerr) {
			return nil, a.fail(ctx, KindGraph, gerr.Message, errors.Join(ErrAuthorization, ErrGraph, err))
		}
		return nil, a.fail(ctx, KindSDK, err.Error(), errors.Join(ErrAuthorization, ErrSDK, err))
	}
	if token != nil {
		return token, nil
	}

	if cerr := s.client.CallbackError(r); cerr != nil {
		msg := fmt.Sprintf("App error #%s\nReason: %s\nDescription: %s", cerr.Code, cerr.Reason, cerr.Description)
		return nil, a.fail(ctx, KindGraph, msg, errors.Join(ErrAuthorization, ErrGraph, cerr))
	}

	// Marked as callback, yet neither code nor error came back.
	if r.URL.Query().Has(s.config.CallbackParam) {
		return nil, a.fail(ctx, KindSDK, "unknown error acquiring token",
			errors.Join(ErrAuthorization, ErrSDK, errors.New("unknown error acquiring token")))
	}
	return nil, nil
}

func (a *App) validate(ctx context.Context, s *Session, token graph.AccessToken) error {
	meta, err := s.client.DebugToken(ctx, token)
	if err != nil {
		return a.fail(ctx, KindSDK, err.Error(), errors.Join(ErrSDK, err))
	}
	if err := meta.ValidateAppID(s.config.Identity.ID); err != nil {
		return a.fail(ctx, KindSDK, err.Error(), errors.Join(ErrSDK, err))
	}
	if err := meta.ValidateExpiration(); err != nil {
		return a.fail(ctx, KindSDK, err.Error(), errors.Join(ErrSDK, err))
	}
	return nil
}

// fail records msg as last error and logs err.
func (a *App) fail(ctx context.Context, kind ErrorKind, msg string, err error) error {
	a.mu.Lock()
	a.lastError = kind.prefix() + msg
	l := a.logger
	a.mu.Unlock()

	l.WarnContext(ctx, "access token lifecycle failed",
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()),
	)
	return err
}
