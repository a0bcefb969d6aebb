package graph

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/fbgraph/pkg/store"
)

const (
	stateLength = 32
	statePrefix = "state:"
)

// LoginURL builds the login dialog URL the user is redirected to.
// A fresh random state is persisted so the callback can be verified.
func (c *Client) LoginURL(ctx context.Context, callbackURL string, scopes []string) (string, error) {
	if callbackURL == "" {
		return "", ErrMissingCallbackURL
	}

	state, err := c.random.RandomString(stateLength)
	if err != nil {
		return "", fmt.Errorf("graph: generate state: %w", err)
	}
	if err := c.store.Set(ctx, statePrefix+state, state, c.stateTTL); err != nil {
		return "", fmt.Errorf("graph: persist state: %w", err)
	}

	return c.oauthConfig(callbackURL, scopes).AuthCodeURL(state), nil
}

// ExchangeCallback trades the authorization code carried by a callback request
// for an access token. It returns (nil, nil) when the request has no code.
//
// The persisted state is consumed on first use, so replaying the same callback
// fails with ErrStateMismatch. Errors reported by the Graph API are returned as *Error.
func (c *Client) ExchangeCallback(ctx context.Context, r *http.Request, callbackURL string) (*AccessToken, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, nil
	}
	if callbackURL == "" {
		return nil, ErrMissingCallbackURL
	}

	if err := c.consumeState(ctx, r.URL.Query().Get("state")); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "graph.exchange_code")
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	tok, err := c.oauthConfig(callbackURL, nil).Exchange(c.contextWithHTTPClient(ctx), code)
	if err != nil {
		err = exchangeError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	token := FromOAuth2(tok)
	span.SetAttributes(attribute.Bool("graph.token.long_lived", token.IsLongLived()))
	return &token, nil
}

// CallbackError returns the error the login dialog reported through the
// callback request, or nil if there is none.
func (c *Client) CallbackError(r *http.Request) *CallbackError {
	q := r.URL.Query()
	name := q.Get("error")
	if name == "" {
		return nil
	}
	return &CallbackError{
		Name:        name,
		Code:        q.Get("error_code"),
		Reason:      q.Get("error_reason"),
		Description: q.Get("error_description"),
	}
}

// consumeState verifies the callback state against the persistent data handler
// and removes it.
func (c *Client) consumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrStateMissing
	}

	saved, err := c.store.Get(ctx, statePrefix+state)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrStateMismatch
		}
		return fmt.Errorf("graph: load state: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(saved), []byte(state)) != 1 {
		return ErrStateMismatch
	}

	if err := c.store.Delete(ctx, statePrefix+state); err != nil {
		return fmt.Errorf("graph: consume state: %w", err)
	}
	return nil
}

// exchangeError converts an oauth2 exchange failure into a Graph error when the
// token endpoint answered with one.
func exchangeError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		if gerr := parseError(rerr.Response.StatusCode, rerr.Body); gerr != nil {
			return gerr
		}
		return errors.Join(ErrRequestFailed, err)
	}
	return errors.Join(ErrRequestFailed, err)
}
