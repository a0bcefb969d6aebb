package internal

import "context"

// Session binds the Provider of an application to a Graph client built
// from one configuration generation.
type Session struct {
	provider   *Provider
	client     GraphClient
	config     Config
	generation uint64
}

// Provider returns the application provider.
func (s *Session) Provider() *Provider { return s.provider }

// Client returns the Graph client built for this session.
func (s *Session) Client() GraphClient { return s.client }

// Config returns the configuration the session was built from.
func (s *Session) Config() Config { return s.config.clone() }

// Generation returns the configuration generation of the session.
func (s *Session) Generation() uint64 { return s.generation }

// LoginURL returns the authorization dialog URL for the session's callback and permissions.
func (s *Session) LoginURL(ctx context.Context) (string, error) {
	return loginURL(ctx, s.client, s.config.CallbackURL, s.provider.Permissions())
}

// User returns the handle for the token picked by sel, served by the session's client.
func (s *Session) User(sel TokenSelector) (*User, error) {
	return s.provider.User(s.client, sel)
}
