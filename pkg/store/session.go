package store

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

const expirySuffix = ":exp"

type httpContextKey struct{}

type httpPair struct {
	w http.ResponseWriter
	r *http.Request
}

// WithHTTP attaches the current request and response writer to ctx so that
// request-bound handlers such as Session can read and write cookies.
func WithHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, httpContextKey{}, httpPair{w: w, r: r})
}

func httpFromContext(ctx context.Context) (httpPair, bool) {
	p, ok := ctx.Value(httpContextKey{}).(httpPair)
	return p, ok && p.r != nil && p.w != nil
}

// Session is a Handler that keeps values in a gorilla/sessions session of the
// current visitor. Every call needs a context prepared with WithHTTP.
//
// Example:
//
//	h := store.NewSession(sessions.NewCookieStore([]byte(secret)), "fbgraph")
//	ctx := store.WithHTTP(r.Context(), w, r)
//	url, err := app.LoginURL(ctx)
type Session struct {
	store sessions.Store
	name  string
}

// NewSession creates a session-backed handler using the named session.
func NewSession(s sessions.Store, name string) *Session {
	if name == "" {
		name = "fbgraph"
	}
	return &Session{store: s, name: name}
}

// Get returns the value stored under key in the visitor session.
func (s *Session) Get(ctx context.Context, key string) (string, error) {
	p, sess, err := s.session(ctx)
	if err != nil {
		return "", err
	}

	v, ok := sess.Values[key].(string)
	if !ok {
		return "", ErrNotFound
	}
	if now := time.Now(); expired(sess, key, now) {
		if pruneExpired(sess, now) > 0 {
			if err := sess.Save(p.r, p.w); err != nil {
				return "", err
			}
		}
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key and writes the session cookie.
// A zero or negative TTL stores the value for the lifetime of the session.
func (s *Session) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	p, sess, err := s.session(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	pruneExpired(sess, now)

	sess.Values[key] = value
	if ttl > 0 {
		sess.Values[key+expirySuffix] = now.Add(ttl).UnixNano()
	} else {
		delete(sess.Values, key+expirySuffix)
	}
	return sess.Save(p.r, p.w)
}

// Delete removes key from the visitor session and writes the session cookie.
func (s *Session) Delete(ctx context.Context, key string) error {
	p, sess, err := s.session(ctx)
	if err != nil {
		return err
	}

	delete(sess.Values, key)
	delete(sess.Values, key+expirySuffix)
	return sess.Save(p.r, p.w)
}

func (s *Session) session(ctx context.Context) (httpPair, *sessions.Session, error) {
	p, ok := httpFromContext(ctx)
	if !ok {
		return httpPair{}, nil, ErrNoHTTPContext
	}

	sess, err := s.store.Get(p.r, s.name)
	if err != nil && sess == nil {
		return httpPair{}, nil, errors.Join(ErrNotFound, err)
	}
	// A cookie that fails to decode yields a fresh session; keep going with it.
	return p, sess, nil
}

func expired(sess *sessions.Session, key string, now time.Time) bool {
	exp, ok := sess.Values[key+expirySuffix].(int64)
	return ok && now.UnixNano() >= exp
}

// pruneExpired drops every value whose expiry has passed and reports how many
// were removed. Cookie sessions must stay under the 4 KB cookie limit.
func pruneExpired(sess *sessions.Session, now time.Time) int {
	var n int
	for k := range sess.Values {
		name, ok := k.(string)
		if !ok || strings.HasSuffix(name, expirySuffix) {
			continue
		}
		if expired(sess, name, now) {
			delete(sess.Values, name)
			delete(sess.Values, name+expirySuffix)
			n++
		}
	}
	return n
}

var _ Handler = (*Session)(nil)
