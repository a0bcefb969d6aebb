// Package graphtest provides an in-process fake of the Graph API endpoints used by fbgraph:
// code exchange, long-lived exchange, debug_token, and reads/writes on /me.
package graphtest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
)

// Server is a fake Graph API backed by httptest.Server.
// It serves the login dialog host too, so both base URLs point at it.
type Server struct {
	*httptest.Server

	AppID     string
	AppSecret string
	UserID    string
	UserName  string

	// ShortLivedTTL is the lifetime of tokens issued for codes. Default: 1h.
	ShortLivedTTL time.Duration
	// LongLivedTTL is the lifetime of exchanged tokens. Default: 60 days.
	LongLivedTTL time.Duration
	// DebugAppID overrides the app_id reported by debug_token.
	DebugAppID string

	codes  map[string]bool
	tokens map[string]time.Time
	posts  []map[string]string
	calls  map[string]int
	seq    int
	mu     sync.Mutex
}

// NewServer starts a fake Graph API for one application. It is closed with t.Cleanup.
func NewServer(t testing.TB, appID, appSecret string) *Server {
	t.Helper()

	s := &Server{
		AppID:         appID,
		AppSecret:     appSecret,
		UserID:        "10001",
		UserName:      "Test User",
		ShortLivedTTL: time.Hour,
		LongLivedTTL:  60 * 24 * time.Hour,
		codes:         make(map[string]bool),
		tokens:        make(map[string]time.Time),
		calls:         make(map[string]int),
	}

	r := chi.NewRouter()
	r.Route("/{version}", func(r chi.Router) {
		r.Post("/oauth/access_token", s.exchangeCode)
		r.Get("/oauth/access_token", s.exchangeLongLived)
		r.Get("/debug_token", s.debugToken)
		r.Get("/me", s.me)
		r.Post("/me/feed", s.feed)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Options returns the client options that route a graph.Client to this server.
func (s *Server) Options() []graph.Option {
	return []graph.Option{
		graph.WithBaseURLs(s.URL, s.URL),
		graph.WithHTTPClient(s.Client()),
	}
}

// IssueCode returns a fresh authorization code that can be exchanged once.
func (s *Server) IssueCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	code := "code-" + strconv.Itoa(s.seq)
	s.codes[code] = true
	return code
}

// IssueToken registers a user token valid for ttl and returns it.
func (s *Server) IssueToken(ttl time.Duration) graph.AccessToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked("token", ttl)
}

// Calls returns how often the named endpoint was hit:
// "exchange_code", "exchange_long_lived", "debug_token", "me" or "feed".
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// Posts returns the messages published to /me/feed.
func (s *Server) Posts() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.posts...)
}

func (s *Server) issueLocked(kind string, ttl time.Duration) graph.AccessToken {
	s.seq++
	value := fmt.Sprintf("%s-%d", kind, s.seq)
	exp := time.Now().Add(ttl)
	s.tokens[value] = exp
	return graph.NewAccessToken(value, exp)
}

func (s *Server) exchangeCode(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, 100, 0, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["exchange_code"]++

	if r.PostForm.Get("client_id") != s.AppID || r.PostForm.Get("client_secret") != s.AppSecret {
		writeError(w, http.StatusBadRequest, 1, 0, "Error validating client secret.")
		return
	}
	if r.PostForm.Get("redirect_uri") == "" {
		writeError(w, http.StatusBadRequest, 191, 0, "Missing redirect_uri parameter.")
		return
	}
	code := r.PostForm.Get("code")
	if !s.codes[code] {
		writeError(w, http.StatusBadRequest, 100, 36009, "This authorization code has been used.")
		return
	}
	delete(s.codes, code)

	tok := s.issueLocked("short", s.ShortLivedTTL)
	writeToken(w, tok, s.ShortLivedTTL)
}

func (s *Server) exchangeLongLived(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["exchange_long_lived"]++

	if q.Get("grant_type") != "fb_exchange_token" || q.Get("client_id") != s.AppID || q.Get("client_secret") != s.AppSecret {
		writeError(w, http.StatusBadRequest, 101, 0, "Error validating application.")
		return
	}
	if _, ok := s.tokens[q.Get("fb_exchange_token")]; !ok {
		writeError(w, http.StatusBadRequest, 190, 0, "Invalid OAuth access token.")
		return
	}

	tok := s.issueLocked("long", s.LongLivedTTL)
	writeToken(w, tok, s.LongLivedTTL)
}

func (s *Server) debugToken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["debug_token"]++

	if q.Get("access_token") != s.AppID+"|"+s.AppSecret {
		writeError(w, http.StatusBadRequest, 190, 0, "Invalid app access token.")
		return
	}
	exp, ok := s.tokens[q.Get("input_token")]
	if !ok {
		writeError(w, http.StatusBadRequest, 190, 0, "Invalid OAuth access token.")
		return
	}

	appID := s.AppID
	if s.DebugAppID != "" {
		appID = s.DebugAppID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"app_id":      appID,
			"type":        "USER",
			"application": "fbgraph test",
			"user_id":     s.UserID,
			"is_valid":    time.Now().Before(exp),
			"expires_at":  exp.Unix(),
			"issued_at":   time.Now().Unix(),
			"scopes":      []string{"public_profile", "email"},
		},
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["me"]++

	if !s.authorizedLocked(w, r.URL.Query().Get("access_token"), r.URL.Query().Get("appsecret_proof")) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    s.UserID,
		"name":  s.UserName,
		"email": "user@example.com",
	})
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, 100, 0, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["feed"]++

	if !s.authorizedLocked(w, r.PostForm.Get("access_token"), r.PostForm.Get("appsecret_proof")) {
		return
	}
	s.seq++
	s.posts = append(s.posts, map[string]string{"message": r.PostForm.Get("message")})
	writeJSON(w, http.StatusOK, map[string]any{"id": s.UserID + "_" + strconv.Itoa(s.seq)})
}

func (s *Server) authorizedLocked(w http.ResponseWriter, token, proof string) bool {
	exp, ok := s.tokens[token]
	if !ok || time.Now().After(exp) {
		writeError(w, http.StatusBadRequest, 190, 0, "Invalid OAuth access token.")
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.AppSecret))
	mac.Write([]byte(token))
	if !hmac.Equal([]byte(proof), []byte(hex.EncodeToString(mac.Sum(nil)))) {
		writeError(w, http.StatusBadRequest, 100, 0, "Invalid appsecret_proof provided in the API argument")
		return false
	}
	return true
}

func writeToken(w http.ResponseWriter, tok graph.AccessToken, ttl time.Duration) {
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tok.Value,
		"token_type":   "bearer",
		"expires_in":   int64(ttl.Seconds()),
	})
}

func writeError(w http.ResponseWriter, status, code, subcode int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message":       msg,
			"type":          "OAuthException",
			"code":          code,
			"error_subcode": subcode,
			"fbtrace_id":    "trace-test",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
