package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fbgraph"
	"github.com/dmitrymomot/fbgraph/pkg/health"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
	"github.com/dmitrymomot/fbgraph/pkg/redis"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

type server struct {
	log         *slog.Logger
	registry    *fbgraph.Registry
	metrics     *metrics
	redisClient goredis.UniversalClient
	facebook    fbgraph.Config
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestContext)
	r.Use(s.metrics.middleware)

	r.Get("/login", s.login)
	r.Get("/me", s.me)
	r.Get("/healthz", s.readiness().Handler())
	r.Handle("/metrics", s.metrics.handler())
	return r
}

// requestContext tags the request with an id and exposes it to request-bound stores.
func (s *server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := logger.WithRequestID(r.Context(), id)
		ctx = logger.WithAppID(ctx, s.facebook.Identity.ID)
		ctx = store.WithHTTP(ctx, w, r)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// app builds the facade for one request. Providers are shared through the registry.
func (s *server) app(r *http.Request) *fbgraph.App {
	return fbgraph.New(s.facebook.Identity, fbgraph.UseRegistry(s.registry), fbgraph.UseLogger(s.log)).
		WithConfig(s.facebook).
		WithCallbackFromRequest(r)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app := s.app(r)

	if !app.IsCallback(r) {
		u, err := app.LoginURL(ctx)
		if err != nil {
			s.fail(w, r, err, app.LastError())
			return
		}
		s.metrics.logins.WithLabelValues("redirect").Inc()
		http.Redirect(w, r, u, http.StatusFound)
		return
	}

	user, err := app.User(ctx, r)
	if err != nil {
		s.metrics.logins.WithLabelValues("failed").Inc()
		s.fail(w, r, err, app.LastError())
		return
	}
	s.metrics.logins.WithLabelValues("succeeded").Inc()
	s.writeProfile(w, r, user)
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	app := s.app(r)
	sess, err := app.Resolve(r.Context())
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if !sess.Provider().HasAccessTokens() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := app.CurrentUser(r.Context(), r)
	if err != nil {
		s.fail(w, r, err, app.LastError())
		return
	}
	s.writeProfile(w, r, user)
}

func (s *server) writeProfile(w http.ResponseWriter, r *http.Request, user *fbgraph.User) {
	resp, err := user.Get(r.Context(), []string{"id", "name", "email"})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	profile, err := resp.GraphUser()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *server) readiness() *health.Checker {
	checker := health.New(health.WithLogger(s.log))
	if s.redisClient != nil {
		checker.Add("redis", redis.Healthcheck(s.redisClient))
	}
	return checker
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error, detail string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fbgraph.ErrAuthorization), errors.Is(err, fbgraph.ErrMissingToken):
		status = http.StatusUnauthorized
	case errors.Is(err, fbgraph.ErrGraph):
		status = http.StatusBadGateway
	}

	s.log.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	body := map[string]string{"error": http.StatusText(status)}
	if detail != "" {
		body["detail"] = detail
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
