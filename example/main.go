// Command example serves a minimal Facebook login flow:
// GET /login redirects to the login dialog and handles the callback,
// GET /me shows the user of the last stored token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/fbgraph"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
	"github.com/dmitrymomot/fbgraph/pkg/redis"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

type config struct {
	Address    string `env:"ADDRESS" envDefault:":8080"`
	SessionKey string `env:"SESSION_KEY"`
	Sentry     logger.SentryConfig
	Redis      redis.Config
	Facebook   fbgraph.Config
}

func loadConfig() (config, error) {
	cfg := config{Facebook: fbgraph.DefaultConfig(fbgraph.Identity{})}
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	return cfg, cfg.Facebook.Validate()
}

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		logger.New().Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.NewWithSentry(cfg.Sentry,
		logger.WithExtractors(logger.RequestIDExtractor(), logger.AppIDExtractor()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("example stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	regOpts := []fbgraph.RegistryOption{fbgraph.WithRegistryLogger(log)}
	var redisClient goredis.UniversalClient

	switch {
	case cfg.Redis.URL != "":
		client, err := redis.Open(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
		regOpts = append(regOpts, fbgraph.WithRegistryPersistentData(store.NewRedis(client)))
		log.Info("login state stored in redis")

	case cfg.SessionKey != "":
		cookies := sessions.NewCookieStore([]byte(cfg.SessionKey))
		cookies.Options.HttpOnly = true
		regOpts = append(regOpts, fbgraph.WithRegistryPersistentData(store.NewSession(cookies, "fbgraph")))
		log.Info("login state stored in session cookie")
	}

	registry := fbgraph.NewRegistry(regOpts...)
	defer registry.Close()

	srv := &server{
		log:         log,
		registry:    registry,
		facebook:    cfg.Facebook,
		metrics:     newMetrics(),
		redisClient: redisClient,
	}

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("address", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
