package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/fbgraph/pkg/logger"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Check reports whether one dependency is usable, e.g. redis.Healthcheck(client).
type Check func(ctx context.Context) error

// Report is the outcome of running every check.
type Report struct {
	Checks map[string]string `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Checker runs named checks concurrently under a shared timeout.
type Checker struct {
	logger  *slog.Logger
	checks  map[string]Check
	timeout time.Duration
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds a whole run. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Checker without checks.
func New(opts ...Option) *Checker {
	c := &Checker{
		logger:  logger.NewNope(),
		checks:  make(map[string]Check),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers a check under name. Nil checks are ignored.
func (c *Checker) Add(name string, check Check) *Checker {
	if check != nil {
		c.checks[name] = check
	}
	return c
}

// Run executes all checks. The report is down if any check fails.
func (c *Checker) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = Report{Status: StatusUp, Checks: make(map[string]string, len(c.checks))}
		g      errgroup.Group
	)
	for name, check := range c.checks {
		g.Go(func() error {
			status := StatusUp
			if err := check(ctx); err != nil {
				status = StatusDown
				c.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = status
			if status == StatusDown {
				report.Status = StatusDown
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// Handler serves the report as JSON, with 503 when down.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		status := http.StatusOK
		if report.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	}
}
