// Package health runs readiness checks and serves them over HTTP.
//
//	checker := health.New(health.WithTimeout(2 * time.Second)).
//	    Add("redis", redis.Healthcheck(client))
//	r.Get("/readyz", checker.Handler())
package health
