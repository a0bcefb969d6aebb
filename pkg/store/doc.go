// Package store provides persistent data handlers that keep small values,
// such as the CSRF state of a login request, across the redirect to the
// authorization dialog and back.
//
// Three implementations are available:
//
//   - Memory: process-local map with TTL and an optional janitor goroutine
//   - Redis: shared storage for multi-instance deployments (go-redis)
//   - Session: per-visitor storage in a gorilla/sessions session
//
// # Usage
//
//	h := store.NewMemory()
//	defer h.Close()
//
//	app := fbgraph.Create(id, secret).WithPersistentDataHandler(h)
//
// With Redis:
//
//	client := redis.MustOpen(ctx, os.Getenv("REDIS_URL"))
//	h := store.NewRedis(client, store.WithPrefix("login"))
//
// With a cookie session, the request and response must travel in the context:
//
//	h := store.NewSession(sessions.NewCookieStore(key), "fbgraph")
//	ctx := store.WithHTTP(r.Context(), w, r)
//
// # Error Handling
//
//   - ErrNotFound: key missing or expired
//   - ErrClosed: memory handler already closed
//   - ErrNoHTTPContext: Session used without WithHTTP
package store
