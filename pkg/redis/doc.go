// Package redis opens the go-redis client backing the Redis login state store.
//
//	client, err := redis.Open(ctx, redis.Config{URL: os.Getenv("REDIS_URL")}, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	app := fbgraph.Create(id, secret).
//		WithPersistentDataHandler(store.NewRedis(client))
//
// Healthcheck returns a func(context.Context) error probe for readiness endpoints.
package redis
