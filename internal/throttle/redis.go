package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Redis shares pause windows between instances using SET NX with a TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "could not connect to Redis")
	}
	return NewRedisWithClient(client), nil
}

func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "iot:command"}
}

func (r *Redis) Allow(ctx context.Context, key string, pause time.Duration) (bool, error) {
	if pause <= 0 {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, fmt.Sprintf("%s:%s", r.prefix, key), time.Now().UnixNano(), pause).Result()
	if err != nil {
		return false, errors.Wrap(err, "throttle check")
	}
	return ok, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
