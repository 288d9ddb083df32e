package onetimetoken

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "secretboard:onetimetoken:"

// Удаляем ключ только если в нём лежит именно предъявленный токен.
var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisBackend позволяет нескольким экземплярам сервера делить токены.
type RedisBackend struct {
	client redis.UniversalClient
	ttl    time.Duration // 0 - без срока жизни
}

func NewRedisBackend(client redis.UniversalClient, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisBackend) Put(ctx context.Context, userName, token string) error {
	return r.client.Set(ctx, redisKeyPrefix+userName, token, r.ttl).Err()
}

func (r *RedisBackend) CompareAndDelete(ctx context.Context, userName, token string) (bool, error) {
	deleted, err := compareAndDeleteScript.Run(ctx, r.client, []string{redisKeyPrefix + userName}, token).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
