package rdx

import (
	"context"
	"time"

	"eventra/config"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

const cacheTTL = 10 * time.Minute

func Init(cfg config.RedisConfig) {
	Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func RdxSet(key, value string) error {
	return Client.Set(context.Background(), key, value, cacheTTL).Err()
}

func RdxGet(key string) (string, error) {
	return Client.Get(context.Background(), key).Result()
}

func RdxDel(key string) (int64, error) {
	return Client.Del(context.Background(), key).Result()
}

func RdxHset(hash, field, value string) error {
	return Client.HSet(context.Background(), hash, field, value).Err()
}
