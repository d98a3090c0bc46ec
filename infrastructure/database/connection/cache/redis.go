package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"invigil.io/infrastructure/logger"
)

var (
	Client *redis.Client
)

func ConnectRedis(addr string, password string) error {
	opt := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		PoolSize: 10,
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warning("redis did not respond to ping", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}
	Client = client
	logger.Info("connected to redis successfully")
	return nil
}

func CleanUp() {
	if Client == nil {
		return
	}
	if err := Client.Close(); err != nil {
		logger.Warning("failed to close redis client", logger.LoggerOptions{Key: "error", Data: err})
	}
}
