package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	redisClient "invigil.io/infrastructure/database/connection/cache"
	"invigil.io/infrastructure/logger"
)

var ErrNoClient = errors.New("redis client not configured")

type RedisRepository struct {
	Client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{Client: client}
}

func (redisRepo *RedisRepository) preRequest() error {
	if redisRepo.Client == nil {
		if redisClient.Client == nil {
			return ErrNoClient
		}
		redisRepo.Client = redisClient.Client
		logger.Info("redis repository initialisation complete")
	}
	return nil
}

// Available reports whether the repository has a client to talk to.
func (redisRepo *RedisRepository) Available() bool {
	return redisRepo.preRequest() == nil
}

func (redisRepo *RedisRepository) CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool {
	if err := redisRepo.preRequest(); err != nil {
		return false
	}
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

// CreateIfAbsent sets key only when it does not exist yet. The boolean is true when this call created it.
func (redisRepo *RedisRepository) CreateIfAbsent(ctx context.Context, key string, payload interface{}, ttl time.Duration) (bool, error) {
	if err := redisRepo.preRequest(); err != nil {
		return false, err
	}
	created, err := redisRepo.Client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateIfAbsent", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false, err
	}
	return created, nil
}

func (redisRepo *RedisRepository) FindOne(ctx context.Context, key string) *string {
	if err := redisRepo.preRequest(); err != nil {
		return nil
	}
	result, err := redisRepo.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		logger.Error("redis error occured while running FindOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

func (redisRepo *RedisRepository) DeleteOne(ctx context.Context, key string) bool {
	if err := redisRepo.preRequest(); err != nil {
		return false
	}
	result, err := redisRepo.Client.Del(ctx, key).Result()
	if err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return result == 1
}

// IncrementField increments key by amount. A positive ttl is applied when the key is first created.
func (redisRepo *RedisRepository) IncrementField(ctx context.Context, key string, amount int64, ttl time.Duration) (int64, error) {
	if err := redisRepo.preRequest(); err != nil {
		return 0, err
	}
	result, err := redisRepo.Client.IncrBy(ctx, key, amount).Result()
	if err != nil {
		logger.Error("redis error occured while running IncrementField", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0, err
	}
	if ttl > 0 && result == amount {
		redisRepo.Client.Expire(ctx, key, ttl)
	}
	return result, nil
}

func (redisRepo *RedisRepository) Publish(ctx context.Context, channel string, message string) error {
	if err := redisRepo.preRequest(); err != nil {
		return err
	}
	if err := redisRepo.Client.Publish(ctx, channel, message).Err(); err != nil {
		logger.Error("redis error occured while running Publish", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "channel",
			Data: channel,
		})
		return err
	}
	return nil
}

// Subscribe calls handler with every payload published on channel until ctx is cancelled.
func (redisRepo *RedisRepository) Subscribe(ctx context.Context, channel string, handler func(payload string)) error {
	if err := redisRepo.preRequest(); err != nil {
		return err
	}
	pubsub := redisRepo.Client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}
	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				handler(msg.Payload)
			}
		}
	}()
	return nil
}
