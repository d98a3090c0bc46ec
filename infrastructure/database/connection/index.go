package connection

import (
	"invigil.io/infrastructure/database/connection/cache"
	"invigil.io/infrastructure/database/connection/datastore"
	"invigil.io/infrastructure/env"
	"invigil.io/infrastructure/logger"
)

// ConnectToDatabase connects mongodb, which is required, and redis when an address is configured.
func ConnectToDatabase(cfg *env.Config) error {
	if err := datastore.ConnectMongo(cfg.Database.URL, cfg.Database.Name); err != nil {
		return err
	}
	if !cfg.Redis.Enabled() {
		logger.Info("redis not configured, using in-memory cooldown and counters")
		return nil
	}
	if err := cache.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password); err != nil {
		logger.Warning("continuing without redis", logger.LoggerOptions{Key: "error", Data: err})
	}
	return nil
}

func CleanUp() {
	cache.CleanUp()
	datastore.CleanUp()
}
