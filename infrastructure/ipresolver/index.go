package ipresolver

import (
	"invigil.io/infrastructure/ipresolver/maxmind"
	"invigil.io/infrastructure/logger"
)

// IPResolverInstance stays nil when no GeoLite2 database is configured.
var IPResolverInstance *maxmind.MaxMindIPResolver

func InitialiseIPResolver(dbPath string) {
	if dbPath == "" {
		logger.Info("GEOIP_DB_PATH not set, session locations will not be recorded")
		return
	}
	resolver, err := maxmind.Open(dbPath)
	if err != nil {
		logger.Error("could not open the GeoLite2 database", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	IPResolverInstance = resolver
}

func CleanUp() {
	if IPResolverInstance != nil {
		IPResolverInstance.Close()
		IPResolverInstance = nil
	}
}
