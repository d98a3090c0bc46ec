package maxmind

import (
	"errors"
	"net"

	"github.com/oschwald/maxminddb-golang"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
)

var ErrInvalidIP = errors.New("invalid ip address")

type MaxMindIPResolver struct {
	db *maxminddb.Reader
}

func Open(path string) (*MaxMindIPResolver, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to maxmind db successfully")
	return &MaxMindIPResolver{db: db}, nil
}

type maxmindLookupResult struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Longitude      float64 `maxminddb:"longitude"`
		Latitude       float64 `maxminddb:"latitude"`
		AccuracyRadius int     `maxminddb:"accuracy_radius"`
	} `maxminddb:"location"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// LookUp returns nil without an error for addresses the database has no record of, such as
// private ranges.
func (mmResolver *MaxMindIPResolver) LookUp(ipAddress string) (*entities.SessionLocation, error) {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, ErrInvalidIP
	}
	var result maxmindLookupResult
	if err := mmResolver.db.Lookup(ip, &result); err != nil {
		return nil, err
	}
	if result.Country.ISOCode == "" {
		return nil, nil
	}
	return &entities.SessionLocation{
		CountryCode:    result.Country.ISOCode,
		City:           result.City.Names["en"],
		Latitude:       result.Location.Latitude,
		Longitude:      result.Location.Longitude,
		AccuracyRadius: result.Location.AccuracyRadius,
	}, nil
}

func (mmResolver *MaxMindIPResolver) Close() {
	if mmResolver.db != nil {
		mmResolver.db.Close()
	}
}
