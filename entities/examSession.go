package entities

import (
	"time"

	"invigil.io/application/utils"
)

type SessionUserAgent struct {
	Name    string `bson:"name" json:"name"`
	Version string `bson:"version" json:"version"`
	OS      string `bson:"os" json:"os"`
	Device  string `bson:"device" json:"device"`
}

// SessionLocation is where the client address of a session resolves to.
type SessionLocation struct {
	CountryCode    string  `bson:"countryCode" json:"countryCode"`
	City           string  `bson:"city" json:"city"`
	Latitude       float64 `bson:"latitude" json:"latitude"`
	Longitude      float64 `bson:"longitude" json:"longitude"`
	AccuracyRadius int     `bson:"accuracyRadius" json:"accuracyRadius"`
}

type ExamSession struct {
	ID        string           `bson:"id" json:"id"`
	UserID    string           `bson:"userID" json:"userID"`
	StartedAt time.Time        `bson:"startedAt" json:"startedAt"`
	ExpiresAt time.Time        `bson:"expiresAt" json:"expiresAt"`
	UserAgent SessionUserAgent `bson:"userAgent" json:"userAgent"`
	ClientIP  string           `bson:"clientIP" json:"clientIP"`
	Location  *SessionLocation `bson:"location,omitempty" json:"location,omitempty"`
}

func (model ExamSession) ParseModel() any {
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	if model.StartedAt.IsZero() {
		model.StartedAt = time.Now()
	}
	return &model
}
