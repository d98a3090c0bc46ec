package entities

import (
	"time"

	"invigil.io/application/utils"
)

// MonitoringLog records one browser telemetry event. Only the fields of its eventType are set.
type MonitoringLog struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"userID" json:"userID"`
	SessionID     string    `bson:"sessionID" json:"sessionID"`
	EventType     string    `bson:"eventType" json:"eventType"`
	Visible       *bool     `bson:"visible,omitempty" json:"visible,omitempty"`
	Screenshot    *string   `bson:"screenshot,omitempty" json:"-"`
	CaptureType   *string   `bson:"captureType,omitempty" json:"captureType,omitempty"`
	Action        *string   `bson:"action,omitempty" json:"action,omitempty"`
	ContentLength *int      `bson:"contentLength,omitempty" json:"contentLength,omitempty"`
	Content       *string   `bson:"content,omitempty" json:"content,omitempty"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	FormattedTime string    `bson:"formattedTime" json:"formattedTime"`
}

func (model MonitoringLog) ParseModel() any {
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	if model.Timestamp.IsZero() {
		model.Timestamp = time.Now()
	}
	if model.FormattedTime == "" {
		model.FormattedTime = utils.FormatTimestamp(model.Timestamp)
	}
	return &model
}
