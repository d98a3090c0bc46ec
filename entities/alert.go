package entities

import (
	"time"

	"invigil.io/application/utils"
)

type Alert struct {
	ID            string         `bson:"_id" json:"id"`
	UserID        string         `bson:"userID" json:"userID"`
	SessionID     string         `bson:"sessionID" json:"sessionID"`
	Type          string         `bson:"type" json:"type"`
	Severity      string         `bson:"severity" json:"severity"`
	Message       string         `bson:"message" json:"message"`
	Details       map[string]any `bson:"details,omitempty" json:"details,omitempty"`
	SnapshotID    *string        `bson:"snapshotID,omitempty" json:"snapshotID,omitempty"`
	Timestamp     time.Time      `bson:"timestamp" json:"timestamp"`
	FormattedTime string         `bson:"formattedTime" json:"formattedTime"`
}

func (model Alert) ParseModel() any {
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
