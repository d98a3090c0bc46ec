package entities

import (
	"time"

	"invigil.io/application/utils"
)

type ViolationSnapshot struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userID" json:"userID"`
	SessionID string    `bson:"sessionID" json:"sessionID"`
	AlertID   string    `bson:"alertID" json:"alertID"`
	AlertType string    `bson:"alertType" json:"alertType"`
	Location  string    `bson:"location" json:"location"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (model ViolationSnapshot) ParseModel() any {
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	return &model
}
