package entities

import (
	"time"

	"invigil.io/application/utils"
)

type MouseMovement struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"userID" json:"userID"`
	SessionID    string    `bson:"sessionID" json:"sessionID"`
	X            float64   `bson:"x" json:"x"`
	Y            float64   `bson:"y" json:"y"`
	ScreenWidth  float64   `bson:"screenWidth" json:"screenWidth"`
	ScreenHeight float64   `bson:"screenHeight" json:"screenHeight"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

func (model MouseMovement) ParseModel() any {
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	if model.Timestamp.IsZero() {
		model.Timestamp = time.Now()
	}
	return &model
}
