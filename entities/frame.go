package entities

import (
	"time"

	"invigil.io/application/utils"
)

// UserFrame is one enrollment frame, kept as base64 jpeg together with its YOLO label line.
type UserFrame struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"userID" json:"userID"`
	FrameID    int       `bson:"frameID" json:"frameID"`
	ImageData  string    `bson:"imageData" json:"imageData"`
	Annotation string    `bson:"annotation" json:"annotation"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

func (model UserFrame) ParseModel() any {
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	return &model
}
