package entities

import (
	"time"

	"invigil.io/application/utils"
)

// UserArtifact indexes a detection artifact stored in the models bucket.
type UserArtifact struct {
	ID        string            `bson:"_id" json:"id"`
	UserID    string            `bson:"userID" json:"userID"`
	GridFSID  string            `bson:"gridfsID" json:"gridfsID"`
	Filename  string            `bson:"filename" json:"filename"`
	Metadata  map[string]string `bson:"metadata" json:"metadata"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

func (model UserArtifact) ParseModel() any {
	if model.ID == "" {
		model.ID = utils.GenerateUULDString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	return &model
}
