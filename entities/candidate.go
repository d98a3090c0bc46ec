package entities

import (
	"time"
)

// Candidate is a person registered to sit an exam. Its id is a uuid handed to the browser at
// registration, stored alongside the mongo _id.
type Candidate struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Email     string  `bson:"email" json:"email"`
	Phone     string  `bson:"phone" json:"phone"`
	Education string  `bson:"education" json:"education"`
	IDNumber  *string `bson:"idNumber,omitempty" json:"idNumber,omitempty"`

	Status                  string     `bson:"status" json:"status"`
	RegistrationTime        time.Time  `bson:"registrationTime" json:"registrationTime"`
	RegistrationComplete    bool       `bson:"registrationComplete" json:"registrationComplete"`
	RegistrationCompletedAt *time.Time `bson:"registrationCompletedAt,omitempty" json:"registrationCompletedAt,omitempty"`
	ProcessingSkippedAt     *time.Time `bson:"processingSkippedAt,omitempty" json:"processingSkippedAt,omitempty"`

	VideoSaved   bool       `bson:"videoSaved" json:"videoSaved"`
	VideoSavedAt *time.Time `bson:"videoSavedAt,omitempty" json:"videoSavedAt,omitempty"`
	VideoFileID  *string    `bson:"videoFileID,omitempty" json:"-"`

	FramesStoredInDB bool       `bson:"framesStoredInDB" json:"framesStoredInDB"`
	FramesCountInDB  int        `bson:"framesCountInDB" json:"framesCountInDB"`
	FramesStoredAt   *time.Time `bson:"framesStoredAt,omitempty" json:"framesStoredAt,omitempty"`

	FaceSignature   []float64 `bson:"faceSignature,omitempty" json:"-"`
	SignatureFrames int       `bson:"signatureFrames" json:"signatureFrames"`

	ModelCreated    bool       `bson:"modelCreated" json:"modelCreated"`
	ModelType       *string    `bson:"modelType,omitempty" json:"modelType,omitempty"`
	FramesCount     int        `bson:"framesCount" json:"framesCount"`
	ModelStoredInDB bool       `bson:"modelStoredInDB" json:"modelStoredInDB"`
	ModelDBID       *string    `bson:"modelDBID,omitempty" json:"-"`
	ModelStoredAt   *time.Time `bson:"modelStoredAt,omitempty" json:"modelStoredAt,omitempty"`

	ErrorType    *string    `bson:"errorType,omitempty" json:"errorType,omitempty"`
	ErrorMessage *string    `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	ErrorTime    *time.Time `bson:"errorTime,omitempty" json:"errorTime,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model Candidate) ParseModel() any {
	now := time.Now()
	if model.RegistrationTime.IsZero() {
		model.RegistrationTime = now
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	return &model
}
