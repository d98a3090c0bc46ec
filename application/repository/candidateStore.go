package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"invigil.io/application/constants"
	"invigil.io/entities"
	"invigil.io/infrastructure/database/connection/datastore"
	"invigil.io/infrastructure/database/repository/blob"
	"invigil.io/infrastructure/database/repository/mongo"
	"invigil.io/infrastructure/logger"
)

var (
	ErrCandidateNotFound = errors.New("User not found")
	ErrNoFrames          = errors.New("no frames to save")
	ErrNoVideo           = errors.New("no enrollment video stored")
	ErrNoModel           = errors.New("no model stored for user")
)

// CandidateStore persists candidates together with their enrollment frames, video and detection
// artifacts.
type CandidateStore struct {
	users     *mongo.MongoRepository[entities.Candidate]
	frames    *mongo.MongoRepository[entities.UserFrame]
	artifacts *mongo.MongoRepository[entities.UserArtifact]
	videos    *blob.GridFSRepository
	models    *blob.GridFSRepository
}

func NewCandidateStore() *CandidateStore {
	return &CandidateStore{
		users:     UserRepo(),
		frames:    UserFrameRepo(),
		artifacts: UserArtifactRepo(),
		videos:    blob.NewGridFSRepository(datastore.VideoBucket),
		models:    blob.NewGridFSRepository(datastore.ArtifactBucket),
	}
}

func (s *CandidateStore) PersistUser(ctx context.Context, candidate entities.Candidate) (*entities.Candidate, error) {
	return s.users.CreateOne(ctx, candidate)
}

// FetchUser returns nil when no candidate has id.
func (s *CandidateStore) FetchUser(_ context.Context, id string) (*entities.Candidate, error) {
	return s.users.FindOneByFilter(map[string]interface{}{"id": id})
}

func (s *CandidateStore) FetchCompletedUsers(_ context.Context) ([]entities.Candidate, error) {
	users, err := s.users.FindMany(map[string]interface{}{"status": constants.StatusCompletedSuccessfully})
	if err != nil {
		return nil, err
	}
	return *users, nil
}

// UpdateUser sets fields on the candidate and bumps updatedAt.
func (s *CandidateStore) UpdateUser(_ context.Context, id string, fields map[string]interface{}) error {
	payload := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["updatedAt"] = time.Now()
	matched, err := s.users.UpdatePartialByFilter(map[string]interface{}{"id": id}, payload)
	if err != nil {
		return err
	}
	if matched == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// StoreFrames replaces the candidate's enrollment frames and marks them as stored on the candidate.
func (s *CandidateStore) StoreFrames(ctx context.Context, userID string, frames []entities.UserFrame) (int, error) {
	if len(frames) == 0 {
		return 0, ErrNoFrames
	}
	docs := make([]entities.UserFrame, 0, len(frames))
	for i, f := range frames {
		f.UserID = userID
		if f.FrameID == 0 {
			f.FrameID = i
		}
		docs = append(docs, f)
	}
	if _, err := s.frames.DeleteByFilter(ctx, map[string]interface{}{"userID": userID}); err != nil {
		return 0, err
	}
	count, err := s.frames.CreateBulk(ctx, docs)
	if err != nil {
		return 0, err
	}
	err = s.UpdateUser(ctx, userID, map[string]interface{}{
		"framesStoredInDB": true,
		"framesCountInDB":  count,
		"framesStoredAt":   time.Now(),
	})
	if err != nil {
		return count, err
	}
	logger.Info("enrollment frames stored", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "count", Data: count})
	return count, nil
}

func (s *CandidateStore) FetchFrames(_ context.Context, userID string) ([]entities.UserFrame, error) {
	frames, err := s.frames.FindMany(map[string]interface{}{"userID": userID}, mongo.FindOptions{
		Sort: map[string]interface{}{"frameID": 1},
	})
	if err != nil {
		return nil, err
	}
	return *frames, nil
}

// SaveVideo uploads the enrollment video and returns its file id.
func (s *CandidateStore) SaveVideo(ctx context.Context, userID string, data []byte) (string, error) {
	return s.videos.Upload(ctx, fmt.Sprintf("%s.webm", userID), data, map[string]string{"userID": userID})
}

func (s *CandidateStore) OpenVideo(ctx context.Context, userID string) ([]byte, error) {
	candidate, err := s.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}
	if candidate.VideoFileID == nil {
		return nil, ErrNoVideo
	}
	return s.videos.Download(ctx, *candidate.VideoFileID)
}

func ModelFilename(userID string) string {
	return fmt.Sprintf("user_%s.pt", userID)
}

// SaveModel stores a detection artifact in the models bucket, indexes it in user_models and links
// it from the candidate.
func (s *CandidateStore) SaveModel(ctx context.Context, userID string, data []byte, metadata map[string]string) (string, error) {
	meta := map[string]string{"userID": userID}
	for k, v := range metadata {
		meta[k] = v
	}
	filename := ModelFilename(userID)
	fileID, err := s.models.Upload(ctx, filename, data, meta)
	if err != nil {
		return "", err
	}
	if _, err := s.artifacts.CreateOne(ctx, entities.UserArtifact{
		UserID:   userID,
		GridFSID: fileID,
		Filename: filename,
		Metadata: meta,
	}); err != nil {
		return "", err
	}
	if err := s.UpdateUser(ctx, userID, map[string]interface{}{
		"modelStoredInDB": true,
		"modelDBID":       fileID,
		"modelStoredAt":   time.Now(),
	}); err != nil && !errors.Is(err, ErrCandidateNotFound) {
		return fileID, err
	}
	return fileID, nil
}

// FetchModel returns the latest artifact stored for the candidate with its metadata.
func (s *CandidateStore) FetchModel(ctx context.Context, userID string) ([]byte, map[string]string, error) {
	artifact, err := s.artifacts.FindOneByFilter(map[string]interface{}{"userID": userID},
		options.FindOne().SetSort(map[string]interface{}{"createdAt": -1}))
	if err != nil {
		return nil, nil, err
	}
	if artifact == nil {
		return nil, nil, ErrNoModel
	}
	data, err := s.models.Download(ctx, artifact.GridFSID)
	if err != nil {
		return nil, nil, err
	}
	return data, artifact.Metadata, nil
}

// ModelExists reports whether an artifact file is already stored for the candidate.
func (s *CandidateStore) ModelExists(ctx context.Context, userID string) (bool, error) {
	return s.models.Exists(ctx, ModelFilename(userID))
}

// MarkError records an unexpected enrollment failure on the candidate.
func (s *CandidateStore) MarkError(ctx context.Context, userID string, errorType string, cause error) error {
	return s.UpdateUser(ctx, userID, map[string]interface{}{
		"status":       constants.StatusError,
		"errorType":    errorType,
		"errorMessage": cause.Error(),
		"errorTime":    time.Now(),
	})
}
