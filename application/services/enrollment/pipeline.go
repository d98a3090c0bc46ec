package enrollment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"invigil.io/application/constants"
	"invigil.io/application/services/monitoring"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
	vtypes "invigil.io/infrastructure/vision/types"
)

var ErrUnknownCandidate = errors.New("candidate does not exist")

// Store is the persistence the pipeline needs.
type Store interface {
	FetchUser(ctx context.Context, id string) (*entities.Candidate, error)
	UpdateUser(ctx context.Context, id string, fields map[string]interface{}) error
	OpenVideo(ctx context.Context, userID string) ([]byte, error)
	StoreFrames(ctx context.Context, userID string, frames []entities.UserFrame) (int, error)
	SaveModel(ctx context.Context, userID string, data []byte, metadata map[string]string) (string, error)
	MarkError(ctx context.Context, userID string, errorType string, cause error) error
}

// Publisher announces finished enrollments so monitoring instances reload the signature.
type Publisher interface {
	Publish(ctx context.Context, channel string, message string) error
}

// Pipeline turns a stored enrollment video into frames, a face signature and a detection artifact.
type Pipeline struct {
	store     Store
	extractor FrameExtractor
	encoder   vtypes.FaceEncoder
	publisher Publisher
	now       func() time.Time
}

func NewPipeline(store Store, extractor FrameExtractor, encoder vtypes.FaceEncoder, publisher Publisher) *Pipeline {
	return &Pipeline{store: store, extractor: extractor, encoder: encoder, publisher: publisher, now: time.Now}
}

// Process runs every enrollment step for userID. Expected failures end in a terminal status on the
// candidate and a nil error; anything else is recorded as status error and returned.
func (p *Pipeline) Process(ctx context.Context, userID string) error {
	err := p.process(ctx, userID)
	if err == nil || errors.Is(err, ErrUnknownCandidate) {
		return err
	}
	logger.Error("enrollment processing failed", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
	if markErr := p.store.MarkError(ctx, userID, "processing_error", err); markErr != nil {
		logger.Error("failed to record enrollment error", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: markErr})
	}
	return err
}

func (p *Pipeline) setStatus(ctx context.Context, userID string, status string, extra map[string]interface{}) error {
	fields := map[string]interface{}{"status": status}
	for k, v := range extra {
		fields[k] = v
	}
	return p.store.UpdateUser(ctx, userID, fields)
}

func (p *Pipeline) process(ctx context.Context, userID string) error {
	candidate, err := p.store.FetchUser(ctx, userID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return ErrUnknownCandidate
	}
	// a candidate who skips waiting still gets enrolled, skipping only hides the progress page
	if candidate.Status == constants.StatusProcessingSkipped {
		logger.Info("candidate skipped the progress page, processing anyway", logger.LoggerOptions{Key: "userID", Data: userID})
	}

	video, err := p.store.OpenVideo(ctx, userID)
	if err != nil {
		return fmt.Errorf("open enrollment video: %w", err)
	}

	frames, err := p.extractor.Extract(ctx, video)
	if err != nil {
		return p.setStatus(ctx, userID, constants.StatusFrameExtractionFailed, map[string]interface{}{"errorMessage": "Failed to extract frames from video"})
	}
	if len(frames) == 0 {
		return p.setStatus(ctx, userID, constants.StatusNoFramesExtracted, map[string]interface{}{"errorMessage": "No frames could be extracted from video"})
	}
	if err := p.setStatus(ctx, userID, constants.StatusFrameExtractionComplete, nil); err != nil {
		return err
	}
	logger.Info("enrollment frames extracted", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "count", Data: len(frames)})

	records := make([]entities.UserFrame, 0, len(frames))
	usable := make([][]byte, 0, len(frames))
	for i, frame := range frames {
		label, err := AnnotateFrame(frame)
		if err != nil {
			logger.Warning("skipping unreadable enrollment frame", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "frame", Data: i}, logger.LoggerOptions{Key: "error", Data: err})
			continue
		}
		usable = append(usable, frame)
		records = append(records, entities.UserFrame{
			UserID:     userID,
			FrameID:    i,
			ImageData:  base64.StdEncoding.EncodeToString(frame),
			Annotation: label,
		})
	}

	if len(usable) == 0 {
		return p.setStatus(ctx, userID, constants.StatusAnnotationFailed, map[string]interface{}{"errorMessage": "Annotation generation failed"})
	}

	if _, err := p.store.StoreFrames(ctx, userID, records); err != nil {
		logger.Warning("failed to store enrollment frames, continuing", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
	}

	p.deriveSignature(ctx, userID, usable)

	if err := p.setStatus(ctx, userID, constants.StatusModelTrainingStarted, nil); err != nil {
		return err
	}
	final := constants.StatusCompletedSuccessfully
	if err := p.storeArtifact(ctx, userID, len(usable)); err != nil {
		logger.Warning("detection artifact failed, completing without model", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
		final = constants.StatusCompletedWithoutModel
	}
	if err := p.setStatus(ctx, userID, final, map[string]interface{}{
		"registrationComplete":    true,
		"registrationCompletedAt": p.now(),
	}); err != nil {
		return err
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, constants.SIGNATURE_REFRESH_CHANNEL, userID); err != nil {
			logger.Warning("failed to announce enrollment", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
		}
	}
	logger.Info("enrollment completed", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "status", Data: final})
	return nil
}

// deriveSignature averages the first face of every frame. Frames without a face are skipped and
// a video without any face leaves the candidate unsigned.
func (p *Pipeline) deriveSignature(ctx context.Context, userID string, frames [][]byte) {
	if p.encoder == nil {
		return
	}
	var encodings [][]float64
	for _, frame := range frames {
		faces, err := p.encoder.Encode(ctx, frame)
		if err != nil {
			logger.Warning("face encoder unavailable during enrollment", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
			return
		}
		if len(faces) > 0 {
			encodings = append(encodings, faces[0].Encoding)
		}
	}
	if len(encodings) == 0 {
		logger.Warning("no face found in enrollment video", logger.LoggerOptions{Key: "userID", Data: userID})
		return
	}
	if err := p.store.UpdateUser(ctx, userID, map[string]interface{}{
		"faceSignature":   monitoring.MeanEncoding(encodings),
		"signatureFrames": len(encodings),
	}); err != nil {
		logger.Warning("failed to persist face signature", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
	}
}

func (p *Pipeline) storeArtifact(ctx context.Context, userID string, frameCount int) error {
	createdAt := p.now()
	artifact, err := BuildArtifact(userID, frameCount, createdAt)
	if err != nil {
		return err
	}
	if _, err := p.store.SaveModel(ctx, userID, artifact.Model, artifact.StorageMetadata(frameCount, createdAt)); err != nil {
		return err
	}
	return p.store.UpdateUser(ctx, userID, map[string]interface{}{
		"modelCreated": true,
		"modelType":    ModelTypeSimplified,
		"framesCount":  frameCount,
	})
}
