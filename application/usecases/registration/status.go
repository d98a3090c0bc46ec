package registration_usecases

import (
	"context"
	"fmt"

	"invigil.io/application/constants"
	"invigil.io/entities"
)

type ProcessingStatus struct {
	Status   string  `json:"status"`
	Progress *int    `json:"progress,omitempty"`
	Step     *string `json:"step,omitempty"`
	Message  *string `json:"message,omitempty"`
}

func progress(status string, percent int, step string) ProcessingStatus {
	return ProcessingStatus{Status: status, Progress: &percent, Step: &step}
}

// StatusOf maps a registration status to what the enrollment page shows.
func StatusOf(candidate *entities.Candidate) ProcessingStatus {
	switch candidate.Status {
	case constants.StatusCompletedSuccessfully, constants.StatusCompletedWithoutModel:
		return progress("completed", 100, "Processing complete")
	case constants.StatusError, constants.StatusFrameExtractionFailed, constants.StatusVideoTooSmall,
		constants.StatusAnnotationFailed, constants.StatusNoFramesExtracted:
		message := fmt.Sprintf("Processing failed: %s", candidate.Status)
		if candidate.ErrorMessage != nil && *candidate.ErrorMessage != "" {
			message = *candidate.ErrorMessage
		}
		return ProcessingStatus{Status: "failed", Message: &message}
	case constants.StatusVideoCaptured:
		return progress("processing", 30, "Extracting frames from video...")
	case constants.StatusFrameExtractionComplete:
		return progress("processing", 50, "Generating annotations...")
	case constants.StatusModelTrainingStarted:
		return progress("processing", 75, "Training recognition model...")
	case constants.StatusProcessingSkipped:
		return progress("completed", 100, "Processing skipped")
	default:
		return progress("processing", 50, "Processing your video...")
	}
}

func (uc *RegistrationUseCases) ProcessingStatus(ctx context.Context, userID string) (*ProcessingStatus, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	candidate, err := uc.Store.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, ErrUserNotFound
	}
	status := StatusOf(candidate)
	return &status, nil
}

type CandidateView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`

	Candidate *entities.Candidate `json:"candidate,omitempty"`
}

// Candidate returns what the confirmation, monitor and exam pages render. Unknown ids get a
// placeholder so the pages still load.
func (uc *RegistrationUseCases) Candidate(ctx context.Context, userID string) (*CandidateView, error) {
	candidate, err := uc.Store.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return &CandidateView{ID: userID, Name: "Unknown", Email: "unknown@example.com", Status: "Unavailable"}, nil
	}
	return &CandidateView{
		ID:        candidate.ID,
		Name:      candidate.Name,
		Email:     candidate.Email,
		Status:    candidate.Status,
		Candidate: candidate,
	}, nil
}
