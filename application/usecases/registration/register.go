package registration_usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"invigil.io/application/constants"
	"invigil.io/application/controller/dto"
	"invigil.io/application/repository"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
	mq_types "invigil.io/infrastructure/message_queue/types"
)

type CandidateStore interface {
	PersistUser(ctx context.Context, candidate entities.Candidate) (*entities.Candidate, error)
	FetchUser(ctx context.Context, id string) (*entities.Candidate, error)
	UpdateUser(ctx context.Context, id string, fields map[string]interface{}) error
	SaveVideo(ctx context.Context, userID string, data []byte) (string, error)
}

// EnrollmentScheduler hands a captured video to the enrollment worker.
type EnrollmentScheduler func(ctx context.Context, queue mq_types.TaskQueueBroker, userID string) error

type RegistrationUseCases struct {
	Store    CandidateStore
	Queue    mq_types.TaskQueueBroker
	Schedule EnrollmentScheduler
	Now      func() time.Time
}

func (uc *RegistrationUseCases) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *RegistrationUseCases) Register(ctx context.Context, payload *dto.RegisterCandidateDTO) (*entities.Candidate, error) {
	candidate, err := uc.Store.PersistUser(ctx, entities.Candidate{
		ID:                   uuid.NewString(),
		Name:                 strings.TrimSpace(payload.Name),
		Email:                strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:                payload.Phone,
		Education:            payload.Education,
		IDNumber:             payload.IDNumber,
		Status:               constants.StatusInitiated,
		RegistrationTime:     uc.now(),
		RegistrationComplete: false,
	})
	if err != nil {
		logger.Error("could not persist candidate", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	logger.Info("candidate registered", logger.LoggerOptions{
		Key:  "userID",
		Data: candidate.ID,
	})
	return candidate, nil
}

// SkipProcessing lets the candidate continue without waiting for enrollment processing.
func (uc *RegistrationUseCases) SkipProcessing(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserIDBody
	}
	err := uc.Store.UpdateUser(ctx, userID, map[string]interface{}{
		"status":              constants.StatusProcessingSkipped,
		"processingSkippedAt": uc.now(),
	})
	if errors.Is(err, repository.ErrCandidateNotFound) {
		return ErrUserNotFound
	}
	return err
}
