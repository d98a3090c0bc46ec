package queue_tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"invigil.io/application/services/enrollment"
	"invigil.io/infrastructure/logger"
	mq_types "invigil.io/infrastructure/message_queue/types"
)

var HandleProcessEnrollmentTaskName mq_types.Queues = "process_enrollment"

type ProcessEnrollmentPayload struct {
	UserID string
}

type EnrollmentProcessor interface {
	Process(ctx context.Context, userID string) error
}

func HandleProcessEnrollmentTask(processor EnrollmentProcessor) mq_types.TaskHandler {
	return func(ctx context.Context, data []byte) error {
		var payload ProcessEnrollmentPayload
		err := json.Unmarshal(data, &payload)
		if err != nil || payload.UserID == "" {
			logger.Error("an error occured while unmarshalling enrollment queue payload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return fmt.Errorf("%w: invalid enrollment payload", asynq.SkipRetry)
		}
		err = processor.Process(ctx, payload.UserID)
		if errors.Is(err, enrollment.ErrUnknownCandidate) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}
}

// EnqueueEnrollment schedules frame extraction and signature derivation for userID.
func EnqueueEnrollment(ctx context.Context, queue mq_types.TaskQueueBroker, userID string) error {
	payload, err := json.Marshal(ProcessEnrollmentPayload{UserID: userID})
	if err != nil {
		return err
	}
	return queue.Enqueue(ctx, mq_types.QueueTask{
		Name:     HandleProcessEnrollmentTaskName,
		Payload:  payload,
		Priority: mq_types.Medium,
		TimeOut:  300,
		MaxRetry: 3,
	})
}
