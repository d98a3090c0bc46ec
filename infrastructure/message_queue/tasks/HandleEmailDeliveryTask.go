package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"invigil.io/application/utils"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
	mq_types "invigil.io/infrastructure/message_queue/types"
	"invigil.io/infrastructure/messaging/emails"
)

var HandleAlertEmailTaskName mq_types.Queues = "send_alert_email"

const alertTemplate = "proctor_alert"

type AlertEmailPayload struct {
	To    string
	Alert emails.ProctorAlert
}

// HandleAlertEmailTask mails a critical alert to the proctor.
func HandleAlertEmailTask(service emails.EmailServiceType) mq_types.TaskHandler {
	return func(ctx context.Context, data []byte) error {
		var payload AlertEmailPayload
		err := json.Unmarshal(data, &payload)
		if err != nil {
			logger.Error("an error occured while unmarshalling alert email queue payload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		subject := fmt.Sprintf("[%s] %s", payload.Alert.Severity, payload.Alert.Message)
		if !service.SendEmail(payload.To, subject, alertTemplate, payload.Alert) {
			return fmt.Errorf("failed to send alert email to %s", payload.To)
		}
		return nil
	}
}

// AlertNotifier queues proctor e-mails for critical alerts.
type AlertNotifier struct {
	Queue mq_types.TaskQueueBroker
	To    string
}

func (n *AlertNotifier) NotifyCritical(ctx context.Context, alert entities.Alert) error {
	if n.To == "" {
		return nil
	}
	payload, err := json.Marshal(AlertEmailPayload{
		To: n.To,
		Alert: emails.ProctorAlert{
			AlertID:   alert.ID,
			UserID:    alert.UserID,
			SessionID: alert.SessionID,
			Type:      alert.Type,
			Severity:  alert.Severity,
			Message:   alert.Message,
			Time:      utils.FormatTimestamp(alert.Timestamp),
		},
	})
	if err != nil {
		return err
	}
	return n.Queue.Enqueue(ctx, mq_types.QueueTask{
		Name:     HandleAlertEmailTaskName,
		Payload:  payload,
		Priority: mq_types.High,
		MaxRetry: 5,
	})
}
