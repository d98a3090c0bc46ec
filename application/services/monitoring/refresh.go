package monitoring

import (
	"context"

	"invigil.io/application/constants"
	"invigil.io/infrastructure/logger"
)

// ListenForRefresh reloads a candidate's signature whenever a user id is published on the
// refresh channel, so every instance picks up new enrollments.
func (e *Engine) ListenForRefresh(ctx context.Context, subscriber Subscriber) error {
	return subscriber.Subscribe(ctx, constants.SIGNATURE_REFRESH_CHANNEL, func(userID string) {
		if err := e.Refresh(ctx, userID); err != nil {
			logger.Error("failed to refresh face signature", logger.LoggerOptions{Key: "userID", Data: userID}, logger.LoggerOptions{Key: "error", Data: err})
			return
		}
		logger.Info("face signature refreshed", logger.LoggerOptions{Key: "userID", Data: userID})
	})
}
