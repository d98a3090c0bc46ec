package registration_usecases

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"invigil.io/application/constants"
	"invigil.io/infrastructure/logger"
)

// SaveVideo stores the enrollment recording sent as a data URL and queues it for processing.
func (uc *RegistrationUseCases) SaveVideo(ctx context.Context, userID string, videoData string) error {
	if userID == "" || videoData == "" {
		return ErrMissingVideoFields
	}
	_, payload, found := strings.Cut(videoData, ",")
	if !found {
		return ErrVideoFormat
	}
	video, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		logger.Warning("enrollment video is not valid base64", logger.LoggerOptions{
			Key:  "userID",
			Data: userID,
		})
		return ErrVideoEncoding
	}

	candidate, err := uc.Store.FetchUser(ctx, userID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return ErrUserNotFound
	}

	if len(video) < constants.MIN_VIDEO_BYTES {
		logger.Warning(fmt.Sprintf("video file too small: %d bytes", len(video)), logger.LoggerOptions{
			Key:  "userID",
			Data: userID,
		})
		if err = uc.Store.UpdateUser(ctx, userID, map[string]interface{}{"status": constants.StatusVideoTooSmall}); err != nil {
			return err
		}
		return ErrVideoTooSmall
	}

	fileID, err := uc.Store.SaveVideo(ctx, userID, video)
	if err != nil {
		return err
	}
	err = uc.Store.UpdateUser(ctx, userID, map[string]interface{}{
		"videoSaved":   true,
		"videoSavedAt": uc.now(),
		"videoFileID":  fileID,
		"status":       constants.StatusVideoCaptured,
	})
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("video saved, size: %d bytes", len(video)), logger.LoggerOptions{
		Key:  "userID",
		Data: userID,
	})
	return uc.Schedule(ctx, uc.Queue, userID)
}
