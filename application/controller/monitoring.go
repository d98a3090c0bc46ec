package controller

import (
	"errors"
	"net/http"

	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/constants"
	"invigil.io/application/controller/dto"
	"invigil.io/application/interfaces"
	"invigil.io/application/services/monitoring"
	"invigil.io/infrastructure/validator"
	server_response "invigil.io/infrastructure/serverResponse"
)

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func MonitorFrame(ctx *interfaces.ApplicationContext[dto.MonitorFrameDTO]) {
	if ctx.Body.Frame == "" {
		apperrors.ClientError(ctx.Ctx, "No frame provided", nil, nil, nil)
		return
	}
	userID, sessionID, ok := sessionIdentity(ctx, deref(ctx.Body.UserID), deref(ctx.Body.SessionID))
	if !ok {
		return
	}
	result := Services.Monitor.MonitorFrame(ctx.Context(), monitoring.FrameRequest{
		Frame:     ctx.Body.Frame,
		UserID:    userID,
		SessionID: sessionID,
	})
	if result.Status != "success" {
		apperrors.ClientError(ctx.Ctx, result.Message, result, nil, nil)
		return
	}
	var responseCode *uint
	for _, alert := range result.Alerts {
		if alert.Type == constants.AlertImpersonation {
			responseCode = &constants.IMPERSONATION_SUSPECTED
		}
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "Frame processed", result, nil, responseCode)
}

func VerifyID(ctx *interfaces.ApplicationContext[dto.VerifyIDDTO]) {
	if valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	if _, _, ok := sessionIdentity(ctx, ctx.Body.UserID, ""); !ok {
		return
	}
	result, err := Services.Monitor.VerifyID(ctx.Context(), monitoring.VerifyIDRequest{
		UserID: ctx.Body.UserID,
		Text:   deref(ctx.Body.Text),
		Image:  deref(ctx.Body.Image),
	})
	switch {
	case err == nil:
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "ID checked", result, nil, nil)
	case errors.Is(err, monitoring.ErrUserNotFound):
		apperrors.NotFoundError(ctx.Ctx, err.Error())
	case errors.Is(err, monitoring.ErrNothingToVerify),
		errors.Is(err, monitoring.ErrMalformedFrame),
		errors.Is(err, monitoring.ErrUnsupportedImage):
		apperrors.ClientError(ctx.Ctx, err.Error(), nil, nil, nil)
	case errors.Is(err, monitoring.ErrNoTextReader):
		apperrors.ExternalDependencyError(ctx.Ctx, "ocr", "503", err)
	default:
		apperrors.ExternalDependencyError(ctx.Ctx, "ocr", "500", err)
	}
}

func ListAlerts(ctx *interfaces.ApplicationContext[dto.ListAlertsDTO]) {
	if valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	if ctx.Body.UserID == "" && ctx.Body.SessionID == "" {
		apperrors.ClientError(ctx.Ctx, "Missing user_id or session_id", nil, nil, nil)
		return
	}
	alerts, err := Services.Alerts.ListAlerts(ctx.Context(), ctx.Body.UserID, ctx.Body.SessionID, ctx.Body.Limit)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "Alerts fetched", alerts, nil, nil)
}
