package controller

import (
	"errors"
	"net/http"

	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/constants"
	"invigil.io/application/controller/dto"
	"invigil.io/application/interfaces"
	"invigil.io/application/services/monitoring"
	server_response "invigil.io/infrastructure/serverResponse"
)

func stringField(event map[string]any, key string) string {
	value, _ := event[key].(string)
	return value
}

func numberField(event map[string]any, key string) *float64 {
	switch value := event[key].(type) {
	case float64:
		return &value
	case int:
		f := float64(value)
		return &f
	}
	return nil
}

func zeroIfNil(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

type telemetryCall func(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) (*monitoring.TelemetryResult, error)

func logTelemetry(ctx *interfaces.ApplicationContext[dto.TelemetryDTO], call telemetryCall) {
	userID, sessionID, ok := sessionIdentity(ctx, ctx.Body.UserID, ctx.Body.SessionID)
	if !ok {
		return
	}
	ctx.Body.UserID, ctx.Body.SessionID = userID, sessionID
	if ctx.Body.Event == nil {
		ctx.Body.Event = map[string]any{}
	}
	result, err := call(ctx)
	if errors.Is(err, monitoring.ErrMissingIdentifiers) {
		apperrors.ClientError(ctx.Ctx, err.Error(), nil, nil, nil)
		return
	}
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	var responseCode *uint
	if result.Blocked != nil && *result.Blocked {
		responseCode = &constants.COPY_PASTE_BLOCKED
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "Event logged", result, nil, responseCode)
}

func LogTabSwitch(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) {
	logTelemetry(ctx, func(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) (*monitoring.TelemetryResult, error) {
		event := monitoring.TabSwitchEvent{Screenshot: stringField(ctx.Body.Event, "screenshot")}
		if visible, ok := ctx.Body.Event["visible"].(bool); ok {
			event.Visible = &visible
		}
		return Services.Telemetry.LogTabSwitch(ctx.Context(), ctx.Body.UserID, ctx.Body.SessionID, event)
	})
}

func LogMouseMovement(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) {
	logTelemetry(ctx, func(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) (*monitoring.TelemetryResult, error) {
		movement := ctx.Body.Movement
		if movement == nil {
			movement = ctx.Body.Event
		}
		return Services.Telemetry.LogMouseMovement(ctx.Context(), ctx.Body.UserID, ctx.Body.SessionID, monitoring.MouseEvent{
			X:            zeroIfNil(numberField(movement, "x")),
			Y:            zeroIfNil(numberField(movement, "y")),
			ScreenWidth:  numberField(movement, "screenWidth"),
			ScreenHeight: numberField(movement, "screenHeight"),
		})
	})
}

func DetectScreenCapture(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) {
	logTelemetry(ctx, func(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) (*monitoring.TelemetryResult, error) {
		return Services.Telemetry.DetectScreenCapture(ctx.Context(), ctx.Body.UserID, ctx.Body.SessionID, monitoring.ScreenCaptureEvent{
			Type: stringField(ctx.Body.Event, "type"),
		})
	})
}

func LogCopyPaste(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) {
	logTelemetry(ctx, func(ctx *interfaces.ApplicationContext[dto.TelemetryDTO]) (*monitoring.TelemetryResult, error) {
		return Services.Telemetry.LogCopyPaste(ctx.Context(), ctx.Body.UserID, ctx.Body.SessionID, monitoring.ClipboardEvent{
			Type:    stringField(ctx.Body.Event, "type"),
			Content: stringField(ctx.Body.Event, "content"),
		})
	})
}
