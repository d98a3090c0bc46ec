package controller

import (
	"context"

	registration_usecases "invigil.io/application/usecases/registration"
	session_usecases "invigil.io/application/usecases/session"
	"invigil.io/application/services/monitoring"
	"invigil.io/entities"
)

type FrameMonitor interface {
	MonitorFrame(ctx context.Context, req monitoring.FrameRequest) monitoring.FrameResult
	VerifyID(ctx context.Context, req monitoring.VerifyIDRequest) (*monitoring.VerifyIDResult, error)
}

type TelemetryLogger interface {
	LogTabSwitch(ctx context.Context, userID string, sessionID string, event monitoring.TabSwitchEvent) (*monitoring.TelemetryResult, error)
	LogMouseMovement(ctx context.Context, userID string, sessionID string, event monitoring.MouseEvent) (*monitoring.TelemetryResult, error)
	DetectScreenCapture(ctx context.Context, userID string, sessionID string, event monitoring.ScreenCaptureEvent) (*monitoring.TelemetryResult, error)
	LogCopyPaste(ctx context.Context, userID string, sessionID string, event monitoring.ClipboardEvent) (*monitoring.TelemetryResult, error)
}

type AlertLister interface {
	ListAlerts(ctx context.Context, userID string, sessionID string, limit int64) ([]entities.Alert, error)
}

type Dependencies struct {
	Registration *registration_usecases.RegistrationUseCases
	Sessions     *session_usecases.SessionUseCases
	Monitor      FrameMonitor
	Telemetry    TelemetryLogger
	Alerts       AlertLister
}

// Services is populated at startup.
var Services = &Dependencies{}
