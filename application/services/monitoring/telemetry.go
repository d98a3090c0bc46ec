package monitoring

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"invigil.io/application/constants"
	"invigil.io/application/utils"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
)

const clipboardBlockedMessage = "Copy-paste actions are disabled during the exam"

// Telemetry records browser events. Its alerts bypass the frame cooldown.
type Telemetry struct {
	store       AlertStore
	recorder    *AlertRecorder
	counter     Counter
	sampleEvery int64
	now         func() time.Time
}

func NewTelemetry(store AlertStore, recorder *AlertRecorder, counter Counter, sampleEvery int64) *Telemetry {
	if sampleEvery <= 0 {
		sampleEvery = 1
	}
	return &Telemetry{
		store:       store,
		recorder:    recorder,
		counter:     counter,
		sampleEvery: sampleEvery,
		now:         time.Now,
	}
}

type TabSwitchEvent struct {
	Visible    *bool
	Screenshot string
}

type MouseEvent struct {
	X            float64
	Y            float64
	ScreenWidth  *float64
	ScreenHeight *float64
}

type ScreenCaptureEvent struct {
	Type string
}

type ClipboardEvent struct {
	Type    string
	Content string
}

type TelemetryResult struct {
	Status  string  `json:"status"`
	Logged  bool    `json:"logged"`
	Reason  string  `json:"reason,omitempty"`
	Alert   bool    `json:"alert,omitempty"`
	AlertID *string `json:"alert_id,omitempty"`
	Blocked *bool   `json:"blocked,omitempty"`
	Message *string `json:"message"`
}

func requireIdentifiers(userID string, sessionID string) error {
	if userID == "" || sessionID == "" {
		return ErrMissingIdentifiers
	}
	return nil
}

// LogTabSwitch logs a visibility change. Only an explicit hidden state raises an alert.
func (t *Telemetry) LogTabSwitch(ctx context.Context, userID string, sessionID string, event TabSwitchEvent) (*TelemetryResult, error) {
	if err := requireIdentifiers(userID, sessionID); err != nil {
		return nil, err
	}
	now := t.now()
	visible := event.Visible != nil && *event.Visible
	if err := t.store.SaveLog(ctx, entities.MonitoringLog{
		UserID:    userID,
		SessionID: sessionID,
		EventType: "tab_switch",
		Visible:   &visible,
		Timestamp: now,
	}); err != nil {
		return nil, err
	}
	result := &TelemetryResult{Status: "success", Logged: true}
	if event.Visible == nil || *event.Visible {
		return result, nil
	}

	var evidence []byte
	if event.Screenshot != "" {
		_, payload, err := utils.SplitDataURL(event.Screenshot, false)
		if err == nil {
			evidence, err = utils.DecodeBase64(payload)
		}
		if err != nil {
			logger.Warning("discarding undecodable tab switch screenshot", logger.LoggerOptions{Key: "sessionID", Data: sessionID}, logger.LoggerOptions{Key: "error", Data: err})
			evidence = nil
		}
	}
	saved, err := t.recorder.Record(ctx, entities.Alert{
		UserID:    userID,
		SessionID: sessionID,
		Type:      constants.AlertTabSwitch,
		Severity:  constants.SeverityHigh,
		Message:   "User switched to another tab or application",
		Timestamp: now,
	}, evidence)
	if err != nil {
		return nil, err
	}
	result.Alert = true
	result.AlertID = &saved.ID
	return result, nil
}

// LogMouseMovement keeps every sampleEvery-th event of a session and flags moves into a screen corner.
func (t *Telemetry) LogMouseMovement(ctx context.Context, userID string, sessionID string, event MouseEvent) (*TelemetryResult, error) {
	if err := requireIdentifiers(userID, sessionID); err != nil {
		return nil, err
	}
	count := t.counter.Next(ctx, fmt.Sprintf("invigil:mouse:%s", sessionID))
	if count%t.sampleEvery != 0 {
		return &TelemetryResult{Status: "success", Logged: false, Reason: "sampling"}, nil
	}

	width, height := float64(constants.DEFAULT_SCREEN_W), float64(constants.DEFAULT_SCREEN_H)
	if event.ScreenWidth != nil {
		width = *event.ScreenWidth
	}
	if event.ScreenHeight != nil {
		height = *event.ScreenHeight
	}
	now := t.now()
	if err := t.store.SaveMouseMovement(ctx, entities.MouseMovement{
		UserID:       userID,
		SessionID:    sessionID,
		X:            event.X,
		Y:            event.Y,
		ScreenWidth:  width,
		ScreenHeight: height,
		Timestamp:    now,
	}); err != nil {
		return nil, err
	}
	result := &TelemetryResult{Status: "success", Logged: true}
	if !InScreenCorner(event.X, event.Y, width, height) {
		return result, nil
	}
	saved, err := t.recorder.Record(ctx, entities.Alert{
		UserID:    userID,
		SessionID: sessionID,
		Type:      constants.AlertSuspiciousMouse,
		Severity:  constants.SeverityMedium,
		Message:   "Mouse moved to screen corner",
		Details:   map[string]any{"coordinates": map[string]float64{"x": event.X, "y": event.Y}},
		Timestamp: now,
	}, nil)
	if err != nil {
		return nil, err
	}
	result.Alert = true
	result.AlertID = &saved.ID
	return result, nil
}

func InScreenCorner(x float64, y float64, width float64, height float64) bool {
	margin := float64(constants.CORNER_MARGIN_PX)
	return (x < margin || x > width-margin) && (y < margin || y > height-margin)
}

func (t *Telemetry) DetectScreenCapture(ctx context.Context, userID string, sessionID string, event ScreenCaptureEvent) (*TelemetryResult, error) {
	if err := requireIdentifiers(userID, sessionID); err != nil {
		return nil, err
	}
	captureType := event.Type
	if captureType == "" {
		captureType = "unknown"
	}
	now := t.now()
	if err := t.store.SaveLog(ctx, entities.MonitoringLog{
		UserID:      userID,
		SessionID:   sessionID,
		EventType:   "screen_capture",
		CaptureType: &captureType,
		Timestamp:   now,
	}); err != nil {
		return nil, err
	}
	saved, err := t.recorder.Record(ctx, entities.Alert{
		UserID:    userID,
		SessionID: sessionID,
		Type:      constants.AlertScreenCapture,
		Severity:  constants.SeverityCritical,
		Message:   fmt.Sprintf("Screen capture detected: %s", captureType),
		Timestamp: now,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &TelemetryResult{Status: "success", Logged: true, Alert: true, AlertID: &saved.ID}, nil
}

// LogCopyPaste logs a clipboard action, keeping short content verbatim, and tells the browser
// whether to block it.
func (t *Telemetry) LogCopyPaste(ctx context.Context, userID string, sessionID string, event ClipboardEvent) (*TelemetryResult, error) {
	if err := requireIdentifiers(userID, sessionID); err != nil {
		return nil, err
	}
	action := event.Type
	if action == "" {
		action = "unknown"
	}
	length := utf8.RuneCountInString(event.Content)
	entry := entities.MonitoringLog{
		UserID:        userID,
		SessionID:     sessionID,
		EventType:     "clipboard",
		Action:        &action,
		ContentLength: &length,
		Timestamp:     t.now(),
	}
	if length < constants.MAX_CLIPBOARD_CHARS {
		entry.Content = &event.Content
	}
	if err := t.store.SaveLog(ctx, entry); err != nil {
		return nil, err
	}

	result := &TelemetryResult{Status: "success", Logged: true}
	if action == "paste" {
		saved, err := t.recorder.Record(ctx, entities.Alert{
			UserID:    userID,
			SessionID: sessionID,
			Type:      constants.AlertClipboardPaste,
			Severity:  constants.SeverityHigh,
			Message:   "User attempted to paste content",
			Details:   map[string]any{"contentLength": length},
			Timestamp: entry.Timestamp,
		}, nil)
		if err != nil {
			return nil, err
		}
		result.Alert = true
		result.AlertID = &saved.ID
	}
	blocked := utils.HasItemString(&constants.BLOCKED_CLIPBOARD_ACTIONS, action)
	result.Blocked = &blocked
	if blocked {
		result.Message = utils.GetStringPointer(clipboardBlockedMessage)
	}
	return result, nil
}
