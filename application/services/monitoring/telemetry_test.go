package monitoring

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invigil.io/application/utils"
)

type telemetryRig struct {
	telemetry *Telemetry
	store     *memoryAlertStore
	snapshots *fakeSnapshots
	notifier  *fakeNotifier
}

func newTelemetryRig(sampleEvery int64) *telemetryRig {
	rig := &telemetryRig{store: &memoryAlertStore{}, snapshots: &fakeSnapshots{}, notifier: &fakeNotifier{}}
	recorder := NewAlertRecorder(rig.store, rig.snapshots, rig.notifier, nil)
	rig.telemetry = NewTelemetry(rig.store, recorder, NewMemoryCounter(time.Hour), sampleEvery)
	return rig
}

func TestTelemetryRequiresIdentifiers(t *testing.T) {
	rig := newTelemetryRig(5)
	ctx := context.Background()

	_, err := rig.telemetry.LogTabSwitch(ctx, "", "s1", TabSwitchEvent{})
	assert.ErrorIs(t, err, ErrMissingIdentifiers)
	_, err = rig.telemetry.LogMouseMovement(ctx, "u1", "", MouseEvent{})
	assert.ErrorIs(t, err, ErrMissingIdentifiers)
	_, err = rig.telemetry.DetectScreenCapture(ctx, "", "", ScreenCaptureEvent{})
	assert.ErrorIs(t, err, ErrMissingIdentifiers)
	_, err = rig.telemetry.LogCopyPaste(ctx, "", "s1", ClipboardEvent{Type: "copy"})
	assert.ErrorIs(t, err, ErrMissingIdentifiers)
	assert.Empty(t, rig.store.logs)
}

func TestLogTabSwitch(t *testing.T) {
	tests := []struct {
		name         string
		visible      *bool
		screenshot   string
		alert        bool
		loggedAs     bool
		withSnapshot bool
	}{
		{name: "back to the exam", visible: utils.GetBooleanPointer(true), loggedAs: true},
		{name: "left the exam", visible: utils.GetBooleanPointer(false), alert: true},
		{name: "left the exam with screenshot", visible: utils.GetBooleanPointer(false), screenshot: "SCREENSHOT", alert: true, withSnapshot: true},
		{name: "undecodable screenshot", visible: utils.GetBooleanPointer(false), screenshot: "data:image/png;base64,%%%", alert: true},
		{name: "visibility missing", visible: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTelemetryRig(5)
			screenshot := tt.screenshot
			if screenshot == "SCREENSHOT" {
				screenshot = jpegDataURL(t)
			}

			result, err := rig.telemetry.LogTabSwitch(context.Background(), "u1", "s1", TabSwitchEvent{Visible: tt.visible, Screenshot: screenshot})
			require.NoError(t, err)

			assert.Equal(t, "success", result.Status)
			assert.True(t, result.Logged)
			assert.Equal(t, tt.alert, result.Alert)
			require.Len(t, rig.store.logs, 1)
			assert.Equal(t, "tab_switch", rig.store.logs[0].EventType)
			assert.Equal(t, tt.loggedAs, *rig.store.logs[0].Visible)
			assert.NotEmpty(t, rig.store.logs[0].FormattedTime)
			if !tt.alert {
				assert.Nil(t, result.AlertID)
				assert.Empty(t, rig.store.alerts)
				return
			}
			require.Len(t, rig.store.alerts, 1)
			alert := rig.store.alerts[0]
			assert.Equal(t, *result.AlertID, alert.ID)
			assert.Equal(t, "tab_switch", alert.Type)
			assert.Equal(t, "high", alert.Severity)
			assert.Equal(t, tt.withSnapshot, alert.SnapshotID != nil)
			assert.Len(t, rig.store.snapshots, len(rig.snapshots.uploads))
		})
	}
}

func TestLogMouseMovementSamplesPerSession(t *testing.T) {
	rig := newTelemetryRig(5)
	ctx := context.Background()

	logged := 0
	for i := 0; i < 10; i++ {
		result, err := rig.telemetry.LogMouseMovement(ctx, "u1", "s1", MouseEvent{X: 300, Y: 300})
		require.NoError(t, err)
		if result.Logged {
			logged++
			assert.Contains(t, []int{4, 9}, i)
		} else {
			assert.Equal(t, "sampling", result.Reason)
		}
	}
	assert.Equal(t, 2, logged)

	// a different session keeps its own count
	result, err := rig.telemetry.LogMouseMovement(ctx, "u1", "s2", MouseEvent{X: 300, Y: 300})
	require.NoError(t, err)
	assert.False(t, result.Logged)

	require.Len(t, rig.store.movements, 2)
	assert.Equal(t, 1000.0, rig.store.movements[0].ScreenWidth)
	assert.Equal(t, 700.0, rig.store.movements[0].ScreenHeight)
	assert.Empty(t, rig.store.alerts)
}

func TestLogMouseMovementFlagsCorners(t *testing.T) {
	rig := newTelemetryRig(1)
	width, height := 1920.0, 1080.0

	result, err := rig.telemetry.LogMouseMovement(context.Background(), "u1", "s1", MouseEvent{X: 1915, Y: 3, ScreenWidth: &width, ScreenHeight: &height})
	require.NoError(t, err)

	assert.True(t, result.Alert)
	require.Len(t, rig.store.alerts, 1)
	assert.Equal(t, "suspicious_mouse", rig.store.alerts[0].Type)
	assert.Equal(t, "medium", rig.store.alerts[0].Severity)
	assert.Equal(t, map[string]float64{"x": 1915, "y": 3}, rig.store.alerts[0].Details["coordinates"])
}

func TestInScreenCorner(t *testing.T) {
	tests := []struct {
		x, y     float64
		expected bool
	}{
		{5, 5, true},
		{995, 695, true},
		{5, 695, true},
		{995, 5, true},
		{5, 350, false},
		{500, 5, false},
		{10, 10, false},
		{990, 690, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, InScreenCorner(tt.x, tt.y, 1000, 700), "x=%v y=%v", tt.x, tt.y)
	}
}

func TestDetectScreenCapture(t *testing.T) {
	rig := newTelemetryRig(5)
	ctx := context.Background()

	result, err := rig.telemetry.DetectScreenCapture(ctx, "u1", "s1", ScreenCaptureEvent{})
	require.NoError(t, err)
	assert.True(t, result.Alert)
	assert.Equal(t, "unknown", *rig.store.logs[0].CaptureType)
	assert.Equal(t, "Screen capture detected: unknown", rig.store.alerts[0].Message)

	_, err = rig.telemetry.DetectScreenCapture(ctx, "u1", "s1", ScreenCaptureEvent{Type: "print_screen"})
	require.NoError(t, err)
	assert.Equal(t, "Screen capture detected: print_screen", rig.store.alerts[1].Message)
	assert.Equal(t, "critical", rig.store.alerts[1].Severity)

	// telemetry alerts are not rate limited
	assert.Len(t, rig.notifier.notified, 2)
}

func TestLogCopyPaste(t *testing.T) {
	tests := []struct {
		name        string
		event       ClipboardEvent
		blocked     bool
		alert       bool
		keepContent bool
	}{
		{name: "copy", event: ClipboardEvent{Type: "copy", Content: "x = 1"}, blocked: true, keepContent: true},
		{name: "cut", event: ClipboardEvent{Type: "cut"}, blocked: true, keepContent: true},
		{name: "paste", event: ClipboardEvent{Type: "paste", Content: "answer"}, blocked: true, alert: true, keepContent: true},
		{name: "long paste", event: ClipboardEvent{Type: "paste", Content: strings.Repeat("é", 200)}, blocked: true, alert: true},
		{name: "other action", event: ClipboardEvent{Type: "select_all", Content: "abc"}, keepContent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTelemetryRig(5)
			result, err := rig.telemetry.LogCopyPaste(context.Background(), "u1", "s1", tt.event)
			require.NoError(t, err)

			require.NotNil(t, result.Blocked)
			assert.Equal(t, tt.blocked, *result.Blocked)
			if tt.blocked {
				assert.Equal(t, "Copy-paste actions are disabled during the exam", *result.Message)
			} else {
				assert.Nil(t, result.Message)
			}
			assert.Equal(t, tt.alert, result.Alert)

			require.Len(t, rig.store.logs, 1)
			entry := rig.store.logs[0]
			assert.Equal(t, tt.event.Type, *entry.Action)
			assert.Equal(t, len([]rune(tt.event.Content)), *entry.ContentLength)
			assert.Equal(t, tt.keepContent, entry.Content != nil)
			if tt.alert {
				assert.Equal(t, "User attempted to paste content", rig.store.alerts[0].Message)
				assert.Equal(t, len([]rune(tt.event.Content)), rig.store.alerts[0].Details["contentLength"])
			}
		})
	}
}
