package monitoring

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invigil.io/entities"
	vtypes "invigil.io/infrastructure/vision/types"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func enroll(t *testing.T, rig *testRig, id string, name string, encoding []float64) {
	t.Helper()
	require.NoError(t, rig.engine.Signatures().Put(Signature{UserID: id, Name: name, Encoding: encoding}))
}

func face(encoding ...float64) vtypes.Face {
	return vtypes.Face{Box: vtypes.Box{X1: 10, Y1: 10, X2: 40, Y2: 40}, Encoding: encoding}
}

func person() vtypes.Detection {
	return vtypes.Detection{Label: "person", Confidence: 0.91, Box: vtypes.Box{X1: 2, Y1: 2, X2: 60, Y2: 46}}
}

func phone() vtypes.Detection {
	return vtypes.Detection{Label: "cell phone", Confidence: 0.66, Box: vtypes.Box{X1: 40, Y1: 30, X2: 55, Y2: 45}}
}

func TestMonitorFrameRejectsMalformedFrames(t *testing.T) {
	rig := newTestRig(t, nil)
	tests := []struct {
		name  string
		frame string
	}{
		{"empty", ""},
		{"not base64", "data:image/jpeg;base64,@@@"},
		{"not an image", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: tt.frame, UserID: "u1"})
			assert.Equal(t, "error", result.Status)
			assert.NotEmpty(t, result.Message)
		})
	}
	assert.Empty(t, rig.store.alerts)
	assert.Zero(t, rig.encoder.calls)
}

func TestMonitorFrameIdentifiesEnrolledCandidate(t *testing.T) {
	rig := newTestRig(t, nil)
	enroll(t, rig, "u1", "Ada", []float64{0.1, 0.2, 0.3})
	enroll(t, rig, "u2", "Grace", []float64{0.9, 0.9, 0.9})
	rig.detector.detections = []vtypes.Detection{person()}
	rig.encoder.faces = []vtypes.Face{face(0.1, 0.2, 0.35)}

	result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: jpegDataURL(t), UserID: "u1", SessionID: "s1"})

	require.Equal(t, "success", result.Status)
	require.NotNil(t, result.UserID)
	assert.Equal(t, "u1", *result.UserID)
	assert.Equal(t, "Ada", *result.User)
	assert.Equal(t, 95.0, result.Confidence)
	assert.Equal(t, map[string]int{"person": 1, "cell phone": 0}, result.Detections)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Warnings)
}

func TestMonitorFrameAcceptsBareBase64(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.detector.detections = []vtypes.Detection{person()}
	frame := base64.StdEncoding.EncodeToString(pngBytes(t))

	result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: frame})
	assert.Equal(t, "success", result.Status)
}

func TestMonitorFrameViolations(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		detections []vtypes.Detection
		faces      []vtypes.Face
		expected   []string
		severities []string
	}{
		{
			name:       "phone in view",
			userID:     "u1",
			detections: []vtypes.Detection{person(), phone()},
			faces:      []vtypes.Face{face(0.1, 0.2, 0.3)},
			expected:   []string{"mobile_phone"},
			severities: []string{"high"},
		},
		{
			name:       "two people",
			userID:     "u1",
			detections: []vtypes.Detection{person(), person()},
			faces:      []vtypes.Face{face(0.1, 0.2, 0.3)},
			expected:   []string{"multiple_people"},
			severities: []string{"high"},
		},
		{
			name:       "two faces count as two people",
			userID:     "u1",
			detections: []vtypes.Detection{person()},
			faces:      []vtypes.Face{face(0.1, 0.2, 0.3), face(0.1, 0.2, 0.3)},
			expected:   []string{"multiple_people"},
			severities: []string{"high"},
		},
		{
			name:       "unknown face",
			userID:     "u1",
			detections: []vtypes.Detection{person()},
			faces:      []vtypes.Face{face(5, 5, 5)},
			expected:   []string{"impersonation"},
			severities: []string{"critical"},
		},
		{
			name:       "unknown face without user id",
			detections: []vtypes.Detection{person()},
			faces:      []vtypes.Face{face(5, 5, 5)},
			expected:   []string{"impersonation"},
			severities: []string{"critical"},
		},
		{
			name:       "face of another candidate",
			userID:     "u1",
			detections: []vtypes.Detection{person()},
			faces:      []vtypes.Face{face(0.9, 0.9, 0.9)},
			expected:   []string{"impersonation"},
			severities: []string{"critical"},
		},
		{
			name:       "nobody in frame",
			userID:     "u1",
			expected:   []string{"face_not_visible"},
			severities: []string{"medium"},
		},
		{
			name:       "person without a detectable face",
			userID:     "u1",
			detections: []vtypes.Detection{person()},
			expected:   []string{},
			severities: []string{},
		},
		{
			name:       "nobody in frame without user id",
			expected:   []string{},
			severities: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, nil)
			enroll(t, rig, "u1", "Ada", []float64{0.1, 0.2, 0.3})
			enroll(t, rig, "u2", "Grace", []float64{0.9, 0.9, 0.9})
			rig.detector.detections = tt.detections
			rig.encoder.faces = tt.faces

			result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: jpegDataURL(t), UserID: tt.userID, SessionID: "s1"})

			require.Equal(t, "success", result.Status)
			types, severities := []string{}, []string{}
			for _, a := range result.Alerts {
				types = append(types, a.Type)
				severities = append(severities, a.Severity)
			}
			assert.Equal(t, tt.expected, types)
			assert.Equal(t, tt.severities, severities)
			assert.Equal(t, tt.expected, rig.store.alertTypes())
			assert.Len(t, rig.store.snapshots, len(tt.expected))
		})
	}
}

func TestCriticalAlertsNotifyProctor(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.detector.detections = []vtypes.Detection{person(), phone()}
	rig.encoder.faces = []vtypes.Face{face(5, 5, 5)}

	result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: jpegDataURL(t), UserID: "u1", SessionID: "s1"})

	require.Len(t, result.Alerts, 2)
	require.Len(t, rig.notifier.notified, 1)
	assert.Equal(t, "impersonation", rig.notifier.notified[0].Type)
	for _, a := range result.Alerts {
		require.NotNil(t, a.SnapshotID)
	}
	// one annotated snapshot per raised alert
	assert.Len(t, rig.snapshots.uploads, 2)
	for name, contentType := range rig.snapshots.types {
		assert.Contains(t, name, "u1/")
		assert.Equal(t, "image/jpeg", contentType)
	}
}

func TestCooldownSuppressesRepeatsPerSession(t *testing.T) {
	rig := newTestRig(t, NewMemoryCooldown(30*time.Second))
	rig.detector.detections = []vtypes.Detection{person(), phone()}
	enroll(t, rig, "u1", "Ada", []float64{0.1, 0.2, 0.3})
	rig.encoder.faces = []vtypes.Face{face(0.1, 0.2, 0.3)}
	ctx := context.Background()

	first := rig.engine.MonitorFrame(ctx, FrameRequest{Frame: jpegDataURL(t), UserID: "u1", SessionID: "s1"})
	second := rig.engine.MonitorFrame(ctx, FrameRequest{Frame: jpegDataURL(t), UserID: "u1", SessionID: "s1"})
	other := rig.engine.MonitorFrame(ctx, FrameRequest{Frame: jpegDataURL(t), UserID: "u1", SessionID: "s2"})

	require.Len(t, first.Alerts, 1)
	assert.Empty(t, first.Suppressed)
	assert.Empty(t, second.Alerts)
	assert.Equal(t, []string{"mobile_phone"}, second.Suppressed)
	require.Len(t, other.Alerts, 1)
	assert.Equal(t, []string{"mobile_phone", "mobile_phone"}, rig.store.alertTypes())
}

func TestCollaboratorFailuresDegradeGracefully(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.detector.err = errCollaboratorDown
	rig.encoder.err = errCollaboratorDown

	result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: jpegDataURL(t), UserID: "u1", SessionID: "s1"})

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, []string{WarningDetectorUnavailable, WarningEncoderUnavailable}, result.Warnings)
	assert.Equal(t, map[string]int{"person": 0, "cell phone": 0}, result.Detections)
	assert.Nil(t, result.UserID)
	assert.Empty(t, result.Alerts)
}

func TestDetectorFailureStillMatchesFaces(t *testing.T) {
	rig := newTestRig(t, nil)
	enroll(t, rig, "u1", "Ada", []float64{0.1, 0.2, 0.3})
	rig.detector.err = errCollaboratorDown
	rig.encoder.faces = []vtypes.Face{face(0.1, 0.2, 0.3)}

	result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: jpegDataURL(t), UserID: "u1"})

	require.NotNil(t, result.UserID)
	assert.Equal(t, "u1", *result.UserID)
	assert.Equal(t, 100.0, result.Confidence)
	assert.Equal(t, []string{WarningDetectorUnavailable}, result.Warnings)
}

func TestAlertStoreFailureIsReportedAsWarning(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.store.failSave = true
	rig.detector.detections = []vtypes.Detection{person(), phone()}

	result := rig.engine.MonitorFrame(context.Background(), FrameRequest{Frame: jpegDataURL(t), SessionID: "s1"})

	assert.Equal(t, "success", result.Status)
	assert.Empty(t, result.Alerts)
	assert.Contains(t, result.Warnings, "alert_store_unavailable")
}

func TestLoadBuildsGalleryFromStoredAndDerivedSignatures(t *testing.T) {
	rig := newTestRig(t, nil)
	frame := base64.StdEncoding.EncodeToString(jpegBytes(t))
	rig.users.users["u1"] = &entities.Candidate{ID: "u1", Name: "Ada", Status: "completed_successfully", FaceSignature: []float64{1, 1}}
	rig.users.users["u2"] = &entities.Candidate{ID: "u2", Name: "Grace", Status: "completed_successfully"}
	rig.users.users["u3"] = &entities.Candidate{ID: "u3", Name: "Linus", Status: "video_captured", FaceSignature: []float64{3, 3}}
	rig.users.frames["u2"] = []entities.UserFrame{{UserID: "u2", ImageData: frame}, {UserID: "u2", ImageData: frame}}
	rig.encoder.faces = []vtypes.Face{face(2, 4), face(9, 9)}

	count, err := rig.engine.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	derived, ok := rig.engine.Signatures().Get("u2")
	require.True(t, ok)
	assert.Equal(t, []float64{2, 4}, derived.Encoding)
	_, ok = rig.engine.Signatures().Get("u3")
	assert.False(t, ok)
}

func TestRefreshAddsAndDropsCandidates(t *testing.T) {
	rig := newTestRig(t, nil)
	ctx := context.Background()
	rig.users.users["u1"] = &entities.Candidate{ID: "u1", Name: "Ada", Status: "completed_successfully", FaceSignature: []float64{1, 1}}

	require.NoError(t, rig.engine.Refresh(ctx, "u1"))
	assert.Equal(t, 1, rig.engine.Signatures().Len())

	rig.users.users["u1"].Status = "processing_skipped"
	require.NoError(t, rig.engine.Refresh(ctx, "u1"))
	assert.Equal(t, 0, rig.engine.Signatures().Len())

	require.NoError(t, rig.engine.Refresh(ctx, "missing"))
}

func TestMetricsAreRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(provider.Meter("monitoring-test"))
	require.NoError(t, err)

	rig := newTestRig(t, NewMemoryCooldown(time.Minute))
	rig.engine.metrics = metrics
	rig.engine.recorder.metrics = metrics
	rig.detector.detections = []vtypes.Detection{person(), phone()}
	rig.encoder.err = errCollaboratorDown
	ctx := context.Background()

	rig.engine.MonitorFrame(ctx, FrameRequest{Frame: jpegDataURL(t), SessionID: "s1"})
	rig.engine.MonitorFrame(ctx, FrameRequest{Frame: jpegDataURL(t), SessionID: "s1"})
	rig.engine.MonitorFrame(ctx, FrameRequest{Frame: "garbage"})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(3), totals["invigil_frames_processed_total"])
	assert.Equal(t, int64(1), totals["invigil_alerts_raised_total"])
	assert.Equal(t, int64(1), totals["invigil_alerts_suppressed_total"])
	assert.Equal(t, int64(2), totals["invigil_collaborator_failures_total"])
}
