package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invigil.io/application/constants"
	"invigil.io/application/controller"
	"invigil.io/application/repository"
	"invigil.io/application/services/monitoring"
	registration_usecases "invigil.io/application/usecases/registration"
	session_usecases "invigil.io/application/usecases/session"
	"invigil.io/entities"
	"invigil.io/infrastructure/auth"
	"invigil.io/infrastructure/env"
	mq_types "invigil.io/infrastructure/message_queue/types"
)

type memoryCandidates struct {
	users map[string]*entities.Candidate
}

func (m *memoryCandidates) PersistUser(_ context.Context, candidate entities.Candidate) (*entities.Candidate, error) {
	m.users[candidate.ID] = &candidate
	return &candidate, nil
}

func (m *memoryCandidates) FetchUser(_ context.Context, id string) (*entities.Candidate, error) {
	return m.users[id], nil
}

func (m *memoryCandidates) UpdateUser(_ context.Context, id string, fields map[string]interface{}) error {
	candidate, ok := m.users[id]
	if !ok {
		return repository.ErrCandidateNotFound
	}
	if status, ok := fields["status"].(string); ok {
		candidate.Status = status
	}
	return nil
}

func (m *memoryCandidates) SaveVideo(context.Context, string, []byte) (string, error) {
	return "video-1", nil
}

type memorySessions struct {
	sessions map[string]entities.ExamSession
}

func (m *memorySessions) CreateSession(_ context.Context, session entities.ExamSession) (*entities.ExamSession, error) {
	m.sessions[session.ID] = session
	return &session, nil
}

func (m *memorySessions) FetchActiveSession(_ context.Context, id string) (*entities.ExamSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

type stubMonitor struct {
	result monitoring.FrameResult
	got    monitoring.FrameRequest
}

func (s *stubMonitor) MonitorFrame(_ context.Context, req monitoring.FrameRequest) monitoring.FrameResult {
	s.got = req
	return s.result
}

func (s *stubMonitor) VerifyID(context.Context, monitoring.VerifyIDRequest) (*monitoring.VerifyIDResult, error) {
	return nil, monitoring.ErrNoTextReader
}

type stubTelemetry struct {
	mouse monitoring.MouseEvent
}

func (s *stubTelemetry) LogTabSwitch(context.Context, string, string, monitoring.TabSwitchEvent) (*monitoring.TelemetryResult, error) {
	return &monitoring.TelemetryResult{Status: "success", Logged: true}, nil
}

func (s *stubTelemetry) LogMouseMovement(_ context.Context, _ string, _ string, event monitoring.MouseEvent) (*monitoring.TelemetryResult, error) {
	s.mouse = event
	return &monitoring.TelemetryResult{Status: "success", Logged: true}, nil
}

func (s *stubTelemetry) DetectScreenCapture(context.Context, string, string, monitoring.ScreenCaptureEvent) (*monitoring.TelemetryResult, error) {
	return &monitoring.TelemetryResult{Status: "success", Logged: true}, nil
}

func (s *stubTelemetry) LogCopyPaste(_ context.Context, userID string, sessionID string, _ monitoring.ClipboardEvent) (*monitoring.TelemetryResult, error) {
	if userID == "" || sessionID == "" {
		return nil, monitoring.ErrMissingIdentifiers
	}
	blocked := true
	return &monitoring.TelemetryResult{Status: "success", Logged: true, Alert: true, Blocked: &blocked}, nil
}

type stubAlerts struct{}

func (stubAlerts) ListAlerts(context.Context, string, string, int64) ([]entities.Alert, error) {
	return []entities.Alert{{ID: "a1", Type: constants.AlertTabSwitch}}, nil
}

type harness struct {
	router     *gin.Engine
	candidates *memoryCandidates
	monitor    *stubMonitor
	telemetry  *stubTelemetry
}

func newHarness(t *testing.T, signingKey string) *harness {
	gin.SetMode(gin.TestMode)
	h := &harness{
		candidates: &memoryCandidates{users: map[string]*entities.Candidate{
			"u1": {ID: "u1", Name: "Ada", Email: "ada@example.com", Status: constants.StatusCompletedSuccessfully},
		}},
		monitor:   &stubMonitor{result: monitoring.FrameResult{Status: "success"}},
		telemetry: &stubTelemetry{},
	}
	sessions := &memorySessions{sessions: map[string]entities.ExamSession{}}
	tokens := auth.NewSessionTokens(signingKey, time.Hour)

	previous := controller.Services
	controller.Services = &controller.Dependencies{
		Registration: &registration_usecases.RegistrationUseCases{
			Store:    h.candidates,
			Schedule: func(context.Context, mq_types.TaskQueueBroker, string) error { return nil },
		},
		Sessions: &session_usecases.SessionUseCases{
			Candidates: h.candidates,
			Sessions:   sessions,
			Tokens:     tokens,
			TTL:        time.Hour,
		},
		Monitor:   h.monitor,
		Telemetry: h.telemetry,
		Alerts:    stubAlerts{},
	}
	t.Cleanup(func() { controller.Services = previous })

	h.router = NewRouter(&env.Config{Origins: []string{"http://localhost:8000"}}, tokens, sessions)
	return h
}

type envelope struct {
	Message      string          `json:"message"`
	Body         json.RawMessage `json:"body"`
	Errors       []string        `json:"errors"`
	ResponseCode *uint           `json:"response_code"`
}

func (h *harness) do(t *testing.T, method string, path string, body any, token string) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (h *harness) startSession(t *testing.T) (string, string) {
	code, res := h.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{"user_id": "u1"}, "")
	require.Equal(t, http.StatusCreated, code, res.Message)
	var started struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
		Token *string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Body, &started))
	require.NotNil(t, started.Token)
	return started.Session.ID, *started.Token
}

func TestPingAndUnknownRoutes(t *testing.T) {
	h := newHarness(t, "")

	code, res := h.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong!", res.Message)

	code, res = h.do(t, http.MethodGet, "/api/v1/nothing", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, res.Message, "does not exist")
}

func TestRegistrationRoutes(t *testing.T) {
	h := newHarness(t, "")

	code, res := h.do(t, http.MethodPost, "/api/v1/register", map[string]any{"name": "Grace", "email": "grace@example.com"}, "")
	require.Equal(t, http.StatusCreated, code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(res.Body, &created))
	assert.Contains(t, h.candidates.users, created["user_id"])

	code, res = h.do(t, http.MethodPost, "/api/v1/register", map[string]any{"name": "  ", "email": "nope"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, res.Errors, 2)

	tiny := "data:video/webm;base64," + base64.StdEncoding.EncodeToString([]byte("tiny"))
	code, res = h.do(t, http.MethodPost, "/api/v1/save_video", map[string]any{"user_id": "u1", "video_data": tiny}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, constants.VIDEO_TOO_SMALL, *res.ResponseCode)

	video := "data:video/webm;base64," + base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 4096))
	code, _ = h.do(t, http.MethodPost, "/api/v1/save_video", map[string]any{"user_id": "u1", "video_data": video}, "")
	assert.Equal(t, http.StatusAccepted, code)

	code, res = h.do(t, http.MethodGet, "/api/v1/processing_status?user_id=u1", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"processing","progress":30,"step":"Extracting frames from video..."}`, string(res.Body))

	code, res = h.do(t, http.MethodGet, "/api/v1/processing_status", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing user_id parameter", res.Message)

	code, res = h.do(t, http.MethodGet, "/api/v1/processing_status?user_id=ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", res.Message)

	code, _ = h.do(t, http.MethodPost, "/api/v1/skip_processing", map[string]any{"user_id": "u1"}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, constants.StatusProcessingSkipped, h.candidates.users["u1"].Status)

	code, res = h.do(t, http.MethodGet, "/api/v1/candidates/ghost", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Body), "unknown@example.com")
}

func TestProctoredRoutesRequireSessionToken(t *testing.T) {
	h := newHarness(t, "test-signing-key")
	frame := map[string]any{"frame": "data:image/jpeg;base64,AAAA", "user_id": "u1"}

	code, res := h.do(t, http.MethodPost, "/api/v1/monitor_frame", frame, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Missing session token", res.Message)

	code, res = h.do(t, http.MethodPost, "/api/v1/monitor_frame", frame, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid session token", res.Message)

	sessionID, token := h.startSession(t)
	code, _ = h.do(t, http.MethodPost, "/api/v1/monitor_frame", map[string]any{"frame": "AAAA", "user_id": "u1", "session_id": sessionID}, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, sessionID, h.monitor.got.SessionID)

	code, res = h.do(t, http.MethodPost, "/api/v1/monitor_frame", map[string]any{"frame": "AAAA", "user_id": "someone-else"}, token)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, constants.SESSION_TOKEN_MISMATCH, *res.ResponseCode)

	expired, _, err := auth.NewSessionTokens("test-signing-key", time.Minute).Issue("u1", sessionID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	code, res = h.do(t, http.MethodPost, "/api/v1/monitor_frame", frame, expired)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, constants.SESSION_TOKEN_EXPIRED, *res.ResponseCode)
}

func TestMonitorFrameResponses(t *testing.T) {
	h := newHarness(t, "")

	code, res := h.do(t, http.MethodPost, "/api/v1/monitor_frame", map[string]any{"frame": ""}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No frame provided", res.Message)

	h.monitor.result = monitoring.FrameResult{Status: "error", Message: "Invalid image data"}
	code, res = h.do(t, http.MethodPost, "/api/v1/monitor_frame", map[string]any{"frame": "@@"}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid image data", res.Message)

	h.monitor.result = monitoring.FrameResult{Status: "success", Alerts: []monitoring.RaisedAlert{{Type: constants.AlertImpersonation, Severity: constants.SeverityCritical}}}
	code, res = h.do(t, http.MethodPost, "/api/v1/monitor_frame", map[string]any{"frame": "AAAA", "user_id": "u1"}, "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, constants.IMPERSONATION_SUSPECTED, *res.ResponseCode)

	code, _ = h.do(t, http.MethodPost, "/api/v1/verify_id", map[string]any{"user_id": "u1", "text": "Ada"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestTelemetryRoutes(t *testing.T) {
	h := newHarness(t, "")

	code, res := h.do(t, http.MethodPost, "/api/v1/log_copy_paste", map[string]any{
		"user_id": "u1", "session_id": "s1", "event_data": map[string]any{"type": "paste", "content": strings.Repeat("x", 10)},
	}, "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, constants.COPY_PASTE_BLOCKED, *res.ResponseCode)

	code, _ = h.do(t, http.MethodPost, "/api/v1/log_copy_paste", map[string]any{"event_data": map[string]any{"type": "copy"}}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPost, "/api/v1/log_mouse_movement", map[string]any{
		"user_id": "u1", "session_id": "s1", "movement_data": map[string]any{"x": 120, "y": 40, "screenWidth": 1920},
	}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(120), h.telemetry.mouse.X)
	require.NotNil(t, h.telemetry.mouse.ScreenWidth)
	assert.Nil(t, h.telemetry.mouse.ScreenHeight)

	code, res = h.do(t, http.MethodGet, "/api/v1/alerts", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing user_id or session_id", res.Message)

	code, res = h.do(t, http.MethodGet, "/api/v1/alerts?user_id=u1&limit=10", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(res.Body), `"a1"`)
}

func TestProctoredRoutesTakeIdentityFromToken(t *testing.T) {
	h := newHarness(t, "test-signing-key")
	sessionID, token := h.startSession(t)

	code, _ := h.do(t, http.MethodPost, "/api/v1/monitor_frame", map[string]any{"frame": "AAAA"}, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u1", h.monitor.got.UserID)
	assert.Equal(t, sessionID, h.monitor.got.SessionID)

	code, res := h.do(t, http.MethodPost, "/api/v1/log_copy_paste", map[string]any{
		"event_data": map[string]any{"type": "paste", "content": "answer"},
	}, token)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, constants.COPY_PASTE_BLOCKED, *res.ResponseCode)

	code, res = h.do(t, http.MethodPost, "/api/v1/log_copy_paste", map[string]any{
		"session_id": "another-session", "event_data": map[string]any{"type": "paste"},
	}, token)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, res.ResponseCode)
	assert.Equal(t, constants.SESSION_TOKEN_MISMATCH, *res.ResponseCode)
}
