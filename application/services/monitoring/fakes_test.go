package monitoring

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"invigil.io/entities"
	vtypes "invigil.io/infrastructure/vision/types"
)

var errCollaboratorDown = errors.New("collaborator down")

type fakeDetector struct {
	detections []vtypes.Detection
	err        error
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte) ([]vtypes.Detection, error) {
	return f.detections, f.err
}

type fakeEncoder struct {
	faces []vtypes.Face
	err   error
	calls int
}

func (f *fakeEncoder) Encode(_ context.Context, _ []byte) ([]vtypes.Face, error) {
	f.calls++
	return f.faces, f.err
}

type fakeTextReader struct {
	text string
	err  error
}

func (f *fakeTextReader) ReadText(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

type fakeCandidates struct {
	users  map[string]*entities.Candidate
	frames map[string][]entities.UserFrame
}

func (f *fakeCandidates) FetchUser(_ context.Context, id string) (*entities.Candidate, error) {
	return f.users[id], nil
}

func (f *fakeCandidates) FetchCompletedUsers(_ context.Context) ([]entities.Candidate, error) {
	result := []entities.Candidate{}
	for _, u := range f.users {
		if u.Status == "completed_successfully" {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (f *fakeCandidates) FetchFrames(_ context.Context, userID string) ([]entities.UserFrame, error) {
	return f.frames[userID], nil
}

type memoryAlertStore struct {
	mu        sync.Mutex
	alerts    []entities.Alert
	snapshots []entities.ViolationSnapshot
	logs      []entities.MonitoringLog
	movements []entities.MouseMovement
	failSave  bool
	failSnap  bool
}

func (m *memoryAlertStore) SaveAlert(_ context.Context, alert entities.Alert) (*entities.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return nil, errCollaboratorDown
	}
	parsed := alert.ParseModel().(*entities.Alert)
	m.alerts = append(m.alerts, *parsed)
	return parsed, nil
}

func (m *memoryAlertStore) SaveSnapshot(_ context.Context, snapshot entities.ViolationSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSnap {
		return errCollaboratorDown
	}
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *memoryAlertStore) SaveLog(_ context.Context, log entities.MonitoringLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log.ParseModel().(*entities.MonitoringLog))
	return nil
}

func (m *memoryAlertStore) SaveMouseMovement(_ context.Context, movement entities.MouseMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movement)
	return nil
}

func (m *memoryAlertStore) alertTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := []string{}
	for _, a := range m.alerts {
		types = append(types, a.Type)
	}
	return types
}

type fakeSnapshots struct {
	uploads map[string][]byte
	types   map[string]string
	fail    bool
}

func (f *fakeSnapshots) Upload(_ context.Context, name string, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errCollaboratorDown
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
		f.types = map[string]string{}
	}
	f.uploads[name] = data
	f.types[name] = contentType
	return "memory://" + name, nil
}

type fakeNotifier struct {
	notified []entities.Alert
}

func (f *fakeNotifier) NotifyCritical(_ context.Context, alert entities.Alert) error {
	f.notified = append(f.notified, alert)
	return nil
}

type allowAll struct{}

func (allowAll) Acquire(context.Context, string, string) bool { return true }

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegDataURL(t *testing.T) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes(t))
}

type testRig struct {
	engine    *Engine
	detector  *fakeDetector
	encoder   *fakeEncoder
	store     *memoryAlertStore
	snapshots *fakeSnapshots
	notifier  *fakeNotifier
	users     *fakeCandidates
}

func newTestRig(t *testing.T, cooldown Cooldown) *testRig {
	t.Helper()
	rig := &testRig{
		detector:  &fakeDetector{},
		encoder:   &fakeEncoder{},
		store:     &memoryAlertStore{},
		snapshots: &fakeSnapshots{},
		notifier:  &fakeNotifier{},
		users:     &fakeCandidates{users: map[string]*entities.Candidate{}, frames: map[string][]entities.UserFrame{}},
	}
	if cooldown == nil {
		cooldown = allowAll{}
	}
	rig.engine = NewEngine(Options{
		Detector:   rig.detector,
		Encoder:    rig.encoder,
		Candidates: rig.users,
		Cooldown:   cooldown,
		Recorder:   NewAlertRecorder(rig.store, rig.snapshots, rig.notifier, nil),
	})
	return rig
}
