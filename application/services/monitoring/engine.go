package monitoring

import (
	"context"
	"fmt"
	"time"

	"invigil.io/application/constants"
	"invigil.io/application/utils"
	"invigil.io/entities"
	"invigil.io/infrastructure/logger"
	vtypes "invigil.io/infrastructure/vision/types"
)

const (
	labelPerson = "person"
	labelPhone  = "cell phone"
)

const DefaultTolerance = 0.55

type Options struct {
	Detector   vtypes.ObjectDetector
	Encoder    vtypes.FaceEncoder
	TextReader vtypes.TextReader
	Candidates CandidateSource
	Cooldown   Cooldown
	Recorder   *AlertRecorder
	Metrics    *Metrics
	Tolerance  float64
}

// Engine identifies candidates in webcam frames and turns violations into alerts.
type Engine struct {
	detector   vtypes.ObjectDetector
	encoder    vtypes.FaceEncoder
	textReader vtypes.TextReader
	candidates CandidateSource
	cooldown   Cooldown
	recorder   *AlertRecorder
	metrics    *Metrics
	tolerance  float64
	index      *SignatureIndex
	now        func() time.Time
}

func NewEngine(opts Options) *Engine {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{
		detector:   opts.Detector,
		encoder:    opts.Encoder,
		textReader: opts.TextReader,
		candidates: opts.Candidates,
		cooldown:   opts.Cooldown,
		recorder:   opts.Recorder,
		metrics:    opts.Metrics,
		tolerance:  tolerance,
		index:      NewSignatureIndex(),
		now:        time.Now,
	}
}

func (e *Engine) Signatures() *SignatureIndex {
	return e.index
}

type FrameRequest struct {
	Frame     string
	UserID    string
	SessionID string
}

type RaisedAlert struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	Message    string  `json:"message"`
	SnapshotID *string `json:"snapshot_id,omitempty"`
}

type FrameResult struct {
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Detections map[string]int `json:"detections,omitempty"`
	User       *string        `json:"user"`
	UserID     *string        `json:"user_id"`
	Confidence float64        `json:"confidence"`
	Faces      int            `json:"faces"`
	Alerts     []RaisedAlert  `json:"alerts"`
	Suppressed []string       `json:"suppressed"`
	Warnings   []string       `json:"warnings"`
}

type violation struct {
	kind     string
	severity string
	message  string
	details  map[string]any
}

// MonitorFrame runs one frame through detection, face matching and the alert policy. Collaborator
// failures degrade the result with a warning; only an undecodable frame yields an error status.
func (e *Engine) MonitorFrame(ctx context.Context, req FrameRequest) FrameResult {
	frame, err := DecodeFrame(req.Frame)
	if err != nil {
		e.metrics.frameProcessed(ctx, "error")
		return FrameResult{Status: "error", Message: err.Error()}
	}

	result := FrameResult{
		Status:     "success",
		Detections: map[string]int{labelPerson: 0, labelPhone: 0},
		Alerts:     []RaisedAlert{},
		Suppressed: []string{},
		Warnings:   []string{},
	}
	var annotations []annotation

	detectorOK := true
	detections, err := e.detector.Detect(ctx, frame.Raw)
	if err != nil {
		detectorOK = false
		result.Warnings = append(result.Warnings, WarningDetectorUnavailable)
		e.metrics.collaboratorFailed(ctx, "object_detector")
	}
	for _, d := range detections {
		if _, tracked := result.Detections[d.Label]; !tracked {
			continue
		}
		result.Detections[d.Label]++
		annotations = append(annotations, annotation{Box: d.Box, Label: fmt.Sprintf("%s: %.2f", d.Label, d.Confidence)})
	}

	encoderOK := true
	faces, err := e.encoder.Encode(ctx, frame.Raw)
	if err != nil {
		encoderOK = false
		faces = nil
		result.Warnings = append(result.Warnings, WarningEncoderUnavailable)
		e.metrics.collaboratorFailed(ctx, "face_encoder")
	}
	result.Faces = len(faces)

	var matched *Signature
	for _, face := range faces {
		sig, distance, ok := e.index.Nearest(face.Encoding, e.tolerance)
		label := "unknown"
		if ok {
			label = sig.Name
			// the first face with a match identifies the frame
			if matched == nil {
				matched = &sig
				result.User = &sig.Name
				result.UserID = &sig.UserID
				result.Confidence = utils.RoundTo((1-distance)*100, 2)
			}
		}
		annotations = append(annotations, annotation{Box: face.Box, Label: label})
	}

	violations := e.evaluate(req, result, matched, detectorOK, encoderOK)
	if len(violations) > 0 {
		e.raise(ctx, req, frame, annotations, matched, violations, &result)
	}
	e.metrics.frameProcessed(ctx, "success")
	return result
}

func (e *Engine) evaluate(req FrameRequest, result FrameResult, matched *Signature, detectorOK bool, encoderOK bool) []violation {
	persons := result.Detections[labelPerson]
	phones := result.Detections[labelPhone]
	var violations []violation

	if phones > 0 {
		violations = append(violations, violation{
			kind:     constants.AlertMobilePhone,
			severity: constants.SeverityHigh,
			message:  "Mobile phone detected",
			details:  map[string]any{"count": phones},
		})
	}
	if persons > 1 || result.Faces > 1 {
		violations = append(violations, violation{
			kind:     constants.AlertMultiplePeople,
			severity: constants.SeverityHigh,
			message:  "Multiple people detected",
			details:  map[string]any{"persons": persons, "faces": result.Faces},
		})
	}
	if result.Faces > 0 {
		switch {
		case matched == nil:
			violations = append(violations, violation{
				kind:     constants.AlertImpersonation,
				severity: constants.SeverityCritical,
				message:  "Face does not match any registered candidate",
				details:  map[string]any{"expectedUserID": req.UserID},
			})
		case req.UserID != "" && matched.UserID != req.UserID:
			violations = append(violations, violation{
				kind:     constants.AlertImpersonation,
				severity: constants.SeverityCritical,
				message:  "Face matches a different candidate",
				details: map[string]any{
					"expectedUserID": req.UserID,
					"matchedUserID":  matched.UserID,
					"confidence":     result.Confidence,
				},
			})
		}
	}
	if req.UserID != "" && result.Faces == 0 && detectorOK && encoderOK && persons == 0 {
		violations = append(violations, violation{
			kind:     constants.AlertFaceNotVisible,
			severity: constants.SeverityMedium,
			message:  "Candidate face not visible",
		})
	}
	return violations
}

func (e *Engine) raise(ctx context.Context, req FrameRequest, frame *Frame, annotations []annotation, matched *Signature, violations []violation, result *FrameResult) {
	scope := alertScope(req.SessionID, req.UserID)
	userID := req.UserID
	if userID == "" && matched != nil {
		userID = matched.UserID
	}
	now := e.now()

	var evidence []byte
	for _, v := range violations {
		if e.cooldown != nil && !e.cooldown.Acquire(ctx, scope, v.kind) {
			result.Suppressed = append(result.Suppressed, v.kind)
			e.metrics.alertSuppressed(ctx, v.kind)
			continue
		}
		if evidence == nil {
			snapshot, err := AnnotateSnapshot(frame.Image, annotations, utils.FormatTimestamp(now))
			if err != nil {
				logger.Warning("failed to annotate violation snapshot", logger.LoggerOptions{Key: "error", Data: err})
				snapshot = frame.Raw
			}
			evidence = snapshot
		}
		saved, err := e.recorder.Record(ctx, entities.Alert{
			UserID:    userID,
			SessionID: req.SessionID,
			Type:      v.kind,
			Severity:  v.severity,
			Message:   v.message,
			Details:   v.details,
			Timestamp: now,
		}, evidence)
		if err != nil {
			logger.Error("failed to persist alert", logger.LoggerOptions{Key: "alertType", Data: v.kind}, logger.LoggerOptions{Key: "error", Data: err})
			result.Warnings = append(result.Warnings, "alert_store_unavailable")
			continue
		}
		result.Alerts = append(result.Alerts, RaisedAlert{
			ID:         saved.ID,
			Type:       saved.Type,
			Severity:   saved.Severity,
			Message:    saved.Message,
			SnapshotID: saved.SnapshotID,
		})
	}
}

func alertScope(sessionID string, userID string) string {
	if sessionID != "" {
		return sessionID
	}
	if userID != "" {
		return userID
	}
	return constants.ANONYMOUS_SCOPE
}

// Load rebuilds the signature gallery from every successfully enrolled candidate.
func (e *Engine) Load(ctx context.Context) (int, error) {
	candidates, err := e.candidates.FetchCompletedUsers(ctx)
	if err != nil {
		return 0, err
	}
	signatures := make([]Signature, 0, len(candidates))
	for i := range candidates {
		sig, ok := e.signatureFor(ctx, &candidates[i])
		if ok {
			signatures = append(signatures, sig)
		}
	}
	if err := e.index.Replace(signatures); err != nil {
		return 0, err
	}
	logger.Info("face signatures loaded", logger.LoggerOptions{Key: "count", Data: len(signatures)})
	return len(signatures), nil
}

// Refresh reloads one candidate. Candidates that are no longer enrolled are dropped from the gallery.
func (e *Engine) Refresh(ctx context.Context, userID string) error {
	candidate, err := e.candidates.FetchUser(ctx, userID)
	if err != nil {
		return err
	}
	if candidate == nil || candidate.Status != constants.StatusCompletedSuccessfully {
		e.index.Remove(userID)
		return nil
	}
	sig, ok := e.signatureFor(ctx, candidate)
	if !ok {
		e.index.Remove(userID)
		return nil
	}
	return e.index.Put(sig)
}

func (e *Engine) signatureFor(ctx context.Context, candidate *entities.Candidate) (Signature, bool) {
	encoding := candidate.FaceSignature
	if len(encoding) == 0 {
		derived, err := e.deriveFromFrames(ctx, candidate.ID)
		if err != nil {
			logger.Warning("could not derive face signature", logger.LoggerOptions{Key: "userID", Data: candidate.ID}, logger.LoggerOptions{Key: "error", Data: err})
			return Signature{}, false
		}
		encoding = derived
	}
	if len(encoding) == 0 {
		return Signature{}, false
	}
	return Signature{UserID: candidate.ID, Name: candidate.Name, Email: candidate.Email, Encoding: encoding}, true
}

func (e *Engine) deriveFromFrames(ctx context.Context, userID string) ([]float64, error) {
	frames, err := e.candidates.FetchFrames(ctx, userID)
	if err != nil {
		return nil, err
	}
	var encodings [][]float64
	for _, f := range frames {
		raw, err := utils.DecodeBase64(f.ImageData)
		if err != nil {
			continue
		}
		faces, err := e.encoder.Encode(ctx, raw)
		if err != nil {
			return nil, err
		}
		if len(faces) > 0 {
			encodings = append(encodings, faces[0].Encoding)
		}
	}
	return MeanEncoding(encodings), nil
}
