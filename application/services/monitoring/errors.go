package monitoring

import "errors"

var (
	ErrMalformedFrame      = errors.New("malformed frame")
	ErrUnsupportedImage    = errors.New("unsupported image format")
	ErrMissingIdentifiers  = errors.New("Missing user_id or session_id")
	ErrUserNotFound        = errors.New("User not found")
	ErrNoTextReader        = errors.New("no ocr service configured")
	ErrNothingToVerify     = errors.New("either text or image is required")
	ErrSignatureDimensions = errors.New("face encoding dimension does not match the index")
)

// collaborator failure warnings surfaced in frame results
const (
	WarningDetectorUnavailable = "object_detector_unavailable"
	WarningEncoderUnavailable  = "face_encoder_unavailable"
)
