package constants

import "time"

// invigil response codes
// these consist of 4 digit numbers
//
// the 1st 3 identify the scenario
// 4th indicates if the response requires user interaction through a dialog box. 0 means it does not require. 1 means it requires.

var VIDEO_TOO_SMALL uint = 4311         // ask the candidate to record the enrollment video again
var SESSION_TOKEN_EXPIRED uint = 6170   // start a new exam session
var SESSION_TOKEN_MISMATCH uint = 6180  // the token does not belong to the user or session in the payload
var COPY_PASTE_BLOCKED uint = 7221      // show the clipboard warning dialog
var IMPERSONATION_SUSPECTED uint = 7331 // show the proctor warning dialog

// candidate registration statuses
const (
	StatusInitiated               = "initiated"
	StatusVideoTooSmall           = "video_too_small"
	StatusVideoCaptured           = "video_captured"
	StatusFrameExtractionFailed   = "frame_extraction_failed"
	StatusNoFramesExtracted       = "no_frames_extracted"
	StatusFrameExtractionComplete = "frame_extraction_complete"
	StatusAnnotationFailed        = "annotation_generation_failed"
	StatusModelTrainingStarted    = "model_training_started"
	StatusCompletedSuccessfully   = "completed_successfully"
	StatusCompletedWithoutModel   = "completed_without_model"
	StatusProcessingSkipped       = "processing_skipped"
	StatusError                   = "error"
)

// alert severities
const (
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// alert types
const (
	AlertMobilePhone     = "mobile_phone"
	AlertMultiplePeople  = "multiple_people"
	AlertImpersonation   = "impersonation"
	AlertFaceNotVisible  = "face_not_visible"
	AlertTabSwitch       = "tab_switch"
	AlertSuspiciousMouse = "suspicious_mouse"
	AlertScreenCapture   = "screen_capture"
	AlertClipboardPaste  = "clipboard_paste"
)

const (
	MIN_VIDEO_BYTES     = 1000
	FRAMES_PER_SECOND   = 1
	MAX_ENROLL_FRAMES   = 30
	MAX_CLIPBOARD_CHARS = 200
	CORNER_MARGIN_PX    = 10
	DEFAULT_SCREEN_W    = 1000
	DEFAULT_SCREEN_H    = 700
)

var BLOCKED_CLIPBOARD_ACTIONS = []string{"copy", "paste", "cut"}

const ANONYMOUS_SCOPE = "anonymous"

const SIGNATURE_REFRESH_CHANNEL = "invigil:signatures:refresh"

var SAMPLING_COUNTER_TTL = 6 * time.Hour
