package registration_usecases

import "errors"

// Messages are shown to the candidate as is.
var (
	ErrMissingVideoFields = errors.New("Missing video data or user ID")
	ErrVideoFormat        = errors.New("Invalid video data format")
	ErrVideoEncoding      = errors.New("Invalid video data encoding")
	ErrVideoTooSmall      = errors.New("Recorded video is too small or empty")
	ErrMissingUserID      = errors.New("Missing user_id parameter")
	ErrMissingUserIDBody  = errors.New("Missing user ID")
	ErrUserNotFound       = errors.New("User not found")
)
