package dto

type StartSessionDTO struct {
	UserID string `json:"user_id" validate:"required"`
}

type MonitorFrameDTO struct {
	Frame     string  `json:"frame"`
	UserID    *string `json:"user_id"`
	SessionID *string `json:"session_id"`
}

type VerifyIDDTO struct {
	UserID string  `json:"user_id" validate:"required"`
	Text   *string `json:"text"`
	Image  *string `json:"image"`
}

// TelemetryDTO carries browser events. Event holds the event specific fields; mouse events
// arrive under movement_data.
type TelemetryDTO struct {
	UserID    string         `json:"user_id"`
	SessionID string         `json:"session_id"`
	Event     map[string]any `json:"event_data"`
	Movement  map[string]any `json:"movement_data"`
}

type ListAlertsDTO struct {
	UserID    string `form:"user_id"`
	SessionID string `form:"session_id"`
	Limit     int64  `form:"limit" validate:"omitempty,min=1,max=100"`
}
