package emails

type EmailServiceType interface {
	SendEmail(toEmail string, subject string, templateName string, opts interface{}) bool
}

// ProctorAlert is the data rendered into the proctor_alert template.
type ProctorAlert struct {
	AlertID   string
	UserID    string
	SessionID string
	Type      string
	Severity  string
	Message   string
	Time      string
}
