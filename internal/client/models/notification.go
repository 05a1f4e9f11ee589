package models

// Severity tags a notification for rendering.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is the single transient message of one notification surface.
type Notification struct {
	Visible  bool
	Message  string
	Severity Severity
}
