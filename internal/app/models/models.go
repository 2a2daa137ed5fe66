package models

import "strings"

// SubmissionStatus is the review state of a submission
type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "Submitted"
	StatusSelected  SubmissionStatus = "Selected"
	StatusRejected  SubmissionStatus = "Rejected"
)

// ParseSubmissionStatus matches a status name case-insensitively
func ParseSubmissionStatus(s string) (SubmissionStatus, bool) {
	for _, st := range []SubmissionStatus{StatusSubmitted, StatusSelected, StatusRejected} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Activity action types written to activity_logs
const (
	ActionRegistration   = "Registration"
	ActionLogin          = "Login"
	ActionSubmission     = "Submission"
	ActionDownload       = "Download"
	ActionPreview        = "Preview"
	ActionPublicDownload = "Public Download"
	ActionView           = "View"
	ActionUserCreated    = "User Created"
	ActionUserUpdated    = "User Updated"
	ActionUserDeleted    = "User Deleted"
	ActionComment        = "Comment"
	ActionStatusUpdate   = "Status Update"
	ActionSettingsUpdate = "Settings Update"
	ActionZipDownload    = "ZIP Download"
	ActionDataExport     = "Data Export"
	ActionProfileUpdate  = "Profile Update"
)
