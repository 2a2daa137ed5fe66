package models

import "time"

// AcademicSettings holds the single row of academic calendar dates
type AcademicSettings struct {
	AcademicYear       string    `json:"academicYear"`
	SubmissionDeadline time.Time `json:"submissionDeadline"`
	FinalEditDeadline  time.Time `json:"finalEditDeadline"`
	PublicationDate    time.Time `json:"publicationDate"`
}

// DefaultAcademicSettings is served when no row has been configured yet
func DefaultAcademicSettings() AcademicSettings {
	return AcademicSettings{
		AcademicYear:       "2024-2025",
		SubmissionDeadline: time.Date(2025, time.May, 25, 0, 0, 0, 0, time.UTC),
		FinalEditDeadline:  time.Date(2025, time.June, 23, 0, 0, 0, 0, time.UTC),
		PublicationDate:    time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SettingsKind names one of the per-user settings documents
type SettingsKind string

const (
	SettingsNotifications SettingsKind = "notifications"
	SettingsDisplay       SettingsKind = "display"
	SettingsExport        SettingsKind = "export"
)

// Column returns the user_settings column holding this document
func (k SettingsKind) Column() string {
	if k == SettingsNotifications {
		return "notification_settings"
	}
	return string(k) + "_settings"
}

// ParseSettingsKind validates a settings kind from a URL segment
func ParseSettingsKind(s string) (SettingsKind, bool) {
	switch SettingsKind(s) {
	case SettingsNotifications, SettingsDisplay, SettingsExport:
		return SettingsKind(s), true
	}
	return "", false
}

// SettingsDocument is a JSON settings document keyed by option name
type SettingsDocument map[string]interface{}

// Bool reads a boolean option, falling back to def when absent or mistyped
func (d SettingsDocument) Bool(key string, def bool) bool {
	if v, ok := d[key].(bool); ok {
		return v
	}
	return def
}

// DefaultSettings returns a fresh copy of the defaults for a kind
func DefaultSettings(kind SettingsKind) SettingsDocument {
	switch kind {
	case SettingsNotifications:
		return SettingsDocument{
			"email_notifications":     true,
			"comment_notifications":   true,
			"selection_notifications": true,
			"deadline_reminders":      true,
		}
	case SettingsDisplay:
		return SettingsDocument{
			"dark_mode":       true,
			"compact_view":    false,
			"show_statistics": true,
			"default_view":    "submissions",
		}
	case SettingsExport:
		return SettingsDocument{
			"include_comments": true,
			"include_metadata": true,
			"default_format":   "zip",
		}
	}
	return SettingsDocument{}
}
