package models

import "time"

// SubmissionCounts aggregates submission counters for a scope (all or one faculty)
type SubmissionCounts struct {
	Total        int64
	Submitted    int64
	Selected     int64
	Rejected     int64
	Contributors int64
}

// FacultyStat is the per-faculty submission breakdown
type FacultyStat struct {
	FacultyID        int64  `json:"facultyId"`
	FacultyName      string `json:"facultyName"`
	SubmissionCount  int64  `json:"submissionCount"`
	SelectedCount    int64  `json:"selectedCount"`
	ContributorCount int64  `json:"contributorCount"`
}

// ContributorStat ranks users by the number of submissions
type ContributorStat struct {
	UserID          int64  `json:"userId"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	FacultyName     string `json:"facultyName"`
	SubmissionCount int64  `json:"submissionCount"`
	SelectedCount   int64  `json:"selectedCount"`
}

// TrendPoint is one period bucket of the submission trend
type TrendPoint struct {
	Period          string `json:"period"`
	SubmissionCount int64  `json:"submissionCount"`
	SelectedCount   int64  `json:"selectedCount"`
}

// TrendBucket is a raw per-period count as returned by the database
type TrendBucket struct {
	Start           time.Time
	SubmissionCount int64
	SelectedCount   int64
}

// DocumentTypeStat is the share of one file type among selected submissions
type DocumentTypeStat struct {
	Type       string  `json:"type"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FacultyStudentStat counts students and contributing students of a faculty
type FacultyStudentStat struct {
	FacultyID        int64  `json:"facultyId"`
	FacultyName      string `json:"facultyName"`
	StudentCount     int64  `json:"studentCount"`
	ContributorCount int64  `json:"contributorCount"`
}

// PageViewStat counts visits of one page URL
type PageViewStat struct {
	PageURL   string `json:"pageUrl"`
	ViewCount int64  `json:"viewCount"`
}

// BrowserUsage is a raw (user agent, user) observation from page_visits
type BrowserUsage struct {
	BrowserInfo string
	UserID      *int64
}

// BrowserStat counts distinct users per browser family and major version
type BrowserStat struct {
	Browser   string `json:"browser"`
	Version   string `json:"version,omitempty"`
	UserCount int64  `json:"userCount"`
}

// UserActivityStat summarizes what one user did
type UserActivityStat struct {
	UserID          int64      `json:"userId"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Role            Role       `json:"role" swaggertype:"string" example:"STUD"`
	LoginCount      int64      `json:"loginCount"`
	SubmissionCount int64      `json:"submissionCount"`
	CommentCount    int64      `json:"commentCount"`
	LastActivity    *time.Time `json:"lastActivity"`
}
