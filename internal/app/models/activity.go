package models

import "time"

// ActivityLog is a row of activity_logs joined with the acting user's name
type ActivityLog struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"userId"`
	Action    string    `json:"actionType"`
	Details   string    `json:"actionDetails"`
	Timestamp time.Time `json:"timestamp"`
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
}

// PageVisit records a browser page view
type PageVisit struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"userId"`
	PageURL     string    `json:"pageUrl"`
	VisitedAt   time.Time `json:"visitTimestamp"`
	BrowserInfo string    `json:"browserInfo"`
	IPAddress   string    `json:"ipAddress"`
}
