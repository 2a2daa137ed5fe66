package dto

import (
	"time"

	"github.com/yigit/unimag/internal/app/models"
)

// AdminDashboardStats is the admin landing page summary
type AdminDashboardStats struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalSubmissions    int64 `json:"totalSubmissions"`
	PendingSubmissions  int64 `json:"pendingSubmissions"`
	SelectedSubmissions int64 `json:"selectedSubmissions"`
}

// ManagerDashboardStats is the marketing manager overview
type ManagerDashboardStats struct {
	TotalSubmissions    int64 `json:"totalSubmissions"`
	SelectedSubmissions int64 `json:"selectedSubmissions"`
	PendingSelections   int64 `json:"pendingSelections"`
	TotalContributors   int64 `json:"totalContributors"`
}

// CoordinatorDashboardStats summarizes one faculty
type CoordinatorDashboardStats struct {
	FacultyID        int64  `json:"facultyId"`
	FacultyName      string `json:"facultyName"`
	TotalSubmissions int64  `json:"totalSubmissions"`
	PendingReview    int64  `json:"pendingReview"`
	Selected         int64  `json:"selected"`
	Rejected         int64  `json:"rejected"`
	Contributors     int64  `json:"contributors"`
}

// ActivityLogRequest records a client-reported action
type ActivityLogRequest struct {
	ActionType    string `json:"action_type" binding:"required"`
	ActionDetails string `json:"action_details"`
}

// ActivityLogResponse acknowledges a recorded action
type ActivityLogResponse struct {
	Success bool  `json:"success"`
	LogID   int64 `json:"logId"`
}

// AcademicSettingsRequest updates the academic calendar. Dates use YYYY-MM-DD.
type AcademicSettingsRequest struct {
	AcademicYear       string `json:"academic_year" binding:"required"`
	SubmissionDeadline string `json:"submission_deadline" binding:"required"`
	FinalEditDeadline  string `json:"final_edit_deadline" binding:"required"`
	PublicationDate    string `json:"publication_date" binding:"required"`
}

// AcademicSettingsResponse renders the academic calendar with plain dates
type AcademicSettingsResponse struct {
	AcademicYear       string `json:"academicYear"`
	SubmissionDeadline string `json:"submissionDeadline"`
	FinalEditDeadline  string `json:"finalEditDeadline"`
	PublicationDate    string `json:"publicationDate"`
}

// NewAcademicSettingsResponse formats settings dates as YYYY-MM-DD
func NewAcademicSettingsResponse(s models.AcademicSettings) AcademicSettingsResponse {
	const layout = "2006-01-02"
	return AcademicSettingsResponse{
		AcademicYear:       s.AcademicYear,
		SubmissionDeadline: s.SubmissionDeadline.Format(layout),
		FinalEditDeadline:  s.FinalEditDeadline.Format(layout),
		PublicationDate:    s.PublicationDate.Format(layout),
	}
}

// PublicationExport is the JSON document produced by the statistics export
type PublicationExport struct {
	GeneratedAt      time.Time                 `json:"generatedAt"`
	Overview         ManagerDashboardStats     `json:"overview"`
	FacultyStats     []models.FacultyStat      `json:"facultyStats"`
	ContributorStats []models.ContributorStat  `json:"contributorStats"`
	DocumentTypes    []models.DocumentTypeStat `json:"documentTypes"`
	Trends           PublicationExportTrends   `json:"trends"`
}

// PublicationExportTrends holds both trend granularities
type PublicationExportTrends struct {
	Yearly  []models.TrendPoint `json:"yearly"`
	Monthly []models.TrendPoint `json:"monthly"`
}

// HealthResponse is the liveness check body
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// DBTestResponse reports the database clock
type DBTestResponse struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"serverTime"`
}
