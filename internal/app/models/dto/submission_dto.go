package dto

import (
	"strings"
	"time"

	"github.com/yigit/unimag/internal/app/models"
)

// CreateSubmissionForm holds the multipart fields of an upload. The file itself is read separately.
type CreateSubmissionForm struct {
	Title         string `form:"title" binding:"required"`
	Description   string `form:"description"`
	AcademicYear  string `form:"academicYear" binding:"required"`
	TermsAccepted string `form:"termsAccepted"`
}

// Accepted reports whether the terms checkbox was ticked
func (f CreateSubmissionForm) Accepted() bool {
	switch strings.ToLower(strings.TrimSpace(f.TermsAccepted)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// SubmissionCreated is the summary returned after an upload
type SubmissionCreated struct {
	ID          int64                   `json:"id"`
	Title       string                  `json:"title"`
	Status      models.SubmissionStatus `json:"status"`
	SubmittedAt time.Time               `json:"submittedAt"`
}

// CreateSubmissionResponse is the body of a successful upload
type CreateSubmissionResponse struct {
	Message    string            `json:"message"`
	Submission SubmissionCreated `json:"submission"`
}

// SubmissionListResponse represents a page of submissions
type SubmissionListResponse struct {
	Submissions []*models.Submission `json:"submissions"`
	PaginationInfo
}

// UpdateStatusRequest changes the review status of a submission
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Selected Rejected Submitted"`
}

// CreateCommentRequest adds a reviewer comment
type CreateCommentRequest struct {
	CommentText string `json:"comment_text" binding:"required"`
}

// ZipDownloadRequest optionally restricts a ZIP export to some submissions
type ZipDownloadRequest struct {
	SubmissionIDs []int64 `json:"submissionIds"`
}
