package auth

import (
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

// Viewer is the principal a permission check is evaluated for.
// The zero value is an anonymous visitor.
type Viewer struct {
	UserID    int64
	Role      models.Role
	FacultyID *int64
}

// Anonymous returns the viewer used by public routes
func Anonymous() Viewer {
	return Viewer{}
}

// NewViewer builds a viewer from an authenticated user
func NewViewer(u *models.User) Viewer {
	return Viewer{UserID: u.ID, Role: u.Role, FacultyID: u.FacultyID}
}

// IsAnonymous reports whether the viewer is not signed in
func (v Viewer) IsAnonymous() bool {
	return v.UserID == 0
}

// InFaculty reports whether the viewer belongs to the given faculty
func (v Viewer) InFaculty(facultyID int64) bool {
	return v.FacultyID != nil && *v.FacultyID == facultyID
}

// CanDownload decides whether the viewer may fetch the file of a submission.
//
//	ADMIN       every submission
//	MNGR        selected submissions
//	COORD       submissions of their own faculty
//	STUD        their own submissions
//	anonymous   selected submissions
func CanDownload(v Viewer, s *models.Submission) bool {
	if s == nil {
		return false
	}
	if v.IsAnonymous() {
		return s.Selected
	}

	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return s.Selected
	case models.RoleCoordinator:
		return v.InFaculty(s.FacultyID)
	case models.RoleStudent:
		return s.UserID == v.UserID
	}
	return false
}

// CanReview reports whether the viewer may comment on and change the status of a submission
func CanReview(v Viewer, s *models.Submission) bool {
	if s == nil || v.IsAnonymous() {
		return false
	}
	switch v.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCoordinator:
		return v.InFaculty(s.FacultyID)
	}
	return false
}

// RequireDownload returns ErrPermissionDenied when CanDownload fails
func RequireDownload(v Viewer, s *models.Submission) error {
	if !CanDownload(v, s) {
		return apperrors.NewForbiddenError("You do not have permission to download this submission")
	}
	return nil
}

// RequireReview returns ErrPermissionDenied when CanReview fails
func RequireReview(v Viewer, s *models.Submission) error {
	if !CanReview(v, s) {
		return apperrors.NewForbiddenError("You do not have permission to review this submission")
	}
	return nil
}
