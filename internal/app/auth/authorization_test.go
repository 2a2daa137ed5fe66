package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCanDownload(t *testing.T) {
	own := &models.Submission{ID: 1, UserID: 10, FacultyID: 1, Selected: false}
	selectedOther := &models.Submission{ID: 2, UserID: 20, FacultyID: 2, Selected: true}

	tests := []struct {
		name   string
		viewer Viewer
		sub    *models.Submission
		want   bool
	}{
		{"admin sees unselected", Viewer{UserID: 1, Role: models.RoleAdmin}, own, true},
		{"manager denied unselected", Viewer{UserID: 2, Role: models.RoleManager}, own, false},
		{"manager sees selected", Viewer{UserID: 2, Role: models.RoleManager}, selectedOther, true},
		{"coordinator same faculty", Viewer{UserID: 3, Role: models.RoleCoordinator, FacultyID: int64Ptr(1)}, own, true},
		{"coordinator other faculty", Viewer{UserID: 3, Role: models.RoleCoordinator, FacultyID: int64Ptr(1)}, selectedOther, false},
		{"coordinator without faculty", Viewer{UserID: 3, Role: models.RoleCoordinator}, own, false},
		{"student own", Viewer{UserID: 10, Role: models.RoleStudent, FacultyID: int64Ptr(1)}, own, true},
		{"student other even selected", Viewer{UserID: 10, Role: models.RoleStudent}, selectedOther, false},
		{"anonymous selected", Anonymous(), selectedOther, true},
		{"anonymous unselected", Anonymous(), own, false},
		{"unknown role", Viewer{UserID: 9, Role: models.Role(7)}, selectedOther, false},
		{"nil submission", Viewer{UserID: 1, Role: models.RoleAdmin}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanDownload(tt.viewer, tt.sub))
		})
	}
}

func TestCanReview(t *testing.T) {
	sub := &models.Submission{UserID: 10, FacultyID: 1}

	assert.True(t, CanReview(Viewer{UserID: 1, Role: models.RoleAdmin}, sub))
	assert.True(t, CanReview(Viewer{UserID: 3, Role: models.RoleCoordinator, FacultyID: int64Ptr(1)}, sub))
	assert.False(t, CanReview(Viewer{UserID: 3, Role: models.RoleCoordinator, FacultyID: int64Ptr(2)}, sub))
	assert.False(t, CanReview(Viewer{UserID: 2, Role: models.RoleManager}, sub))
	assert.False(t, CanReview(Viewer{UserID: 10, Role: models.RoleStudent}, sub))
	assert.False(t, CanReview(Anonymous(), sub))
}

func TestRequireDownloadIsForbidden(t *testing.T) {
	err := RequireDownload(Anonymous(), &models.Submission{Selected: false})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.NoError(t, RequireDownload(Anonymous(), &models.Submission{Selected: true}))
}

func TestNewViewer(t *testing.T) {
	u := &models.User{ID: 5, Role: models.RoleCoordinator, FacultyID: int64Ptr(3)}
	v := NewViewer(u)
	assert.False(t, v.IsAnonymous())
	assert.True(t, v.InFaculty(3))
	assert.False(t, v.InFaculty(4))
}
