package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/auth"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

type submissionFixture struct {
	svc      *SubmissionService
	subs     *fakeSubmissionStore
	comments *fakeCommentStore
	storage  *fakeStorage
	notifier *fakeNotifier
	activity *fakeActivity
}

var (
	testNow      = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	openCalendar = models.AcademicSettings{
		AcademicYear:       "2024-2025",
		SubmissionDeadline: time.Date(2025, time.May, 25, 0, 0, 0, 0, time.UTC),
		FinalEditDeadline:  time.Date(2025, time.June, 23, 0, 0, 0, 0, time.UTC),
		PublicationDate:    time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
)

func newSubmissionFixture(calendar models.AcademicSettings, subs ...*models.Submission) *submissionFixture {
	users := newFakeUserStore(
		&models.User{ID: 1, FirstName: "Admin", LastName: "User", Email: "admin@uni.edu", Role: models.RoleAdmin},
		&models.User{ID: 2, FirstName: "Mark", LastName: "Eting", Email: "manager@uni.edu", Role: models.RoleManager},
		&models.User{ID: 3, FirstName: "Cora", LastName: "Dinator", Email: "coord@uni.edu", Role: models.RoleCoordinator, FacultyID: int64Ptr(1)},
		&models.User{ID: 4, FirstName: "Stu", LastName: "Dent", Email: "student@uni.edu", Role: models.RoleStudent, FacultyID: int64Ptr(1)},
		&models.User{ID: 5, FirstName: "No", LastName: "Faculty", Email: "nofaculty@uni.edu", Role: models.RoleStudent},
	)
	f := &submissionFixture{
		subs:     newFakeSubmissionStore(subs...),
		comments: &fakeCommentStore{},
		storage:  newFakeStorage(),
		notifier: &fakeNotifier{},
		activity: &fakeActivity{},
	}
	f.svc = NewSubmissionService(f.subs, f.comments, users, fakeCalendar{settings: calendar},
		f.storage, f.notifier, f.activity, zerolog.Nop(), 10<<20)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func viewerFor(id int64, role models.Role, facultyID *int64) auth.Viewer {
	return auth.Viewer{UserID: id, Role: role, FacultyID: facultyID}
}

func TestCreateSubmission(t *testing.T) {
	f := newSubmissionFixture(openCalendar)

	sub, err := f.svc.Create(context.Background(), 4, &dto.CreateSubmissionForm{
		Title:         " My Article ",
		Description:   "About things",
		AcademicYear:  "2024-2025",
		TermsAccepted: "true",
	}, uploadHeader("article.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", 1024))
	require.NoError(t, err)

	assert.Equal(t, "My Article", sub.Title)
	assert.Equal(t, models.StatusSubmitted, sub.Status)
	assert.False(t, sub.Selected)
	assert.Equal(t, int64(1), sub.FacultyID)
	assert.Equal(t, "docx", sub.FileType)
	assert.Equal(t, "user_4/file-1-1.docx", sub.FilePath)
	assert.Equal(t, []string{models.ActionSubmission}, f.activity.actions())
}

func TestCreateSubmissionRejects(t *testing.T) {
	valid := dto.CreateSubmissionForm{Title: "T", AcademicYear: "2024-2025", TermsAccepted: "on"}
	pdf := uploadHeader("a.pdf", "application/pdf", 100)
	closedCalendar := openCalendar
	closedCalendar.SubmissionDeadline = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		userID   int64
		form     dto.CreateSubmissionForm
		calendar models.AcademicSettings
		wantErr  error
	}{
		{name: "terms not accepted", userID: 4, form: dto.CreateSubmissionForm{Title: "T", AcademicYear: "2024-2025"}, calendar: openCalendar, wantErr: apperrors.ErrValidationFailed},
		{name: "bad academic year", userID: 4, form: dto.CreateSubmissionForm{Title: "T", AcademicYear: "2024", TermsAccepted: "true"}, calendar: openCalendar, wantErr: apperrors.ErrValidationFailed},
		{name: "missing title", userID: 4, form: dto.CreateSubmissionForm{AcademicYear: "2024-2025", TermsAccepted: "true"}, calendar: openCalendar, wantErr: apperrors.ErrValidationFailed},
		{name: "no faculty", userID: 5, form: valid, calendar: openCalendar, wantErr: apperrors.ErrResourceNotFound},
		{name: "deadline passed", userID: 4, form: valid, calendar: closedCalendar, wantErr: apperrors.ErrDeadlinePassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubmissionFixture(tt.calendar)
			form := tt.form
			_, err := f.svc.Create(context.Background(), tt.userID, &form, pdf)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.storage.files)
		})
	}

	t.Run("file too large", func(t *testing.T) {
		f := newSubmissionFixture(openCalendar)
		form := valid
		_, err := f.svc.Create(context.Background(), 4, &form, uploadHeader("a.pdf", "application/pdf", 11<<20))
		assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newSubmissionFixture(openCalendar)
		form := valid
		_, err := f.svc.Create(context.Background(), 4, &form, uploadHeader("a.exe", "application/x-msdownload", 100))
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
	})
}

func TestCreateSubmissionRemovesFileOnInsertFailure(t *testing.T) {
	f := newSubmissionFixture(openCalendar)
	f.subs.createErr = errors.New("insert failed")

	form := dto.CreateSubmissionForm{Title: "T", AcademicYear: "2024-2025", TermsAccepted: "true"}
	_, err := f.svc.Create(context.Background(), 4, &form, uploadHeader("a.png", "image/png", 100))
	require.Error(t, err)

	assert.Empty(t, f.storage.files)
	assert.Equal(t, []string{"user_4/file-1-1.png"}, f.storage.deleted)
}

func TestScopeFilter(t *testing.T) {
	tests := []struct {
		name   string
		viewer auth.Viewer
		check  func(t *testing.T, f models.SubmissionFilter)
	}{
		{"admin unrestricted", viewerFor(1, models.RoleAdmin, nil), func(t *testing.T, f models.SubmissionFilter) {
			assert.False(t, f.SelectedOnly)
			assert.Nil(t, f.UserID)
			assert.Nil(t, f.FacultyID)
		}},
		{"manager selected only", viewerFor(2, models.RoleManager, nil), func(t *testing.T, f models.SubmissionFilter) {
			assert.True(t, f.SelectedOnly)
		}},
		{"coordinator own faculty", viewerFor(3, models.RoleCoordinator, int64Ptr(1)), func(t *testing.T, f models.SubmissionFilter) {
			require.NotNil(t, f.FacultyID)
			assert.Equal(t, int64(1), *f.FacultyID)
		}},
		{"student own rows", viewerFor(4, models.RoleStudent, int64Ptr(1)), func(t *testing.T, f models.SubmissionFilter) {
			require.NotNil(t, f.UserID)
			assert.Equal(t, int64(4), *f.UserID)
		}},
		{"anonymous selected only", auth.Anonymous(), func(t *testing.T, f models.SubmissionFilter) {
			assert.True(t, f.SelectedOnly)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ScopeFilter(tt.viewer, models.SubmissionFilter{})
			require.NoError(t, err)
			tt.check(t, f)
		})
	}

	_, err := ScopeFilter(viewerFor(3, models.RoleCoordinator, nil), models.SubmissionFilter{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestDownload(t *testing.T) {
	selected := &models.Submission{ID: 10, UserID: 4, FacultyID: 1, Title: "Chosen", FilePath: "user_4/a.pdf", FileType: "pdf", Status: models.StatusSelected, Selected: true}
	pending := &models.Submission{ID: 11, UserID: 4, FacultyID: 1, Title: "Pending", FilePath: "user_4/b.pdf", FileType: "pdf", Status: models.StatusSubmitted}
	missing := &models.Submission{ID: 12, UserID: 4, FacultyID: 1, Title: "Gone", FilePath: "user_4/gone.pdf", FileType: "pdf", Status: models.StatusSelected, Selected: true}

	f := newSubmissionFixture(openCalendar, selected, pending, missing)
	f.storage.files["user_4/a.pdf"] = "pdf-bytes"
	f.storage.files["user_4/b.pdf"] = "pdf-bytes"

	sub, file, err := f.svc.Download(context.Background(), auth.Anonymous(), 10, false)
	require.NoError(t, err)
	data, _ := io.ReadAll(file)
	file.Close()
	assert.Equal(t, "Chosen", sub.Title)
	assert.Equal(t, "pdf-bytes", string(data))

	_, _, err = f.svc.Download(context.Background(), viewerFor(2, models.RoleManager, nil), 11, false)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, _, err = f.svc.Download(context.Background(), viewerFor(3, models.RoleCoordinator, int64Ptr(2)), 11, false)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, file, err = f.svc.Download(context.Background(), viewerFor(3, models.RoleCoordinator, int64Ptr(1)), 11, true)
	require.NoError(t, err)
	file.Close()

	_, _, err = f.svc.Download(context.Background(), viewerFor(1, models.RoleAdmin, nil), 12, false)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	_, _, err = f.svc.Download(context.Background(), viewerFor(1, models.RoleAdmin, nil), 404, false)
	assert.ErrorIs(t, err, apperrors.ErrSubmissionNotFound)

	assert.Equal(t, []string{models.ActionPublicDownload, models.ActionPreview}, f.activity.actions())
	assert.Nil(t, f.activity.entries[0].UserID)
}

func TestAddCommentAndUpdateStatus(t *testing.T) {
	sub := &models.Submission{ID: 20, UserID: 4, FacultyID: 1, Title: "Essay", AuthorEmail: "student@uni.edu", Status: models.StatusSubmitted}
	f := newSubmissionFixture(openCalendar, sub)
	coord := viewerFor(3, models.RoleCoordinator, int64Ptr(1))

	comment, err := f.svc.AddComment(context.Background(), coord, 20, "  Nice work  ")
	require.NoError(t, err)
	assert.Equal(t, "Nice work", comment.Text)
	assert.Equal(t, "Cora", comment.FirstName)
	assert.Equal(t, models.RoleCoordinator, comment.Role)
	assert.Equal(t, []string{"Cora Dinator: Nice work"}, f.notifier.comments)

	_, err = f.svc.AddComment(context.Background(), coord, 20, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.AddComment(context.Background(), viewerFor(4, models.RoleStudent, int64Ptr(1)), 20, "self review")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := f.svc.UpdateStatus(context.Background(), coord, 20, "Selected")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSelected, updated.Status)
	assert.True(t, updated.Selected)
	assert.True(t, f.subs.subs[20].Selected)
	assert.Equal(t, []int64{20}, f.notifier.selection)

	_, err = f.svc.UpdateStatus(context.Background(), coord, 20, "Published")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.UpdateStatus(context.Background(), viewerFor(3, models.RoleCoordinator, int64Ptr(2)), 20, "Rejected")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	comments, err := f.svc.Comments(context.Background(), viewerFor(1, models.RoleAdmin, nil), 20)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCoordinatorCannotReviewAfterFinalDeadline(t *testing.T) {
	closed := openCalendar
	closed.FinalEditDeadline = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	sub := &models.Submission{ID: 30, UserID: 4, FacultyID: 1, Status: models.StatusSubmitted}
	f := newSubmissionFixture(closed, sub)

	_, err := f.svc.UpdateStatus(context.Background(), viewerFor(3, models.RoleCoordinator, int64Ptr(1)), 30, "Rejected")
	assert.ErrorIs(t, err, apperrors.ErrDeadlinePassed)

	_, err = f.svc.UpdateStatus(context.Background(), viewerFor(1, models.RoleAdmin, nil), 30, "Rejected")
	assert.NoError(t, err)
}
