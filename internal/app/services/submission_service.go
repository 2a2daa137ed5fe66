package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/auth"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/filestorage"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/validation"
)

// AcademicCalendar provides the current academic settings
type AcademicCalendar interface {
	AcademicSettings(ctx context.Context) (models.AcademicSettings, error)
}

// ReviewNotifier tells submission owners about review events
type ReviewNotifier interface {
	CommentAdded(ctx context.Context, sub *models.Submission, commenter, text string)
	SubmissionSelected(ctx context.Context, sub *models.Submission)
}

// SubmissionService handles uploads, role-scoped listings, downloads and reviews
type SubmissionService struct {
	repo          SubmissionStore
	comments      CommentStore
	users         UserStore
	calendar      AcademicCalendar
	storage       filestorage.FileStorage
	notifier      ReviewNotifier
	activity      ActivityLogger
	logger        zerolog.Logger
	maxUploadSize int64
	now           func() time.Time
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	repo SubmissionStore,
	comments CommentStore,
	users UserStore,
	calendar AcademicCalendar,
	storage filestorage.FileStorage,
	notifier ReviewNotifier,
	activity ActivityLogger,
	logger zerolog.Logger,
	maxUploadSize int64,
) *SubmissionService {
	return &SubmissionService{
		repo:          repo,
		comments:      comments,
		users:         users,
		calendar:      calendar,
		storage:       storage,
		notifier:      notifier,
		activity:      activity,
		logger:        logger,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// Create validates an upload, stores the file and records the submission.
// The stored file is removed again if anything after the write fails.
func (s *SubmissionService) Create(ctx context.Context, userID int64, form *dto.CreateSubmissionForm, fileHeader *multipart.FileHeader) (*models.Submission, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	if err := validation.ValidateAcademicYear(form.AcademicYear); err != nil {
		return nil, err
	}
	if fileHeader == nil {
		return nil, apperrors.NewValidationError("file", "No file uploaded")
	}
	if !form.Accepted() {
		return nil, apperrors.NewValidationError("termsAccepted", "Terms and conditions must be accepted")
	}
	if err := filestorage.ValidateUpload(fileHeader, s.maxUploadSize); err != nil {
		return nil, err
	}

	settings, err := s.calendar.AcademicSettings(ctx)
	if err != nil {
		return nil, err
	}
	if s.now().After(helpers.EndOfDay(settings.SubmissionDeadline)) {
		return nil, apperrors.NewCustomError(apperrors.ErrDeadlinePassed,
			fmt.Sprintf("The submission deadline (%s) has passed", settings.SubmissionDeadline.Format(helpers.DateLayout)))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.FacultyID == nil {
		return nil, apperrors.NewResourceNotFoundError("User faculty not found")
	}

	stored, err := s.storage.SaveUpload(userID, fileHeader)
	if err != nil {
		return nil, err
	}

	sub := &models.Submission{
		UserID:        userID,
		FacultyID:     *user.FacultyID,
		Title:         title,
		Description:   helpers.NullableString(strings.TrimSpace(form.Description)),
		AcademicYear:  strings.TrimSpace(form.AcademicYear),
		FilePath:      stored.Path,
		FileType:      stored.FileType,
		Status:        models.StatusSubmitted,
		Selected:      false,
		TermsAccepted: true,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if delErr := s.storage.Delete(stored.Path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", stored.Path).Msg("Error removing upload after failed insert")
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info().Int64("submissionID", sub.ID).Int64("userID", userID).Str("fileType", sub.FileType).Msg("Submission created")
	s.activity.Log(ctx, &userID, models.ActionSubmission, fmt.Sprintf("Submitted %q", sub.Title))
	return sub, nil
}

// ScopeFilter restricts a listing filter to what the viewer may see
func ScopeFilter(v auth.Viewer, filter models.SubmissionFilter) (models.SubmissionFilter, error) {
	if v.IsAnonymous() {
		filter.SelectedOnly = true
		filter.UserID = nil
		return filter, nil
	}

	switch v.Role {
	case models.RoleAdmin:
	case models.RoleManager:
		filter.SelectedOnly = true
	case models.RoleCoordinator:
		if v.FacultyID == nil {
			return filter, apperrors.NewForbiddenError("No faculty assigned to this coordinator")
		}
		id := *v.FacultyID
		filter.FacultyID = &id
	case models.RoleStudent:
		id := v.UserID
		filter.UserID = &id
	default:
		return filter, apperrors.NewForbiddenError("Unknown role")
	}
	return filter, nil
}

// List returns the submissions the viewer may see, newest first
func (s *SubmissionService) List(ctx context.Context, v auth.Viewer, filter models.SubmissionFilter) ([]*models.Submission, dto.PaginationInfo, error) {
	scoped, err := ScopeFilter(v, filter)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	subs, pagination, err := s.repo.List(ctx, scoped)
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, pagination, nil
}

// Get returns one submission if the viewer may access it
func (s *SubmissionService) Get(ctx context.Context, v auth.Viewer, id int64) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireDownload(v, sub); err != nil {
		return nil, apperrors.NewForbiddenError("You do not have permission to view this submission")
	}
	return sub, nil
}

// Download opens the stored file of a submission after the download policy
// allows it. The caller must close the returned file.
func (s *SubmissionService) Download(ctx context.Context, v auth.Viewer, id int64, preview bool) (*models.Submission, filestorage.File, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireDownload(v, sub); err != nil {
		return nil, nil, err
	}

	f, err := s.storage.Open(sub.FilePath)
	if err != nil {
		if errors.Is(err, apperrors.ErrFileNotFound) {
			s.logger.Warn().Int64("submissionID", id).Str("path", sub.FilePath).Msg("Submission file missing on disk")
			return nil, nil, apperrors.NewCustomError(apperrors.ErrFileNotFound, "File not found on server")
		}
		return nil, nil, fmt.Errorf("failed to open submission file: %w", err)
	}

	switch {
	case v.IsAnonymous():
		s.activity.Log(ctx, nil, models.ActionPublicDownload, fmt.Sprintf("Public download of submission %d", id))
	case preview:
		s.activity.Log(ctx, &v.UserID, models.ActionPreview, fmt.Sprintf("Previewed submission %d", id))
	default:
		s.activity.Log(ctx, &v.UserID, models.ActionDownload, fmt.Sprintf("Downloaded submission %d", id))
	}
	return sub, f, nil
}

// Comments lists the reviewer comments on a submission
func (s *SubmissionService) Comments(ctx context.Context, v auth.Viewer, id int64) ([]*models.Comment, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireReview(v, sub); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListBySubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// AddComment stores a reviewer comment and notifies the owner
func (s *SubmissionService) AddComment(ctx context.Context, v auth.Viewer, id int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment_text", "Comment text is required")
	}

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireReview(v, sub); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, v.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comment author: %w", err)
	}

	comment := &models.Comment{
		SubmissionID: id,
		UserID:       v.UserID,
		Text:         text,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		Role:         author.Role,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.activity.Log(ctx, &v.UserID, models.ActionComment, fmt.Sprintf("Commented on submission %d", id))
	if s.notifier != nil {
		s.notifier.CommentAdded(ctx, sub, author.FullName(), text)
	}
	return comment, nil
}

// UpdateStatus changes the review status. Coordinators cannot change anything
// after the final edit deadline.
func (s *SubmissionService) UpdateStatus(ctx context.Context, v auth.Viewer, id int64, rawStatus string) (*models.Submission, error) {
	status, ok := models.ParseSubmissionStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("status", "Status must be one of Selected, Rejected, Submitted")
	}

	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireReview(v, sub); err != nil {
		return nil, err
	}

	now := s.now()
	if v.Role == models.RoleCoordinator {
		settings, err := s.calendar.AcademicSettings(ctx)
		if err != nil {
			return nil, err
		}
		if now.After(helpers.EndOfDay(settings.FinalEditDeadline)) {
			return nil, apperrors.NewCustomError(apperrors.ErrDeadlinePassed,
				fmt.Sprintf("The final edit deadline (%s) has passed", settings.FinalEditDeadline.Format(helpers.DateLayout)))
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, status, now); err != nil {
		if errors.Is(err, apperrors.ErrSubmissionNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrSubmissionNotFound, "Submission not found")
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	previous := sub.Status
	sub.Status = status
	sub.Selected = status == models.StatusSelected
	sub.LastUpdated = &now

	s.activity.Log(ctx, &v.UserID, models.ActionStatusUpdate,
		fmt.Sprintf("Changed status of submission %d from %s to %s", id, previous, status))
	if s.notifier != nil && status == models.StatusSelected && previous != models.StatusSelected {
		s.notifier.SubmissionSelected(ctx, sub)
	}
	return sub, nil
}

func (s *SubmissionService) load(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrSubmissionNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrSubmissionNotFound, "Submission not found")
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return sub, nil
}
