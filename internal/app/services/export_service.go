package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/archive"
	"github.com/yigit/unimag/internal/pkg/filestorage"
)

// UserSettingsReader reads a user's effective settings document
type UserSettingsReader interface {
	UserSettings(ctx context.Context, userID int64, kind models.SettingsKind) (models.SettingsDocument, error)
}

// ZipExport is a prepared bundle of selected submissions, ready to stream
type ZipExport struct {
	Filename string
	Entries  []archive.Entry
	Options  archive.Options
}

// ExportService bundles selected submissions into ZIP archives
type ExportService struct {
	submissions SubmissionStore
	storage     filestorage.FileStorage
	settings    UserSettingsReader
	activity    ActivityLogger
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(
	submissions SubmissionStore,
	storage filestorage.FileStorage,
	settings UserSettingsReader,
	activity ActivityLogger,
	logger zerolog.Logger,
) *ExportService {
	return &ExportService{
		submissions: submissions,
		storage:     storage,
		settings:    settings,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

// Prepare loads the selected submissions to export, optionally limited to ids.
// It fails with ErrNothingToExport before anything is written.
func (s *ExportService) Prepare(ctx context.Context, userID int64, ids []int64) (*ZipExport, error) {
	subs, _, err := s.submissions.List(ctx, models.SubmissionFilter{SelectedOnly: true, IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load selected submissions: %w", err)
	}
	if len(subs) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrNothingToExport, "No selected submissions found")
	}

	includeMetadata := true
	if s.settings != nil {
		doc, err := s.settings.UserSettings(ctx, userID, models.SettingsExport)
		if err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Using default export settings")
		} else {
			includeMetadata = doc.Bool("include_metadata", true)
		}
	}

	now := s.now()
	entries := make([]archive.Entry, 0, len(subs))
	for _, sub := range subs {
		entries = append(entries, archive.Entry{
			ID:          sub.ID,
			Title:       sub.Title,
			AuthorFirst: sub.AuthorFirstName,
			AuthorLast:  sub.AuthorLastName,
			Faculty:     sub.FacultyName,
			FileType:    sub.FileType,
			FilePath:    sub.FilePath,
		})
	}

	return &ZipExport{
		Filename: fmt.Sprintf("selected-submissions-%d.zip", now.UnixMilli()),
		Entries:  entries,
		Options: archive.Options{
			IncludeMetadata: includeMetadata,
			GeneratedAt:     now,
		},
	}, nil
}

// Write streams a prepared export to w and records the download
func (s *ExportService) Write(ctx context.Context, userID int64, w io.Writer, export *ZipExport) (archive.Result, error) {
	open := func(path string) (io.ReadCloser, error) {
		return s.storage.Open(path)
	}

	res, err := archive.Write(w, export.Entries, open, export.Options, s.logger)
	if err != nil {
		return res, fmt.Errorf("failed to write zip archive: %w", err)
	}

	s.logger.Info().Int("total", res.Total).Int("added", res.Added).Int("failed", res.Failed).Msg("ZIP export written")
	s.activity.Log(ctx, &userID, models.ActionZipDownload,
		fmt.Sprintf("Downloaded ZIP of %d selected submissions (%d files failed)", res.Total, res.Failed))
	return res, nil
}
