package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/cache"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/validation"
)

// CacheKeyAcademicSettings is where the public academic calendar is cached
const CacheKeyAcademicSettings = "settings:academic"

// SettingsService manages the academic calendar and per-user preference documents
type SettingsService struct {
	repo     SettingsStore
	cache    cache.Cache
	ttl      time.Duration
	activity ActivityLogger
	logger   zerolog.Logger
}

// NewSettingsService creates a new SettingsService. A nil cache disables caching.
func NewSettingsService(repo SettingsStore, c cache.Cache, ttl time.Duration, activity ActivityLogger, logger zerolog.Logger) *SettingsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &SettingsService{
		repo:     repo,
		cache:    c,
		ttl:      ttl,
		activity: activity,
		logger:   logger,
	}
}

// AcademicSettings returns the stored calendar, or the built-in defaults when none is stored
func (s *SettingsService) AcademicSettings(ctx context.Context) (models.AcademicSettings, error) {
	return cache.Remember(ctx, s.cache, s.logger, CacheKeyAcademicSettings, s.ttl, s.loadAcademic)
}

func (s *SettingsService) loadAcademic(ctx context.Context) (models.AcademicSettings, error) {
	settings, err := s.repo.GetAcademic(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Debug().Msg("No academic settings stored, using defaults")
			return models.DefaultAcademicSettings(), nil
		}
		return models.AcademicSettings{}, fmt.Errorf("failed to load academic settings: %w", err)
	}
	return *settings, nil
}

// UpdateAcademicSettings validates and stores the academic calendar
func (s *SettingsService) UpdateAcademicSettings(ctx context.Context, actorID int64, req *dto.AcademicSettingsRequest) (models.AcademicSettings, error) {
	year := strings.TrimSpace(req.AcademicYear)
	if err := validation.ValidateAcademicYear(year); err != nil {
		return models.AcademicSettings{}, err
	}

	settings := models.AcademicSettings{AcademicYear: year}
	dates := []struct {
		field string
		value string
		dst   *time.Time
	}{
		{"submission_deadline", req.SubmissionDeadline, &settings.SubmissionDeadline},
		{"final_edit_deadline", req.FinalEditDeadline, &settings.FinalEditDeadline},
		{"publication_date", req.PublicationDate, &settings.PublicationDate},
	}
	for _, d := range dates {
		parsed, err := helpers.ParseDate(strings.TrimSpace(d.value))
		if err != nil {
			return models.AcademicSettings{}, apperrors.NewValidationError(d.field, err.Error())
		}
		*d.dst = parsed
	}

	if settings.FinalEditDeadline.Before(settings.SubmissionDeadline) {
		return models.AcademicSettings{}, apperrors.NewValidationError("final_edit_deadline",
			"Final edit deadline cannot be before the submission deadline")
	}

	if err := s.repo.UpsertAcademic(ctx, settings); err != nil {
		return models.AcademicSettings{}, fmt.Errorf("failed to save academic settings: %w", err)
	}
	if err := s.cache.Delete(ctx, CacheKeyAcademicSettings); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate academic settings cache")
	}

	s.activity.Log(ctx, &actorID, models.ActionSettingsUpdate,
		fmt.Sprintf("Updated academic settings for %s", settings.AcademicYear))
	return settings, nil
}

// UserSettings returns the user's document of the given kind merged over the defaults
func (s *SettingsService) UserSettings(ctx context.Context, userID int64, kind models.SettingsKind) (models.SettingsDocument, error) {
	stored, err := s.repo.GetUserSettings(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s settings: %w", kind, err)
	}
	return mergeSettings(models.DefaultSettings(kind), stored), nil
}

// UpdateUserSettings validates the update against the known keys, merges it
// into the stored document and returns the effective settings.
func (s *SettingsService) UpdateUserSettings(ctx context.Context, userID int64, kind models.SettingsKind, update models.SettingsDocument) (models.SettingsDocument, error) {
	defaults := models.DefaultSettings(kind)
	if err := validateSettings(defaults, update); err != nil {
		return nil, err
	}

	stored, err := s.repo.GetUserSettings(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s settings: %w", kind, err)
	}
	doc := mergeSettings(models.SettingsDocument{}, stored)
	doc = mergeSettings(doc, update)

	if err := s.repo.UpsertUserSettings(ctx, userID, kind, doc); err != nil {
		return nil, fmt.Errorf("failed to save %s settings: %w", kind, err)
	}

	s.activity.Log(ctx, &userID, models.ActionSettingsUpdate, fmt.Sprintf("Updated %s settings", kind))
	return mergeSettings(defaults, doc), nil
}

// NotificationsEnabled reports whether the user wants mail for the given flag.
// Both the global email switch and the specific flag must be on.
func (s *SettingsService) NotificationsEnabled(ctx context.Context, userID int64, flag string) bool {
	doc, err := s.UserSettings(ctx, userID, models.SettingsNotifications)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Falling back to default notification settings")
		doc = models.DefaultSettings(models.SettingsNotifications)
	}
	return doc.Bool("email_notifications", true) && doc.Bool(flag, true)
}

func mergeSettings(base, overlay models.SettingsDocument) models.SettingsDocument {
	out := make(models.SettingsDocument, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// validateSettings accepts only keys present in defaults, with the same JSON type
func validateSettings(defaults, update models.SettingsDocument) error {
	if len(update) == 0 {
		return apperrors.NewBadRequestError("No settings provided")
	}

	keys := make([]string, 0, len(update))
	for k := range update {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		def, ok := defaults[k]
		if !ok {
			return apperrors.NewValidationError(k, fmt.Sprintf("Unknown setting %q", k))
		}
		switch def.(type) {
		case bool:
			if _, ok := update[k].(bool); !ok {
				return apperrors.NewValidationError(k, fmt.Sprintf("Setting %q must be a boolean", k))
			}
		case string:
			if _, ok := update[k].(string); !ok {
				return apperrors.NewValidationError(k, fmt.Sprintf("Setting %q must be a string", k))
			}
		}
	}
	return nil
}
