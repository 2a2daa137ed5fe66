package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// SettingsRepository stores the academic calendar and per-user settings documents
type SettingsRepository struct {
	db db.Querier
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(q db.Querier) *SettingsRepository {
	return &SettingsRepository{db: q}
}

// GetAcademic returns the academic settings row or ErrResourceNotFound when none exists
func (r *SettingsRepository) GetAcademic(ctx context.Context) (*models.AcademicSettings, error) {
	sql, args, err := psql.Select("academic_year", "submission_deadline", "final_edit_deadline", "publication_date").
		From("academic_settings").
		OrderBy("setting_id").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get academic settings SQL")
		return nil, err
	}

	s := &models.AcademicSettings{}
	err = conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&s.AcademicYear, &s.SubmissionDeadline, &s.FinalEditDeadline, &s.PublicationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Msg("Error executing get academic settings query")
		return nil, fmt.Errorf("error retrieving academic settings: %w", err)
	}
	return s, nil
}

// UpsertAcademic updates the single academic settings row, creating it if missing
func (r *SettingsRepository) UpsertAcademic(ctx context.Context, s models.AcademicSettings) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		WITH upd AS (
			UPDATE academic_settings
			SET academic_year = $1, submission_deadline = $2, final_edit_deadline = $3,
				publication_date = $4, updated_at = NOW()
			WHERE setting_id = (SELECT setting_id FROM academic_settings ORDER BY setting_id LIMIT 1)
			RETURNING setting_id
		)
		INSERT INTO academic_settings (academic_year, submission_deadline, final_edit_deadline, publication_date)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM upd)`,
		s.AcademicYear, s.SubmissionDeadline, s.FinalEditDeadline, s.PublicationDate)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing upsert academic settings query")
		return fmt.Errorf("error saving academic settings: %w", err)
	}
	return nil
}

// EnsureAcademic inserts the given settings only when the table is empty
func (r *SettingsRepository) EnsureAcademic(ctx context.Context, s models.AcademicSettings) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO academic_settings (academic_year, submission_deadline, final_edit_deadline, publication_date)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM academic_settings)`,
		s.AcademicYear, s.SubmissionDeadline, s.FinalEditDeadline, s.PublicationDate)
	if err != nil {
		return fmt.Errorf("error seeding academic settings: %w", err)
	}
	return nil
}

// GetUserSettings returns the stored document of a kind, or nil when the user has none
func (r *SettingsRepository) GetUserSettings(ctx context.Context, userID int64, kind models.SettingsKind) (models.SettingsDocument, error) {
	sql, args, err := psql.Select(kind.Column()).
		From("user_settings").
		Where("user_id = ?", userID).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user settings SQL")
		return nil, err
	}

	var raw []byte
	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing get user settings query")
		return nil, fmt.Errorf("error retrieving %s settings: %w", kind, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var doc models.SettingsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("stored %s settings are not valid JSON: %w", kind, err)
	}
	return doc, nil
}

// UpsertUserSettings replaces a user's settings document of a kind
func (r *SettingsRepository) UpsertUserSettings(ctx context.Context, userID int64, kind models.SettingsKind, doc models.SettingsDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s settings: %w", kind, err)
	}

	column := kind.Column()
	sql, args, err := psql.Insert("user_settings").
		Columns("user_id", column, "updated_at").
		Values(userID, string(raw), sqlNow).
		Suffix(fmt.Sprintf("ON CONFLICT (user_id) DO UPDATE SET %s = EXCLUDED.%s, updated_at = NOW()", column, column)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert user settings SQL")
		return err
	}

	if _, err := conn(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Str("kind", string(kind)).Msg("Error executing upsert user settings query")
		return fmt.Errorf("error saving %s settings: %w", kind, err)
	}
	return nil
}
