package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db db.Querier
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(q db.Querier) *FacultyRepository {
	return &FacultyRepository{db: q}
}

// GetAll retrieves all faculties ordered by name
func (r *FacultyRepository) GetAll(ctx context.Context) ([]*models.Faculty, error) {
	sql, args, err := psql.Select("faculty_id", "faculty_name", "description").
		From("faculties").
		OrderBy("faculty_name").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get all faculties SQL")
		return nil, fmt.Errorf("failed to build get all faculties query: %w", err)
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all faculties query")
		return nil, fmt.Errorf("error retrieving faculties: %w", err)
	}
	defer rows.Close()

	faculties := make([]*models.Faculty, 0)
	for rows.Next() {
		f := &models.Faculty{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Description); err != nil {
			logger.Error().Err(err).Msg("Error scanning faculty row")
			return nil, fmt.Errorf("error scanning faculty: %w", err)
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

// GetByID retrieves a faculty by ID
func (r *FacultyRepository) GetByID(ctx context.Context, id int64) (*models.Faculty, error) {
	sql, args, err := psql.Select("faculty_id", "faculty_name", "description").
		From("faculties").
		Where(squirrel.Eq{"faculty_id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get faculty SQL")
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}

	f := &models.Faculty{}
	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&f.ID, &f.Name, &f.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFacultyNotFound
		}
		logger.Error().Err(err).Int64("facultyID", id).Msg("Error executing get faculty query")
		return nil, fmt.Errorf("error retrieving faculty: %w", err)
	}
	return f, nil
}

// Ensure inserts the faculty unless one with the same name exists and returns its ID
func (r *FacultyRepository) Ensure(ctx context.Context, faculty *models.Faculty) (int64, error) {
	var id int64
	err := conn(ctx, r.db).QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO faculties (faculty_name, description)
			VALUES ($1, $2)
			ON CONFLICT (faculty_name) DO NOTHING
			RETURNING faculty_id
		)
		SELECT faculty_id FROM ins
		UNION ALL
		SELECT faculty_id FROM faculties WHERE faculty_name = $1
		LIMIT 1`,
		faculty.Name, faculty.Description).Scan(&id)
	if err != nil {
		logger.Error().Err(err).Str("faculty", faculty.Name).Msg("Error ensuring faculty")
		return 0, fmt.Errorf("error ensuring faculty %q: %w", faculty.Name, err)
	}
	faculty.ID = id
	return id, nil
}
