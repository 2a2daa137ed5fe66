package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// SubmissionRepository handles submission database operations
type SubmissionRepository struct {
	db db.Querier
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(q db.Querier) *SubmissionRepository {
	return &SubmissionRepository{db: q}
}

// selectSubmissionQuery joins the author, the faculty and the comment count.
func selectSubmissionQuery() squirrel.SelectBuilder {
	return psql.Select(
		"s.submission_id", "s.user_id", "s.faculty_id", "s.title", "s.description",
		"s.academic_year", "s.file_path", "s.file_type", "s.status", "s.selected",
		"s.terms_accepted", "s.submitted_at", "s.last_updated",
		"u.first_name", "u.last_name", "u.email", "COALESCE(f.faculty_name, '')",
		"(SELECT COUNT(*) FROM comments c WHERE c.submission_id = s.submission_id) AS comment_count",
	).
		From("submissions s").
		Join("users u ON s.user_id = u.user_id").
		LeftJoin("faculties f ON s.faculty_id = f.faculty_id")
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	s := &models.Submission{}
	var status string
	err := row.Scan(
		&s.ID, &s.UserID, &s.FacultyID, &s.Title, &s.Description,
		&s.AcademicYear, &s.FilePath, &s.FileType, &status, &s.Selected,
		&s.TermsAccepted, &s.SubmittedAt, &s.LastUpdated,
		&s.AuthorFirstName, &s.AuthorLastName, &s.AuthorEmail, &s.FacultyName,
		&s.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	s.Status = models.SubmissionStatus(status)
	return s, nil
}

func applySubmissionFilter(b squirrel.SelectBuilder, filter models.SubmissionFilter) squirrel.SelectBuilder {
	if filter.UserID != nil {
		b = b.Where(squirrel.Eq{"s.user_id": *filter.UserID})
	}
	if filter.FacultyID != nil {
		b = b.Where(squirrel.Eq{"s.faculty_id": *filter.FacultyID})
	}
	if filter.Status != nil {
		b = b.Where(squirrel.Eq{"s.status": string(*filter.Status)})
	}
	if filter.SelectedOnly {
		b = b.Where(squirrel.Eq{"s.status": string(models.StatusSelected)})
	}
	if filter.AcademicYear != "" {
		b = b.Where(squirrel.Eq{"s.academic_year": filter.AcademicYear})
	}
	if filter.Search != "" {
		pattern := helpers.LikePattern(filter.Search)
		b = b.Where(squirrel.Or{
			squirrel.ILike{"s.title": pattern},
			squirrel.ILike{"s.description": pattern},
		})
	}
	if len(filter.IDs) > 0 {
		b = b.Where(squirrel.Eq{"s.submission_id": filter.IDs})
	}
	return b
}

// Create inserts a submission and fills in its ID and submission time
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	sql, args, err := psql.Insert("submissions").
		Columns("user_id", "faculty_id", "title", "description", "academic_year",
			"file_path", "file_type", "status", "selected", "terms_accepted", "submitted_at").
		Values(s.UserID, s.FacultyID, s.Title, s.Description, s.AcademicYear,
			s.FilePath, s.FileType, string(s.Status), s.Selected, s.TermsAccepted, sqlNow).
		Suffix("RETURNING submission_id, submitted_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create submission SQL")
		return fmt.Errorf("failed to build create submission query: %w", err)
	}

	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&s.ID, &s.SubmittedAt); err != nil {
		logger.Error().Err(err).Int64("userID", s.UserID).Msg("Error executing create submission query")
		return fmt.Errorf("error creating submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission with its joined columns
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	sql, args, err := selectSubmissionQuery().Where(squirrel.Eq{"s.submission_id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get submission by ID SQL")
		return nil, fmt.Errorf("failed to build submission query: %w", err)
	}

	s, err := scanSubmission(conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		logger.Error().Err(err).Int64("submissionID", id).Msg("Error executing get submission query")
		return nil, fmt.Errorf("error retrieving submission: %w", err)
	}
	return s, nil
}

// List retrieves a page of submissions matching the filter, newest first.
// A filter Size of zero returns every matching row.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, dto.PaginationInfo, error) {
	countBuilder := applySubmissionFilter(psql.Select("COUNT(*)").From("submissions s"), filter)
	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count submissions SQL")
		return nil, dto.PaginationInfo{}, err
	}

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count submissions query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting submissions: %w", err)
	}

	pageSize := filter.Size
	if pageSize == 0 {
		pageSize = int(total)
	}
	pagination := helpers.NewPaginationInfo(total, filter.Page, pageSize)
	if total == 0 {
		return []*models.Submission{}, pagination, nil
	}

	builder := applySubmissionFilter(selectSubmissionQuery(), filter).
		OrderBy("s.submitted_at DESC", "s.submission_id DESC")
	if filter.Size > 0 {
		offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
		builder = builder.Limit(limit).Offset(offset)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list submissions SQL")
		return nil, dto.PaginationInfo{}, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list submissions query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error listing submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning submission row")
			return nil, dto.PaginationInfo{}, fmt.Errorf("error scanning submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error after iterating through submission rows")
		return nil, dto.PaginationInfo{}, fmt.Errorf("database iteration error: %w", err)
	}
	return submissions, pagination, nil
}

// UpdateStatus sets the review status and keeps the selected flag in sync
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status models.SubmissionStatus, at time.Time) error {
	sql, args, err := psql.Update("submissions").
		Set("status", string(status)).
		Set("selected", status == models.StatusSelected).
		Set("last_updated", at).
		Where(squirrel.Eq{"submission_id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update submission status SQL")
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("submissionID", id).Msg("Error executing update submission status query")
		return fmt.Errorf("error updating submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubmissionNotFound
	}
	return nil
}
