package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// CommentRepository handles reviewer comments
type CommentRepository struct {
	db db.Querier
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(q db.Querier) *CommentRepository {
	return &CommentRepository{db: q}
}

// Create inserts an unread comment and fills in its ID and timestamp
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	sql, args, err := psql.Insert("comments").
		Columns("submission_id", "user_id", "comment_text", "commented_at", "is_read").
		Values(c.SubmissionID, c.UserID, c.Text, sqlNow, false).
		Suffix("RETURNING comment_id, commented_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create comment SQL")
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CommentedAt); err != nil {
		logger.Error().Err(err).Int64("submissionID", c.SubmissionID).Msg("Error executing create comment query")
		return fmt.Errorf("error creating comment: %w", err)
	}
	c.IsRead = false
	return nil
}

// ListBySubmission returns the comments of a submission, oldest first, with author details
func (r *CommentRepository) ListBySubmission(ctx context.Context, submissionID int64) ([]*models.Comment, error) {
	sql, args, err := psql.Select(
		"c.comment_id", "c.submission_id", "c.user_id", "c.comment_text", "c.commented_at", "c.is_read",
		"u.first_name", "u.last_name", "u.role_id",
	).
		From("comments c").
		Join("users u ON c.user_id = u.user_id").
		Where(squirrel.Eq{"c.submission_id": submissionID}).
		OrderBy("c.commented_at ASC", "c.comment_id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list comments SQL")
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("submissionID", submissionID).Msg("Error executing list comments query")
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		c := &models.Comment{}
		var roleID int
		if err := rows.Scan(&c.ID, &c.SubmissionID, &c.UserID, &c.Text, &c.CommentedAt, &c.IsRead,
			&c.FirstName, &c.LastName, &roleID); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		c.Role = models.Role(roleID)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
