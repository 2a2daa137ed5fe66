package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// ActivityRepository stores the audit trail in activitylogs
type ActivityRepository struct {
	db db.Querier
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(q db.Querier) *ActivityRepository {
	return &ActivityRepository{db: q}
}

// Create inserts a log entry and fills in its ID and timestamp
func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	sql, args, err := psql.Insert("activitylogs").
		Columns("user_id", "action_type", "action_details", "log_timestamp").
		Values(entry.UserID, entry.Action, entry.Details, sqlNow).
		Suffix("RETURNING log_id, log_timestamp").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build activity log query: %w", err)
	}

	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.Timestamp); err != nil {
		return fmt.Errorf("error writing activity log: %w", err)
	}
	return nil
}

// Recent returns the newest entries with the acting user's name
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	sql, args, err := psql.Select(
		"l.log_id", "l.user_id", "l.action_type", "COALESCE(l.action_details, '')", "l.log_timestamp",
		"u.first_name", "u.last_name",
	).
		From("activitylogs l").
		LeftJoin("users u ON l.user_id = u.user_id").
		OrderBy("l.log_timestamp DESC", "l.log_id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building recent activity SQL")
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing recent activity query")
		return nil, fmt.Errorf("error retrieving recent activity: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.ActivityLog, 0, limit)
	for rows.Next() {
		l := &models.ActivityLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Details, &l.Timestamp, &l.FirstName, &l.LastName); err != nil {
			return nil, fmt.Errorf("error scanning activity log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
