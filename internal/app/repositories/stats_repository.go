package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// Trend granularities accepted by StatsRepository.Trend
const (
	TrendMonth = "month"
	TrendYear  = "year"
)

// StatsRepository runs the aggregate queries behind dashboards and reports
type StatsRepository struct {
	db db.Querier
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(q db.Querier) *StatsRepository {
	return &StatsRepository{db: q}
}

// SubmissionCounts counts submissions by status, optionally within one faculty
func (r *StatsRepository) SubmissionCounts(ctx context.Context, facultyID *int64) (models.SubmissionCounts, error) {
	builder := psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status = 'Submitted')",
		"COUNT(*) FILTER (WHERE status = 'Selected')",
		"COUNT(*) FILTER (WHERE status = 'Rejected')",
		"COUNT(DISTINCT user_id)",
	).From("submissions")
	if facultyID != nil {
		builder = builder.Where(squirrel.Eq{"faculty_id": *facultyID})
	}

	var c models.SubmissionCounts
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building submission counts SQL")
		return c, err
	}
	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&c.Total, &c.Submitted, &c.Selected, &c.Rejected, &c.Contributors); err != nil {
		logger.Error().Err(err).Msg("Error executing submission counts query")
		return c, fmt.Errorf("error counting submissions: %w", err)
	}
	return c, nil
}

// CountUsers returns the number of registered users
func (r *StatsRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		logger.Error().Err(err).Msg("Error executing count users query")
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}

// FacultyStats returns per-faculty submission, selection and contributor counts.
// Faculties without submissions are included with zeros.
func (r *StatsRepository) FacultyStats(ctx context.Context) ([]models.FacultyStat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT f.faculty_id, f.faculty_name,
			COUNT(s.submission_id),
			COUNT(s.submission_id) FILTER (WHERE s.status = 'Selected'),
			COUNT(DISTINCT s.user_id)
		FROM faculties f
		LEFT JOIN submissions s ON s.faculty_id = f.faculty_id
		GROUP BY f.faculty_id, f.faculty_name
		ORDER BY f.faculty_name`)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing faculty stats query")
		return nil, fmt.Errorf("error retrieving faculty stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.FacultyStat, 0)
	for rows.Next() {
		var s models.FacultyStat
		if err := rows.Scan(&s.FacultyID, &s.FacultyName, &s.SubmissionCount, &s.SelectedCount, &s.ContributorCount); err != nil {
			return nil, fmt.Errorf("error scanning faculty stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// TopContributors ranks users by number of submissions
func (r *StatsRepository) TopContributors(ctx context.Context, limit int) ([]models.ContributorStat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT u.user_id, u.first_name, u.last_name, u.email, COALESCE(f.faculty_name, ''),
			COUNT(s.submission_id),
			COUNT(s.submission_id) FILTER (WHERE s.status = 'Selected')
		FROM users u
		JOIN submissions s ON s.user_id = u.user_id
		LEFT JOIN faculties f ON u.faculty_id = f.faculty_id
		GROUP BY u.user_id, u.first_name, u.last_name, u.email, f.faculty_name
		ORDER BY COUNT(s.submission_id) DESC, u.last_name
		LIMIT $1`, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing top contributors query")
		return nil, fmt.Errorf("error retrieving contributors: %w", err)
	}
	defer rows.Close()

	stats := make([]models.ContributorStat, 0, limit)
	for rows.Next() {
		var s models.ContributorStat
		if err := rows.Scan(&s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.FacultyName, &s.SubmissionCount, &s.SelectedCount); err != nil {
			return nil, fmt.Errorf("error scanning contributor stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Trend groups submissions made since the given time by month or year.
// Only periods that have submissions are returned.
func (r *StatsRepository) Trend(ctx context.Context, unit string, since time.Time) ([]models.TrendBucket, error) {
	if unit != TrendMonth && unit != TrendYear {
		return nil, fmt.Errorf("unsupported trend unit %q", unit)
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT date_trunc($1, submitted_at) AS period,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Selected')
		FROM submissions
		WHERE submitted_at >= $2
		GROUP BY period
		ORDER BY period`, unit, since)
	if err != nil {
		logger.Error().Err(err).Str("unit", unit).Msg("Error executing trend query")
		return nil, fmt.Errorf("error retrieving submission trend: %w", err)
	}
	defer rows.Close()

	buckets := make([]models.TrendBucket, 0)
	for rows.Next() {
		var b models.TrendBucket
		if err := rows.Scan(&b.Start, &b.SubmissionCount, &b.SelectedCount); err != nil {
			return nil, fmt.Errorf("error scanning trend bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// DocumentTypeCounts counts selected submissions per file type, most common first
func (r *StatsRepository) DocumentTypeCounts(ctx context.Context) ([]models.DocumentTypeStat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT file_type, COUNT(*)
		FROM submissions
		WHERE status = 'Selected'
		GROUP BY file_type
		ORDER BY COUNT(*) DESC, file_type`)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing document types query")
		return nil, fmt.Errorf("error retrieving document types: %w", err)
	}
	defer rows.Close()

	stats := make([]models.DocumentTypeStat, 0)
	for rows.Next() {
		var s models.DocumentTypeStat
		if err := rows.Scan(&s.Type, &s.Count); err != nil {
			return nil, fmt.Errorf("error scanning document type stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// StudentsByFaculty counts students per faculty and how many of them submitted
func (r *StatsRepository) StudentsByFaculty(ctx context.Context) ([]models.FacultyStudentStat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT f.faculty_id, f.faculty_name,
			COUNT(u.user_id),
			COUNT(u.user_id) FILTER (WHERE EXISTS (
				SELECT 1 FROM submissions s WHERE s.user_id = u.user_id
			))
		FROM faculties f
		LEFT JOIN users u ON u.faculty_id = f.faculty_id AND u.role_id = $1
		GROUP BY f.faculty_id, f.faculty_name
		ORDER BY f.faculty_name`, int(models.RoleStudent))
	if err != nil {
		logger.Error().Err(err).Msg("Error executing students by faculty query")
		return nil, fmt.Errorf("error retrieving students by faculty: %w", err)
	}
	defer rows.Close()

	stats := make([]models.FacultyStudentStat, 0)
	for rows.Next() {
		var s models.FacultyStudentStat
		if err := rows.Scan(&s.FacultyID, &s.FacultyName, &s.StudentCount, &s.ContributorCount); err != nil {
			return nil, fmt.Errorf("error scanning faculty student stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// UserActivity summarizes logins, submissions and comments per user, most recently active first
func (r *StatsRepository) UserActivity(ctx context.Context, limit int) ([]models.UserActivityStat, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT u.user_id, u.first_name, u.last_name, u.email, u.role_id,
			(SELECT COUNT(*) FROM activitylogs l WHERE l.user_id = u.user_id AND l.action_type = $1),
			(SELECT COUNT(*) FROM submissions s WHERE s.user_id = u.user_id),
			(SELECT COUNT(*) FROM comments c WHERE c.user_id = u.user_id),
			(SELECT MAX(l.log_timestamp) FROM activitylogs l WHERE l.user_id = u.user_id) AS last_activity
		FROM users u
		ORDER BY last_activity DESC NULLS LAST, u.user_id
		LIMIT $2`, models.ActionLogin, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing user activity query")
		return nil, fmt.Errorf("error retrieving user activity: %w", err)
	}
	defer rows.Close()

	stats := make([]models.UserActivityStat, 0, limit)
	for rows.Next() {
		var s models.UserActivityStat
		var roleID int
		if err := rows.Scan(&s.UserID, &s.FirstName, &s.LastName, &s.Email, &roleID,
			&s.LoginCount, &s.SubmissionCount, &s.CommentCount, &s.LastActivity); err != nil {
			return nil, fmt.Errorf("error scanning user activity: %w", err)
		}
		s.Role = models.Role(roleID)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
