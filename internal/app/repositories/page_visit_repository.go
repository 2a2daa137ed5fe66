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

// PageVisitRepository records and aggregates browser page views
type PageVisitRepository struct {
	db db.Querier
}

// NewPageVisitRepository creates a new PageVisitRepository
func NewPageVisitRepository(q db.Querier) *PageVisitRepository {
	return &PageVisitRepository{db: q}
}

// Create records a single page view
func (r *PageVisitRepository) Create(ctx context.Context, v *models.PageVisit) error {
	sql, args, err := psql.Insert("page_visits").
		Columns("user_id", "page_url", "visit_timestamp", "browser_info", "ip_address").
		Values(v.UserID, v.PageURL, sqlNow, v.BrowserInfo, v.IPAddress).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build page visit query: %w", err)
	}

	if _, err := conn(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error recording page visit: %w", err)
	}
	return nil
}

// TopPages ranks page URLs by number of visits since the given time (nil for all time)
func (r *PageVisitRepository) TopPages(ctx context.Context, since *time.Time, limit int) ([]models.PageViewStat, error) {
	builder := psql.Select("page_url", "COUNT(*) AS view_count").
		From("page_visits").
		GroupBy("page_url").
		OrderBy("view_count DESC", "page_url").
		Limit(uint64(limit))
	if since != nil {
		builder = builder.Where(squirrel.GtOrEq{"visit_timestamp": *since})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building top pages SQL")
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing top pages query")
		return nil, fmt.Errorf("error retrieving page visits: %w", err)
	}
	defer rows.Close()

	stats := make([]models.PageViewStat, 0, limit)
	for rows.Next() {
		var s models.PageViewStat
		if err := rows.Scan(&s.PageURL, &s.ViewCount); err != nil {
			return nil, fmt.Errorf("error scanning page visit stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// BrowserUsage returns the distinct (user agent, user) pairs seen in page visits
func (r *PageVisitRepository) BrowserUsage(ctx context.Context) ([]models.BrowserUsage, error) {
	sql, args, err := psql.Select("browser_info", "user_id").
		Distinct().
		From("page_visits").
		Where(squirrel.NotEq{"browser_info": nil}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building browser usage SQL")
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing browser usage query")
		return nil, fmt.Errorf("error retrieving browser usage: %w", err)
	}
	defer rows.Close()

	usage := make([]models.BrowserUsage, 0)
	for rows.Next() {
		var u models.BrowserUsage
		if err := rows.Scan(&u.BrowserInfo, &u.UserID); err != nil {
			return nil, fmt.Errorf("error scanning browser usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
