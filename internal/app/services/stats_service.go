package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/cache"
	"github.com/yigit/unimag/internal/pkg/helpers"
)

// Cache keys of the dashboard summaries
const (
	CacheKeyAdminDashboard   = "stats:dashboard:admin"
	CacheKeyManagerDashboard = "stats:dashboard:manager"
)

// Trend timespans
const (
	TimespanMonth = "month"
	TimespanYear  = "year"

	trendMonths = 12
	trendYears  = 5
)

// StatsService builds dashboards and publication statistics
type StatsService struct {
	repo      StatsStore
	faculties FacultyStore
	cache     cache.Cache
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStatsService creates a new StatsService. A nil cache disables caching.
func NewStatsService(repo StatsStore, faculties FacultyStore, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *StatsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &StatsService{
		repo:      repo,
		faculties: faculties,
		cache:     c,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// AdminDashboard returns the user and submission totals
func (s *StatsService) AdminDashboard(ctx context.Context) (dto.AdminDashboardStats, error) {
	return cache.Remember(ctx, s.cache, s.logger, CacheKeyAdminDashboard, s.ttl, func(ctx context.Context) (dto.AdminDashboardStats, error) {
		users, err := s.repo.CountUsers(ctx)
		if err != nil {
			return dto.AdminDashboardStats{}, fmt.Errorf("failed to count users: %w", err)
		}
		counts, err := s.repo.SubmissionCounts(ctx, nil)
		if err != nil {
			return dto.AdminDashboardStats{}, fmt.Errorf("failed to count submissions: %w", err)
		}
		return dto.AdminDashboardStats{
			TotalUsers:          users,
			TotalSubmissions:    counts.Total,
			PendingSubmissions:  counts.Submitted,
			SelectedSubmissions: counts.Selected,
		}, nil
	})
}

// ManagerDashboard returns the publication overview
func (s *StatsService) ManagerDashboard(ctx context.Context) (dto.ManagerDashboardStats, error) {
	return cache.Remember(ctx, s.cache, s.logger, CacheKeyManagerDashboard, s.ttl, s.managerOverview)
}

func (s *StatsService) managerOverview(ctx context.Context) (dto.ManagerDashboardStats, error) {
	counts, err := s.repo.SubmissionCounts(ctx, nil)
	if err != nil {
		return dto.ManagerDashboardStats{}, fmt.Errorf("failed to count submissions: %w", err)
	}
	return dto.ManagerDashboardStats{
		TotalSubmissions:    counts.Total,
		SelectedSubmissions: counts.Selected,
		PendingSelections:   counts.Submitted,
		TotalContributors:   counts.Contributors,
	}, nil
}

// CoordinatorDashboard summarizes the submissions of one faculty
func (s *StatsService) CoordinatorDashboard(ctx context.Context, facultyID int64) (dto.CoordinatorDashboardStats, error) {
	faculty, err := s.faculties.GetByID(ctx, facultyID)
	if err != nil {
		return dto.CoordinatorDashboardStats{}, fmt.Errorf("failed to load faculty: %w", err)
	}
	counts, err := s.repo.SubmissionCounts(ctx, &facultyID)
	if err != nil {
		return dto.CoordinatorDashboardStats{}, fmt.Errorf("failed to count submissions: %w", err)
	}
	return dto.CoordinatorDashboardStats{
		FacultyID:        faculty.ID,
		FacultyName:      faculty.Name,
		TotalSubmissions: counts.Total,
		PendingReview:    counts.Submitted,
		Selected:         counts.Selected,
		Rejected:         counts.Rejected,
		Contributors:     counts.Contributors,
	}, nil
}

// FacultyStats returns per-faculty counts
func (s *StatsService) FacultyStats(ctx context.Context) ([]models.FacultyStat, error) {
	stats, err := s.repo.FacultyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load faculty stats: %w", err)
	}
	return stats, nil
}

// TopContributors ranks users by submissions
func (s *StatsService) TopContributors(ctx context.Context, limit int) ([]models.ContributorStat, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > helpers.MaxPageSize {
		limit = helpers.MaxPageSize
	}
	stats, err := s.repo.TopContributors(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributors: %w", err)
	}
	return stats, nil
}

// Trends returns one point per period: the last 12 months for "month", the
// last 5 years for "year". Periods without submissions are zero.
func (s *StatsService) Trends(ctx context.Context, timespan string) ([]models.TrendPoint, error) {
	now := s.now().UTC()

	switch timespan {
	case TimespanYear:
		years := helpers.LastYears(now, trendYears)
		since := time.Date(years[0], time.January, 1, 0, 0, 0, 0, time.UTC)
		buckets, err := s.repo.Trend(ctx, TimespanYear, since)
		if err != nil {
			return nil, fmt.Errorf("failed to load yearly trend: %w", err)
		}
		byYear := make(map[int]models.TrendBucket, len(buckets))
		for _, b := range buckets {
			byYear[b.Start.UTC().Year()] = b
		}
		points := make([]models.TrendPoint, 0, len(years))
		for _, y := range years {
			b := byYear[y]
			points = append(points, models.TrendPoint{
				Period:          fmt.Sprintf("%d", y),
				SubmissionCount: b.SubmissionCount,
				SelectedCount:   b.SelectedCount,
			})
		}
		return points, nil

	case TimespanMonth, "":
		months := helpers.LastMonths(now, trendMonths)
		buckets, err := s.repo.Trend(ctx, TimespanMonth, months[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load monthly trend: %w", err)
		}
		byMonth := make(map[string]models.TrendBucket, len(buckets))
		for _, b := range buckets {
			byMonth[helpers.MonthLabel(b.Start.UTC())] = b
		}
		points := make([]models.TrendPoint, 0, len(months))
		for _, m := range months {
			label := helpers.MonthLabel(m)
			b := byMonth[label]
			points = append(points, models.TrendPoint{
				Period:          label,
				SubmissionCount: b.SubmissionCount,
				SelectedCount:   b.SelectedCount,
			})
		}
		return points, nil
	}

	return nil, apperrors.NewValidationError("timespan", "Timespan must be month or year")
}

// DocumentTypes returns selected submissions per file type with their share
func (s *StatsService) DocumentTypes(ctx context.Context) ([]models.DocumentTypeStat, error) {
	stats, err := s.repo.DocumentTypeCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document types: %w", err)
	}
	return withPercentages(stats), nil
}

// StudentsByFaculty counts students and contributors per faculty
func (s *StatsService) StudentsByFaculty(ctx context.Context) ([]models.FacultyStudentStat, error) {
	stats, err := s.repo.StudentsByFaculty(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load students by faculty: %w", err)
	}
	return stats, nil
}

// UserActivity summarizes per-user activity
func (s *StatsService) UserActivity(ctx context.Context, limit int) ([]models.UserActivityStat, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > helpers.MaxPageSize {
		limit = helpers.MaxPageSize
	}
	stats, err := s.repo.UserActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load user activity: %w", err)
	}
	return stats, nil
}

// Export assembles the publication statistics document
func (s *StatsService) Export(ctx context.Context) (*dto.PublicationExport, error) {
	overview, err := s.managerOverview(ctx)
	if err != nil {
		return nil, err
	}
	faculties, err := s.FacultyStats(ctx)
	if err != nil {
		return nil, err
	}
	contributors, err := s.TopContributors(ctx, 20)
	if err != nil {
		return nil, err
	}
	types, err := s.DocumentTypes(ctx)
	if err != nil {
		return nil, err
	}
	yearly, err := s.Trends(ctx, TimespanYear)
	if err != nil {
		return nil, err
	}
	monthly, err := s.Trends(ctx, TimespanMonth)
	if err != nil {
		return nil, err
	}

	return &dto.PublicationExport{
		GeneratedAt:      s.now().UTC(),
		Overview:         overview,
		FacultyStats:     faculties,
		ContributorStats: contributors,
		DocumentTypes:    types,
		Trends: dto.PublicationExportTrends{
			Yearly:  yearly,
			Monthly: monthly,
		},
	}, nil
}

// withPercentages fills in each share of the total, rounded to one decimal
func withPercentages(stats []models.DocumentTypeStat) []models.DocumentTypeStat {
	var total int64
	for _, st := range stats {
		total += st.Count
	}
	for i := range stats {
		if total == 0 {
			stats[i].Percentage = 0
			continue
		}
		stats[i].Percentage = math.Round(float64(stats[i].Count)*1000/float64(total)) / 10
	}
	return stats
}
