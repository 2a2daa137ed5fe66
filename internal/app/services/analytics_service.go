package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

// Date ranges accepted by PageVisits
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

const topPagesLimit = 10

var browserVersion = map[string]*regexp.Regexp{
	"Chrome":  regexp.MustCompile(`Chrome/([0-9]+)`),
	"Firefox": regexp.MustCompile(`Firefox/([0-9]+)`),
	"Safari":  regexp.MustCompile(`Safari/([0-9]+)`),
	"Edge":    regexp.MustCompile(`Edg/([0-9]+)`),
}

// AnalyticsService records page visits and reports on them
type AnalyticsService struct {
	repo   PageVisitStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo PageVisitStore, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// RecordVisit stores one page visit
func (s *AnalyticsService) RecordVisit(ctx context.Context, visit *models.PageVisit) error {
	if err := s.repo.Create(ctx, visit); err != nil {
		return fmt.Errorf("failed to record page visit: %w", err)
	}
	return nil
}

// PageVisits returns the most viewed pages within the last week, month or year
func (s *AnalyticsService) PageVisits(ctx context.Context, dateRange string) ([]models.PageViewStat, error) {
	var days int
	switch strings.ToLower(strings.TrimSpace(dateRange)) {
	case RangeWeek, "":
		days = 7
	case RangeMonth:
		days = 30
	case RangeYear:
		days = 365
	default:
		return nil, apperrors.NewValidationError("dateRange", "Date range must be week, month or year")
	}

	since := s.now().AddDate(0, 0, -days)
	stats, err := s.repo.TopPages(ctx, &since, topPagesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load page visits: %w", err)
	}
	return stats, nil
}

// BrowserStats counts distinct signed-in users per browser family and major version
func (s *AnalyticsService) BrowserStats(ctx context.Context) ([]models.BrowserStat, error) {
	usage, err := s.repo.BrowserUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load browser usage: %w", err)
	}

	type key struct{ browser, version string }
	users := make(map[key]map[int64]struct{})
	for _, u := range usage {
		browser, version := ClassifyBrowser(u.BrowserInfo)
		k := key{browser, version}
		if users[k] == nil {
			users[k] = make(map[int64]struct{})
		}
		if u.UserID != nil {
			users[k][*u.UserID] = struct{}{}
		}
	}

	stats := make([]models.BrowserStat, 0, len(users))
	for k, ids := range users {
		stats = append(stats, models.BrowserStat{Browser: k.browser, Version: k.version, UserCount: int64(len(ids))})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].UserCount != stats[j].UserCount {
			return stats[i].UserCount > stats[j].UserCount
		}
		if stats[i].Browser != stats[j].Browser {
			return stats[i].Browser < stats[j].Browser
		}
		return stats[i].Version < stats[j].Version
	})
	return stats, nil
}

// ClassifyBrowser maps a user agent to a browser family and its major version.
// Edge reports itself as Chrome too, and Chrome as Safari, so the order matters.
func ClassifyBrowser(userAgent string) (browser, version string) {
	switch {
	case strings.Contains(userAgent, "Chrome") && !strings.Contains(userAgent, "Edg"):
		browser = "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		browser = "Firefox"
	case strings.Contains(userAgent, "Safari") && !strings.Contains(userAgent, "Chrome"):
		browser = "Safari"
	case strings.Contains(userAgent, "Edg"):
		browser = "Edge"
	default:
		return "Other", ""
	}

	if m := browserVersion[browser].FindStringSubmatch(userAgent); len(m) == 2 {
		version = m[1]
	}
	return browser, version
}
