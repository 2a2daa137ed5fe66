package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

const (
	uaChrome  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	uaEdge    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51"
	uaFirefox = "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"
	uaSafari  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
)

type fakePageVisitStore struct {
	visits []*models.PageVisit
	usage  []models.BrowserUsage
	since  *time.Time
	limit  int
}

func (s *fakePageVisitStore) Create(_ context.Context, v *models.PageVisit) error {
	s.visits = append(s.visits, v)
	return nil
}

func (s *fakePageVisitStore) TopPages(_ context.Context, since *time.Time, limit int) ([]models.PageViewStat, error) {
	s.since, s.limit = since, limit
	return []models.PageViewStat{{PageURL: "/", ViewCount: 3}}, nil
}

func (s *fakePageVisitStore) BrowserUsage(context.Context) ([]models.BrowserUsage, error) {
	return s.usage, nil
}

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		ua          string
		wantBrowser string
		wantVersion string
	}{
		{uaChrome, "Chrome", "124"},
		{uaEdge, "Edge", "124"},
		{uaFirefox, "Firefox", "125"},
		{uaSafari, "Safari", "605"},
		{"curl/8.4.0", "Other", ""},
		{"", "Other", ""},
	}

	for _, tt := range tests {
		t.Run(tt.wantBrowser, func(t *testing.T) {
			browser, version := ClassifyBrowser(tt.ua)
			assert.Equal(t, tt.wantBrowser, browser)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestBrowserStatsCountsDistinctUsers(t *testing.T) {
	store := &fakePageVisitStore{usage: []models.BrowserUsage{
		{BrowserInfo: uaChrome, UserID: int64Ptr(1)},
		{BrowserInfo: uaChrome, UserID: int64Ptr(2)},
		{BrowserInfo: uaChrome, UserID: int64Ptr(1)},
		{BrowserInfo: uaFirefox, UserID: int64Ptr(3)},
		{BrowserInfo: uaFirefox},
	}}
	svc := NewAnalyticsService(store, zerolog.Nop())

	stats, err := svc.BrowserStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.BrowserStat{Browser: "Chrome", Version: "124", UserCount: 2}, stats[0])
	assert.Equal(t, models.BrowserStat{Browser: "Firefox", Version: "125", UserCount: 1}, stats[1])
}

func TestPageVisitsRange(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		dateRange string
		wantDays  int
	}{
		{"", 7},
		{"week", 7},
		{"month", 30},
		{"year", 365},
	}

	for _, tt := range tests {
		t.Run(tt.dateRange, func(t *testing.T) {
			store := &fakePageVisitStore{}
			svc := NewAnalyticsService(store, zerolog.Nop())
			svc.now = func() time.Time { return now }

			stats, err := svc.PageVisits(context.Background(), tt.dateRange)
			require.NoError(t, err)
			assert.Len(t, stats, 1)
			require.NotNil(t, store.since)
			assert.Equal(t, now.AddDate(0, 0, -tt.wantDays), *store.since)
			assert.Equal(t, 10, store.limit)
		})
	}

	svc := NewAnalyticsService(&fakePageVisitStore{}, zerolog.Nop())
	_, err := svc.PageVisits(context.Background(), "decade")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
