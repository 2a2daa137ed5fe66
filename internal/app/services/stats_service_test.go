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

type fakeStatsStore struct {
	counts      models.SubmissionCounts
	users       int64
	countCalls  int
	buckets     map[string][]models.TrendBucket
	trendSince  map[string]time.Time
	docTypes    []models.DocumentTypeStat
	faculties   []models.FacultyStat
	contributor []models.ContributorStat
}

func (s *fakeStatsStore) SubmissionCounts(_ context.Context, facultyID *int64) (models.SubmissionCounts, error) {
	s.countCalls++
	return s.counts, nil
}

func (s *fakeStatsStore) CountUsers(context.Context) (int64, error) { return s.users, nil }

func (s *fakeStatsStore) FacultyStats(context.Context) ([]models.FacultyStat, error) {
	return s.faculties, nil
}

func (s *fakeStatsStore) TopContributors(_ context.Context, limit int) ([]models.ContributorStat, error) {
	return s.contributor, nil
}

func (s *fakeStatsStore) Trend(_ context.Context, unit string, since time.Time) ([]models.TrendBucket, error) {
	if s.trendSince == nil {
		s.trendSince = make(map[string]time.Time)
	}
	s.trendSince[unit] = since
	return s.buckets[unit], nil
}

func (s *fakeStatsStore) DocumentTypeCounts(context.Context) ([]models.DocumentTypeStat, error) {
	out := make([]models.DocumentTypeStat, len(s.docTypes))
	copy(out, s.docTypes)
	return out, nil
}

func (s *fakeStatsStore) StudentsByFaculty(context.Context) ([]models.FacultyStudentStat, error) {
	return []models.FacultyStudentStat{}, nil
}

func (s *fakeStatsStore) UserActivity(_ context.Context, limit int) ([]models.UserActivityStat, error) {
	return []models.UserActivityStat{}, nil
}

func newStatsTestService(store *fakeStatsStore) *StatsService {
	svc := NewStatsService(store, newFakeFacultyStore(), nil, time.Minute, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboards(t *testing.T) {
	store := &fakeStatsStore{
		counts: models.SubmissionCounts{Total: 10, Submitted: 6, Selected: 3, Rejected: 1, Contributors: 4},
		users:  25,
	}
	svc := newStatsTestService(store)

	admin, err := svc.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25), admin.TotalUsers)
	assert.Equal(t, int64(10), admin.TotalSubmissions)
	assert.Equal(t, int64(6), admin.PendingSubmissions)
	assert.Equal(t, int64(3), admin.SelectedSubmissions)

	manager, err := svc.ManagerDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), manager.PendingSelections)
	assert.Equal(t, int64(4), manager.TotalContributors)

	coord, err := svc.CoordinatorDashboard(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Business", coord.FacultyName)
	assert.Equal(t, int64(1), coord.Rejected)

	_, err = svc.CoordinatorDashboard(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)
}

func TestMonthlyTrendFillsEmptyMonths(t *testing.T) {
	store := &fakeStatsStore{buckets: map[string][]models.TrendBucket{
		TimespanMonth: {
			{Start: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), SubmissionCount: 4, SelectedCount: 1},
			{Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), SubmissionCount: 2},
		},
	}}
	svc := newStatsTestService(store)

	points, err := svc.Trends(context.Background(), TimespanMonth)
	require.NoError(t, err)
	require.Len(t, points, 12)

	assert.Equal(t, "Apr 2024", points[0].Period)
	assert.Equal(t, "Mar 2025", points[11].Period)
	assert.Equal(t, int64(4), points[1].SubmissionCount)
	assert.Equal(t, int64(1), points[1].SelectedCount)
	assert.Equal(t, int64(0), points[5].SubmissionCount)
	assert.Equal(t, int64(2), points[11].SubmissionCount)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), store.trendSince[TimespanMonth])
}

func TestYearlyTrend(t *testing.T) {
	store := &fakeStatsStore{buckets: map[string][]models.TrendBucket{
		TimespanYear: {{Start: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), SubmissionCount: 9, SelectedCount: 2}},
	}}
	svc := newStatsTestService(store)

	points, err := svc.Trends(context.Background(), TimespanYear)
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, "2021", points[0].Period)
	assert.Equal(t, "2025", points[4].Period)
	assert.Equal(t, int64(9), points[2].SubmissionCount)

	_, err = svc.Trends(context.Background(), "decade")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDocumentTypePercentages(t *testing.T) {
	tests := []struct {
		name  string
		stats []models.DocumentTypeStat
		want  []float64
	}{
		{
			name:  "thirds round to one decimal",
			stats: []models.DocumentTypeStat{{Type: "pdf", Count: 1}, {Type: "docx", Count: 1}, {Type: "png", Count: 1}},
			want:  []float64{33.3, 33.3, 33.3},
		},
		{
			name:  "two to one",
			stats: []models.DocumentTypeStat{{Type: "pdf", Count: 2}, {Type: "jpeg", Count: 1}},
			want:  []float64{66.7, 33.3},
		},
		{
			name:  "empty",
			stats: []models.DocumentTypeStat{},
			want:  []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStatsTestService(&fakeStatsStore{docTypes: tt.stats})
			got, err := svc.DocumentTypes(context.Background())
			require.NoError(t, err)
			pct := make([]float64, 0, len(got))
			for _, g := range got {
				pct = append(pct, g.Percentage)
			}
			assert.Equal(t, tt.want, pct)
		})
	}
}

func TestExport(t *testing.T) {
	store := &fakeStatsStore{
		counts:   models.SubmissionCounts{Total: 3, Selected: 1, Submitted: 2, Contributors: 2},
		docTypes: []models.DocumentTypeStat{{Type: "pdf", Count: 1}},
	}
	svc := newStatsTestService(store)

	export, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), export.Overview.TotalSubmissions)
	assert.Len(t, export.Trends.Monthly, 12)
	assert.Len(t, export.Trends.Yearly, 5)
	require.Len(t, export.DocumentTypes, 1)
	assert.Equal(t, 100.0, export.DocumentTypes[0].Percentage)
}
