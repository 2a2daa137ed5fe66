package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  uint64
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0, wantLimit: 10},
		{name: "third page", page: 3, size: 20, wantOffset: 40, wantLimit: 20},
		{name: "zero page", page: 0, size: 5, wantOffset: 0, wantLimit: 5},
		{name: "oversized", page: 2, size: 500, wantOffset: 10, wantLimit: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	p := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, int64(21), p.Total)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{query: "", wantPage: 1, wantSize: 10},
		{query: "page=4&limit=25", wantPage: 4, wantSize: 25},
		{query: "page=2&size=30", wantPage: 2, wantSize: 30},
		{query: "page=-1&limit=1000", wantPage: 1, wantSize: 10},
		{query: "page=abc&limit=xyz", wantPage: 1, wantSize: 10},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)
			page, size := ParsePaginationParams(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%poem%", LikePattern(" poem "))
	assert.Equal(t, `%100\%\_done%`, LikePattern("100%_done"))
}

func TestLastMonths(t *testing.T) {
	now := time.Date(2025, time.February, 14, 10, 0, 0, 0, time.UTC)
	months := LastMonths(now, 12)
	require.Len(t, months, 12)
	assert.Equal(t, "Mar 2024", MonthLabel(months[0]))
	assert.Equal(t, "Feb 2025", MonthLabel(months[11]))
}

func TestLastYears(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []int{2021, 2022, 2023, 2024, 2025}, LastYears(now, 5))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-05-25")
	require.NoError(t, err)
	assert.Equal(t, 25, d.Day())

	_, err = ParseDate("25/05/2025")
	assert.Error(t, err)
}
