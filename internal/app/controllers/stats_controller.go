package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/helpers"
)

const (
	defaultContributorLimit = 20
	defaultUserActivityRows = 50
)

// StatsController serves dashboards, publication statistics and site analytics
type StatsController struct {
	statsService     *services.StatsService
	analyticsService *services.AnalyticsService
	activity         services.ActivityLogger
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService *services.StatsService, analyticsService *services.AnalyticsService, activity services.ActivityLogger) *StatsController {
	return &StatsController{
		statsService:     statsService,
		analyticsService: analyticsService,
		activity:         activity,
	}
}

// AdminDashboard returns the admin landing page counters
// @Summary Admin dashboard
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardStats} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/dashboard/stats [get]
func (c *StatsController) AdminDashboard(ctx *gin.Context) {
	stats, err := c.statsService.AdminDashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// ManagerDashboard returns the marketing overview
// @Summary Manager dashboard
// @Tags manager
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ManagerDashboardStats} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/dashboard/stats [get]
// @Router /manager/stats/overview [get]
func (c *StatsController) ManagerDashboard(ctx *gin.Context) {
	stats, err := c.statsService.ManagerDashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// CoordinatorDashboard summarizes the coordinator's own faculty
// @Summary Coordinator dashboard
// @Tags coordinator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CoordinatorDashboardStats} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /coordinator/dashboard/stats [get]
func (c *StatsController) CoordinatorDashboard(ctx *gin.Context) {
	viewer := middleware.CurrentViewer(ctx)
	if viewer.FacultyID == nil {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("No faculty assigned to this coordinator"))
		return
	}

	stats, err := c.statsService.CoordinatorDashboard(ctx.Request.Context(), *viewer.FacultyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// FacultyStats returns the per-faculty submission breakdown
// @Summary Faculty statistics
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.FacultyStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/faculties/stats [get]
// @Router /manager/faculty-stats [get]
// @Router /manager/stats/faculties [get]
func (c *StatsController) FacultyStats(ctx *gin.Context) {
	stats, err := c.statsService.FacultyStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// TopContributors ranks users by submissions
// @Summary Top contributors
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of contributors" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=[]models.ContributorStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/stats/contributors [get]
func (c *StatsController) TopContributors(ctx *gin.Context) {
	limit := helpers.ParseLimit(ctx, defaultContributorLimit, helpers.MaxPageSize)
	stats, err := c.statsService.TopContributors(ctx.Request.Context(), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// Trends returns submission counts per month or year
// @Summary Submission trends
// @Description Every bucket of the last 12 months or 5 years is present
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param timespan query string false "Bucket size" Enums(month, year) default(month)
// @Success 200 {object} dto.APIResponse{data=[]models.TrendPoint} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/stats/trends [get]
func (c *StatsController) Trends(ctx *gin.Context) {
	points, err := c.statsService.Trends(ctx.Request.Context(), ctx.Query("timespan"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, points)
}

// DocumentTypes returns the file type mix of selected submissions
// @Summary Document types
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.DocumentTypeStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/stats/document-types [get]
func (c *StatsController) DocumentTypes(ctx *gin.Context) {
	stats, err := c.statsService.DocumentTypes(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// StudentsByFaculty counts students and contributors per faculty
// @Summary Students by faculty
// @Tags manager
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.FacultyStudentStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/students-by-faculty [get]
func (c *StatsController) StudentsByFaculty(ctx *gin.Context) {
	stats, err := c.statsService.StudentsByFaculty(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// UserActivity summarizes logins, submissions and comments per user
// @Summary User activity
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of users" default(50) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=[]models.UserActivityStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/analytics/user-activity [get]
func (c *StatsController) UserActivity(ctx *gin.Context) {
	limit := helpers.ParseLimit(ctx, defaultUserActivityRows, helpers.MaxPageSize)
	stats, err := c.statsService.UserActivity(ctx.Request.Context(), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// PageVisits returns the most viewed pages
// @Summary Most viewed pages
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param dateRange query string false "Time window" Enums(week, month, year) default(week)
// @Success 200 {object} dto.APIResponse{data=[]models.PageViewStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/analytics/page-visits [get]
func (c *StatsController) PageVisits(ctx *gin.Context) {
	stats, err := c.analyticsService.PageVisits(ctx.Request.Context(), ctx.Query("dateRange"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// BrowserStats counts users per browser family
// @Summary Browser usage
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.BrowserStat} "OK"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/analytics/browser-stats [get]
func (c *StatsController) BrowserStats(ctx *gin.Context) {
	stats, err := c.analyticsService.BrowserStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// ExportData sends the publication statistics as a JSON attachment
// @Summary Export publication statistics
// @Tags manager
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PublicationExport "Statistics document"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/export-data [get]
func (c *StatsController) ExportData(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	doc, err := c.statsService.Export(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("failed to encode statistics export: %w", err))
		return
	}

	c.activity.Log(ctx.Request.Context(), &userID, models.ActionDataExport, "Exported publication statistics")

	filename := fmt.Sprintf("publication-stats-%d.json", time.Now().UnixMilli())
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, "application/json", body)
}
