package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/helpers"
)

const defaultRecentActivity = 10

// ActivityController exposes the audit trail
type ActivityController struct {
	activityService *services.ActivityService
}

// NewActivityController creates a new ActivityController
func NewActivityController(activityService *services.ActivityService) *ActivityController {
	return &ActivityController{activityService: activityService}
}

// Recent returns the newest activity log entries
// @Summary Recent activity
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of entries" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=[]models.ActivityLog} "Activity"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/activity/recent [get]
// @Router /manager/activity/recent [get]
func (c *ActivityController) Recent(ctx *gin.Context) {
	limit := helpers.ParseLimit(ctx, defaultRecentActivity, helpers.MaxPageSize)
	logs, err := c.activityService.Recent(ctx.Request.Context(), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, logs)
}

// Log records a client-reported action for the caller
// @Summary Record an action
// @Tags activity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ActivityLogRequest true "Action"
// @Success 201 {object} dto.APIResponse{data=dto.ActivityLogResponse} "Recorded"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/activity/log [post]
func (c *ActivityController) Log(ctx *gin.Context) {
	c.record(ctx, false)
}

// LogWithDetails is Log with action_details required
// @Summary Record an action with details
// @Tags activity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ActivityLogRequest true "Action"
// @Success 201 {object} dto.APIResponse{data=dto.ActivityLogResponse} "Recorded"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/activity/log [post]
func (c *ActivityController) LogWithDetails(ctx *gin.Context) {
	c.record(ctx, true)
}

func (c *ActivityController) record(ctx *gin.Context, requireDetails bool) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.ActivityLogRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if requireDetails && strings.TrimSpace(req.ActionDetails) == "" {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("action_details", "Action details are required"))
		return
	}

	entry, err := c.activityService.Record(ctx.Request.Context(), &userID, req.ActionType, req.ActionDetails)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, dto.ActivityLogResponse{Success: true, LogID: entry.ID})
}
