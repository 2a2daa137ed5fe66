package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

// SettingsController serves the academic calendar and per-user settings
type SettingsController struct {
	settingsService *services.SettingsService
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService *services.SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

// AcademicSettings returns the academic calendar, or the defaults when none is configured
// @Summary Get the academic calendar
// @Description The admin route requires a bearer token
// @Tags settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AcademicSettingsResponse} "Academic settings"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /public/academic-settings [get]
// @Router /admin/settings/academic [get]
func (c *SettingsController) AcademicSettings(ctx *gin.Context) {
	settings, err := c.settingsService.AcademicSettings(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewAcademicSettingsResponse(settings))
}

// UpdateAcademicSettings replaces the academic calendar
// @Summary Update the academic calendar
// @Description Dates use YYYY-MM-DD
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AcademicSettingsRequest true "Academic calendar"
// @Success 200 {object} dto.APIResponse{data=dto.AcademicSettingsResponse} "Updated settings"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/settings/academic [put]
func (c *SettingsController) UpdateAcademicSettings(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.AcademicSettingsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	settings, err := c.settingsService.UpdateAcademicSettings(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewAcademicSettingsResponse(settings))
}

// UserSettings returns one settings document of the caller merged over its defaults
// @Summary Get own settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Settings document" Enums(notifications, display, export)
// @Success 200 {object} dto.APIResponse{data=models.SettingsDocument} "Settings"
// @Failure 400 {object} dto.APIResponse "Unknown settings kind"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/settings/{kind} [get]
// @Router /users/settings/{kind} [get]
func (c *SettingsController) UserSettings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	kind, ok := settingsKind(ctx)
	if !ok {
		return
	}

	doc, err := c.settingsService.UserSettings(ctx.Request.Context(), userID, kind)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, doc)
}

// UpdateUserSettings stores known keys of one settings document
// @Summary Update own settings
// @Description Provided keys are merged over the stored document. Unknown keys or wrong value types are rejected.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Settings document" Enums(notifications, display, export)
// @Param request body models.SettingsDocument true "Settings to change"
// @Success 200 {object} dto.APIResponse{data=models.SettingsDocument} "Stored settings"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/settings/{kind} [put]
// @Router /users/settings/{kind} [put]
func (c *SettingsController) UpdateUserSettings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	kind, ok := settingsKind(ctx)
	if !ok {
		return
	}

	var update models.SettingsDocument
	if !middleware.BindJSON(ctx, &update) {
		return
	}

	doc, err := c.settingsService.UpdateUserSettings(ctx.Request.Context(), userID, kind, update)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, doc)
}

func settingsKind(ctx *gin.Context) (models.SettingsKind, bool) {
	kind, ok := models.ParseSettingsKind(ctx.Param("kind"))
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("kind", "Settings kind must be notifications, display or export"))
	}
	return kind, ok
}
