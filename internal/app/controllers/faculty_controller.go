package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/middleware"
)

// FacultyController handles faculty and role lookups
type FacultyController struct {
	facultyService services.FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService services.FacultyService) *FacultyController {
	return &FacultyController{
		facultyService: facultyService,
	}
}

// GetAllFaculties lists faculties ordered by name
// @Summary List faculties
// @Tags faculties
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.FacultyResponse} "Faculties"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /faculties [get]
func (c *FacultyController) GetAllFaculties(ctx *gin.Context) {
	faculties, err := c.facultyService.GetAllFaculties(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponses(faculties))
}

// GetFacultyByID returns one faculty
// @Summary Get a faculty
// @Tags faculties
// @Produce json
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty"
// @Failure 400 {object} dto.APIResponse "Invalid faculty ID"
// @Failure 404 {object} dto.APIResponse "Faculty not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /faculties/{id} [get]
func (c *FacultyController) GetFacultyByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	faculty, err := c.facultyService.GetFacultyByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewFacultyResponse(faculty))
}

// GetRoles lists the role definitions
// @Summary List roles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.RoleDefinition} "Roles"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/roles [get]
func (c *FacultyController) GetRoles(ctx *gin.Context) {
	roles, err := c.facultyService.GetRoles(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, roles)
}
