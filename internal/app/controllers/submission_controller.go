package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/middleware"
)

// SubmissionController handles uploads, listings, downloads and reviews.
// The same handlers back the public, student, coordinator, manager and admin
// routes; what a caller sees is decided by the viewer on the request.
type SubmissionController struct {
	submissionService *services.SubmissionService
	activity          services.ActivityLogger
	logger            zerolog.Logger
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(submissionService *services.SubmissionService, activity services.ActivityLogger, logger zerolog.Logger) *SubmissionController {
	return &SubmissionController{
		submissionService: submissionService,
		activity:          activity,
		logger:            logger,
	}
}

// Create uploads a new contribution
// @Summary Upload a submission
// @Description Accepts DOC, DOCX, PDF, JPG, JPEG and PNG files up to the upload limit before the submission deadline
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Contribution file"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param academicYear formData string true "Academic year" example(2024-2025)
// @Param termsAccepted formData bool true "Terms and conditions accepted"
// @Success 201 {object} dto.APIResponse{data=dto.CreateSubmissionResponse} "Submission created"
// @Failure 400 {object} dto.APIResponse "Invalid data, file type or deadline passed"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 413 {object} dto.APIResponse "File too large"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /submissions [post]
func (c *SubmissionController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var form dto.CreateSubmissionForm
	if !middleware.BindForm(ctx, &form) {
		return
	}

	// A missing file is reported by the service together with the other field checks.
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		fileHeader = nil
	}

	sub, err := c.submissionService.Create(ctx.Request.Context(), userID, &form, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", userID).Int64("submissionID", sub.ID).Msg("Submission uploaded")
	respond(ctx, http.StatusCreated, dto.CreateSubmissionResponse{
		Message: "Submission created successfully",
		Submission: dto.SubmissionCreated{
			ID:          sub.ID,
			Title:       sub.Title,
			Status:      sub.Status,
			SubmittedAt: sub.SubmittedAt,
		},
	})
}

// List returns the submissions visible to the caller
// @Summary List submissions
// @Description Students see their own, coordinators their faculty, managers and the public only selected ones, administrators everything
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Page size" default(10) minimum(1) maximum(100)
// @Param search query string false "Match on title, description or author"
// @Param faculty query int false "Faculty ID"
// @Param status query string false "Review status" Enums(Submitted, Selected, Rejected)
// @Param academicYear query string false "Academic year"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionListResponse} "Submissions"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /submissions [get]
// @Router /public/submissions [get]
// @Router /admin/submissions [get]
// @Router /manager/submissions [get]
// @Router /coordinator/submissions [get]
func (c *SubmissionController) List(ctx *gin.Context) {
	filter, err := submissionFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	viewer := middleware.CurrentViewer(ctx)
	subs, pagination, err := c.submissionService.List(ctx.Request.Context(), viewer, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if viewer.Role == models.RoleAdmin {
		c.activity.Log(ctx.Request.Context(), &viewer.UserID, models.ActionView, "Viewed submissions list")
	}
	respond(ctx, http.StatusOK, dto.SubmissionListResponse{
		Submissions:    subs,
		PaginationInfo: pagination,
	})
}

// Get returns one submission
// @Summary Get a submission
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Submission} "Submission"
// @Failure 400 {object} dto.APIResponse "Invalid submission ID"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 404 {object} dto.APIResponse "Submission not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/submissions/{id} [get]
// @Router /coordinator/submissions/{id} [get]
func (c *SubmissionController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	sub, err := c.submissionService.Get(ctx.Request.Context(), middleware.CurrentViewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, sub)
}

// Download streams the submission file. ?preview=true serves it inline.
// @Summary Download a submission file
// @Description Access follows the download policy of the caller role. Selected submissions are public.
// @Tags submissions
// @Produce application/octet-stream
// @Param id path int true "Submission ID" Format(int64) minimum(1)
// @Param preview query bool false "Serve inline"
// @Param token query string false "Access token"
// @Success 200 {file} file "Submission file"
// @Failure 400 {object} dto.APIResponse "Invalid submission ID"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 404 {object} dto.APIResponse "Submission or file not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /submissions/{id}/download [get]
// @Router /public/submissions/{id}/download [get]
// @Router /admin/submissions/{id}/download [get]
// @Router /manager/submissions/{id}/download [get]
// @Router /coordinator/submissions/{id}/download [get]
func (c *SubmissionController) Download(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	preview := isPreview(ctx)
	sub, file, err := c.submissionService.Download(ctx.Request.Context(), middleware.CurrentViewer(ctx), id, preview)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	serveSubmissionFile(ctx, sub, file, preview)
}

// Comments lists the reviewer comments of a submission
// @Summary List comments
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Comment} "Comments"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 404 {object} dto.APIResponse "Submission not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/submissions/{id}/comments [get]
// @Router /coordinator/submissions/{id}/comments [get]
func (c *SubmissionController) Comments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	comments, err := c.submissionService.Comments(ctx.Request.Context(), middleware.CurrentViewer(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, comments)
}

// AddComment adds a reviewer comment and notifies the author
// @Summary Add a comment
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID" Format(int64) minimum(1)
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment} "Comment added"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 404 {object} dto.APIResponse "Submission not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/submissions/{id}/comments [post]
// @Router /coordinator/submissions/{id}/comments [post]
func (c *SubmissionController) AddComment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.submissionService.AddComment(ctx.Request.Context(), middleware.CurrentViewer(ctx), id, req.CommentText)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, comment)
}

// UpdateStatus moves a submission between Submitted, Selected and Rejected
// @Summary Change the review status
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID" Format(int64) minimum(1)
// @Param request body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Submission} "Updated submission"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 404 {object} dto.APIResponse "Submission not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /admin/submissions/{id}/status [patch]
// @Router /coordinator/submissions/{id}/status [patch]
func (c *SubmissionController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	sub, err := c.submissionService.UpdateStatus(ctx.Request.Context(), middleware.CurrentViewer(ctx), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, sub)
}
