// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/filestorage"
	"github.com/yigit/unimag/internal/pkg/helpers"
)

// parseIDParam parses a positive ID from the request path. On failure a 400
// response has been written.
func parseIDParam(ctx *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+paramName).
			WithField(paramName).
			WithDetails("ID must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewSuccessResponse(data))
}

// currentUserID returns the authenticated user or writes a 401
func currentUserID(ctx *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
	}
	return id, ok
}

// submissionFilter reads the listing query parameters shared by every submission list
func submissionFilter(ctx *gin.Context) (models.SubmissionFilter, error) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := models.SubmissionFilter{
		AcademicYear: strings.TrimSpace(ctx.Query("academicYear")),
		Search:       strings.TrimSpace(ctx.Query("search")),
		Page:         page,
		Size:         size,
	}

	if raw := ctx.Query("faculty"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, apperrors.NewValidationError("faculty", "Invalid faculty ID")
		}
		filter.FacultyID = &id
	}

	if raw := ctx.Query("status"); raw != "" {
		status, ok := models.ParseSubmissionStatus(raw)
		if !ok {
			return filter, apperrors.NewValidationError("status", "Status must be one of Submitted, Selected, Rejected")
		}
		filter.Status = &status
	}

	return filter, nil
}

// parseIDList parses a comma separated list of positive IDs
func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.NewValidationError("ids", "ids must be a comma separated list of submission IDs")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// contentDisposition builds the download header for a submission file
func contentDisposition(sub *models.Submission, preview bool) string {
	disposition := "attachment"
	if preview {
		disposition = "inline"
	}
	return fmt.Sprintf(`%s; filename="%s.%s"`, disposition, url.PathEscape(sub.Title), sub.FileType)
}

// serveSubmissionFile streams a stored file with the submission's content headers.
// Range and conditional requests are handled by http.ServeContent.
func serveSubmissionFile(ctx *gin.Context, sub *models.Submission, file filestorage.File, preview bool) {
	defer file.Close()

	ctx.Header("Content-Type", filestorage.ContentTypeFor(sub.FileType))
	ctx.Header("Content-Disposition", contentDisposition(sub, preview))
	http.ServeContent(ctx.Writer, ctx.Request, "", file.ModTime(), file)
}

func isPreview(ctx *gin.Context) bool {
	return ctx.Query("preview") == "true"
}
