package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/errorreport"
)

// ExportController streams ZIP bundles of selected submissions
type ExportController struct {
	exportService *services.ExportService
	reporter      errorreport.Reporter
	logger        zerolog.Logger
}

// NewExportController creates a new ExportController
func NewExportController(exportService *services.ExportService, reporter errorreport.Reporter, logger zerolog.Logger) *ExportController {
	if reporter == nil {
		reporter = errorreport.Nop{}
	}
	return &ExportController{exportService: exportService, reporter: reporter, logger: logger}
}

// DownloadZip streams the selected submissions as a ZIP archive
// @Summary Download selected submissions as ZIP
// @Description Without IDs every selected submission is exported. The GET form takes the token as a query parameter for plain browser downloads.
// @Tags manager
// @Accept json
// @Produce application/zip
// @Security BearerAuth
// @Param request body dto.ZipDownloadRequest false "Submissions to export"
// @Param ids query string false "Comma separated submission IDs"
// @Param token query string false "Access token"
// @Success 200 {file} file "ZIP archive"
// @Failure 400 {object} dto.APIResponse "Invalid request data"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 404 {object} dto.APIResponse "No selected submissions found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /manager/submissions/download-zip [post]
// @Router /manager/submissions/download-zip [get]
func (c *ExportController) DownloadZip(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	ids, err := c.requestedIDs(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	export, err := c.exportService.Prepare(ctx.Request.Context(), userID, ids)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "application/zip")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	ctx.Status(http.StatusOK)

	res, err := c.exportService.Write(ctx.Request.Context(), userID, ctx.Writer, export)
	if err != nil {
		c.exportAborted(ctx, userID, export, err)
		return
	}
	c.logger.Info().
		Int64("userID", userID).
		Int("added", res.Added).
		Int("failed", res.Failed).
		Msg("ZIP export finished")
}

// exportAborted records a failure after the 200 header went out. The error
// middleware only reports 5xx responses, so the reporter is called here.
func (c *ExportController) exportAborted(ctx *gin.Context, userID int64, export *services.ZipExport, err error) {
	c.logger.Error().Err(err).Int64("userID", userID).Str("filename", export.Filename).Msg("ZIP export aborted")
	c.reporter.ReportError(err, ctx.Request, map[string]interface{}{
		"userID":      userID,
		"filename":    export.Filename,
		"submissions": len(export.Entries),
	})
	_ = ctx.Error(err)
}

func (c *ExportController) requestedIDs(ctx *gin.Context) ([]int64, error) {
	if ctx.Request.Method == http.MethodGet {
		return parseIDList(ctx.Query("ids"))
	}

	var req dto.ZipDownloadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewBadRequestError("Invalid request body")
	}
	return req.SubmissionIDs, nil
}
