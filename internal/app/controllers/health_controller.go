package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models/dto"
)

const dbCheckTimeout = 5 * time.Second

// DBPinger is the part of the pool used by the database check
type DBPinger interface {
	Ping(ctx context.Context) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HealthController serves liveness and database checks
type HealthController struct {
	db     DBPinger
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(db DBPinger, logger zerolog.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// Health reports that the process is up
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is up"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// DBTest pings the database and returns its clock
// @Summary Database check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DBTestResponse} "Database reachable"
// @Failure 500 {object} dto.APIResponse "Database connection failed"
// @Router /db-test [get]
func (c *HealthController) DBTest(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), dbCheckTimeout)
	defer cancel()

	var serverTime time.Time
	err := c.db.Ping(reqCtx)
	if err == nil {
		err = c.db.QueryRow(reqCtx, "SELECT NOW()").Scan(&serverTime)
	}
	if err != nil {
		c.logger.Error().Err(err).Msg("Database check failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database connection failed")))
		return
	}

	respond(ctx, http.StatusOK, dto.DBTestResponse{Status: "connected", ServerTime: serverTime})
}
