package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
)

const pageVisitTimeout = 5 * time.Second

// VisitRecorder stores page visits
type VisitRecorder interface {
	RecordVisit(ctx context.Context, visit *models.PageVisit) error
}

// PageVisits records browser page views. Only GET requests outside /api/
// whose path has no file extension are tracked. The insert runs in the
// background and never delays the response.
func PageVisits(recorder VisitRecorder, userID func(*gin.Context) *int64, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !trackable(c.Request) {
			c.Next()
			return
		}

		visit := &models.PageVisit{
			PageURL:     c.Request.URL.Path,
			BrowserInfo: c.Request.UserAgent(),
			IPAddress:   c.ClientIP(),
			VisitedAt:   time.Now(),
		}
		if userID != nil {
			visit.UserID = userID(c)
		}

		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			ctx, cancel := context.WithTimeout(ctx, pageVisitTimeout)
			defer cancel()
			if err := recorder.RecordVisit(ctx, visit); err != nil {
				logger.Warn().Err(err).Str("path", visit.PageURL).Msg("Failed to record page visit")
			}
		}()

		c.Next()
	}
}

func trackable(r *http.Request) bool {
	path := r.URL.Path
	return r.Method == http.MethodGet &&
		!strings.HasPrefix(path, "/api/") &&
		!strings.Contains(path, ".")
}
