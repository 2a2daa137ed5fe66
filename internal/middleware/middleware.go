package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/errorreport"
)

// RequestLogger logs one line per request. Server errors are logged at error level.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
			if err := c.Errors.Last(); err != nil {
				event = event.Err(err.Err)
			}
		}
		if userID, ok := CurrentUserID(c); ok {
			event = event.Int64("userID", userID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("Request handled")
	}
}

// ErrorReporter forwards server errors recorded by HandleAPIError to the reporter
func ErrorReporter(reporter errorreport.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		for _, e := range c.Errors {
			reporter.ReportError(e.Err, c.Request, map[string]interface{}{
				"route": c.FullPath(),
			})
		}
	}
}

// Recovery turns panics into a 500 envelope and reports them
func Recovery(reporter errorreport.Reporter, logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		reporter.ReportPanic(recovered, c.Request)
		abortWithError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	})
}

// CORS allows the frontend origin with credentials and exposes the download filename
func CORS(frontendURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
