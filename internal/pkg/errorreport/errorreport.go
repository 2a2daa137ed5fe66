package errorreport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// Reporter forwards unexpected errors to an external tracker
type Reporter interface {
	ReportError(err error, req *http.Request, extras map[string]interface{})
	ReportPanic(recovered interface{}, req *http.Request)
	Close(timeout time.Duration)
}

// Config holds error reporting configuration
type Config struct {
	Token       string
	Environment string
	CodeVersion string
	ServerHost  string
}

// New returns a Rollbar-backed reporter when a token is configured and a no-op one otherwise.
func New(cfg Config, logger zerolog.Logger) Reporter {
	if cfg.Token == "" {
		logger.Info().Msg("Rollbar token not configured - error reporting disabled")
		return Nop{}
	}

	rollbar.SetToken(cfg.Token)
	rollbar.SetEnvironment(cfg.Environment)
	rollbar.SetServerHost(cfg.ServerHost)
	if cfg.CodeVersion != "" {
		rollbar.SetCodeVersion(cfg.CodeVersion)
	}
	rollbar.SetEnabled(true)

	logger.Info().Str("environment", cfg.Environment).Msg("Rollbar error reporting enabled")
	return &rollbarReporter{logger: logger}
}

type rollbarReporter struct {
	logger zerolog.Logger
}

func (r *rollbarReporter) ReportError(err error, req *http.Request, extras map[string]interface{}) {
	if err == nil {
		return
	}
	if req != nil {
		rollbar.RequestErrorWithExtras(rollbar.ERR, req, err, extras)
		return
	}
	rollbar.ErrorWithExtras(rollbar.ERR, err, extras)
}

func (r *rollbarReporter) ReportPanic(recovered interface{}, req *http.Request) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", recovered)
	}
	if req != nil {
		rollbar.RequestError(rollbar.CRIT, req, err)
		return
	}
	rollbar.Critical(err)
}

// Close flushes queued items, waiting at most timeout.
func (r *rollbarReporter) Close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		rollbar.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		r.logger.Warn().Dur("timeout", timeout).Msg("Timed out flushing Rollbar queue")
	}
	rollbar.Close()
}

// Nop discards every report
type Nop struct{}

func (Nop) ReportError(error, *http.Request, map[string]interface{}) {}
func (Nop) ReportPanic(interface{}, *http.Request)                   {}
func (Nop) Close(time.Duration)                                      {}
