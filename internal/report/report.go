// Package report forwards absorbed errors to an external error tracker.
package report

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter receives errors that were handled locally but should still be seen.
type Reporter interface {
	CaptureError(errorType string, err error, extra map[string]interface{})
}

// Nop drops everything. Used when no tracker is configured.
type Nop struct{}

func (Nop) CaptureError(string, error, map[string]interface{}) {}

type Sentry struct {
	flushTimeout time.Duration
}

// NewSentry initialises the global sentry hub.
func NewSentry(dsn, environment string) (*Sentry, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}
	return &Sentry{flushTimeout: 2 * time.Second}, nil
}

func (s *Sentry) CaptureError(errorType string, err error, extra map[string]interface{}) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered events before shutdown.
func (s *Sentry) Flush() {
	sentry.Flush(s.flushTimeout)
}
