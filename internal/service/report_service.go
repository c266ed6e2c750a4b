package service

import (
	"context"

	"github.com/rs/zerolog"
)

// LogReporter implements ports.Reporter over zerolog. Reports are
// fire-and-forget: they never fail and never alter the caller's
// control flow.
type LogReporter struct {
	log zerolog.Logger
}

// NewLogReporter creates a new LogReporter.
func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

// Report records an operation failure. Nil errors are ignored.
func (r *LogReporter) Report(_ context.Context, op string, err error) {
	if err == nil {
		return
	}
	r.log.Warn().Str("op", op).Err(err).Msg("operation reported an error")
}
