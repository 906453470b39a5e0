package transport

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditLogger records build/open/transport attempts. Implementations must
// never log key material, plaintext, or decrypted fields: only identifiers
// and outcomes.
type AuditLogger interface {
	// Retry logs a retried HTTP request.
	Retry(ctx context.Context, method, path string, attempt int, delay time.Duration)
	// RequestFailed logs a request that ultimately failed.
	RequestFailed(ctx context.Context, method, path string, err error)
	// BuildAttempt logs a capsa build outcome.
	BuildAttempt(ctx context.Context, packageID string, recipients int, err error)
	// OpenAttempt logs a capsa open outcome.
	OpenAttempt(ctx context.Context, packageID, party string, err error)
}

// zerologAuditLogger is the default AuditLogger, backed by zerolog.
type zerologAuditLogger struct {
	log zerolog.Logger
}

// NewZerologAuditLogger wraps a zerolog.Logger as an AuditLogger.
func NewZerologAuditLogger(log zerolog.Logger) AuditLogger {
	return &zerologAuditLogger{log: log}
}

func (a *zerologAuditLogger) Retry(_ context.Context, method, path string, attempt int, delay time.Duration) {
	a.log.Warn().
		Str("method", method).
		Str("path", path).
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("transport retry")
}

func (a *zerologAuditLogger) RequestFailed(_ context.Context, method, path string, err error) {
	a.log.Error().
		Str("method", method).
		Str("path", path).
		Err(err).
		Msg("transport request failed")
}

func (a *zerologAuditLogger) BuildAttempt(_ context.Context, packageID string, recipients int, err error) {
	ev := a.log.Info()
	if err != nil {
		ev = a.log.Warn().Err(err)
	}
	ev.Str("package_id", packageID).Int("recipients", recipients).Msg("capsa build")
}

func (a *zerologAuditLogger) OpenAttempt(_ context.Context, packageID, party string, err error) {
	ev := a.log.Info()
	if err != nil {
		ev = a.log.Warn().Err(err)
	}
	ev.Str("package_id", packageID).Str("party", party).Msg("capsa open")
}
