package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// GormLoggerAdapter adapts a diagnostics slog.Logger to GORM's logger.Interface.
// SQL statements are logged at DEBUG, slow queries and query errors at WARN.
//
// The datastore is itself a log destination, so its SQL logging must never be
// routed back through the CentralLogger.
type GormLoggerAdapter struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

// NewGormLoggerAdapter creates a new GORM logger adapter.
// Queries slower than slowThreshold are logged at WARN. Use 0 to disable slow
// query warnings.
func NewGormLoggerAdapter(logger *slog.Logger, slowThreshold time.Duration) *GormLoggerAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GormLoggerAdapter{
		logger:        logger.With(moduleKey, "datastore"),
		slowThreshold: slowThreshold,
	}
}

// LogMode returns the adapter itself. The level is decided by the slog handler.
func (a *GormLoggerAdapter) LogMode(_ gorm_logger.LogLevel) gorm_logger.Interface {
	return a
}

// Info logs GORM informational messages at DEBUG level.
func (a *GormLoggerAdapter) Info(ctx context.Context, msg string, data ...any) {
	a.logger.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

// Warn logs warning messages at WARN level.
func (a *GormLoggerAdapter) Warn(ctx context.Context, msg string, data ...any) {
	a.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

// Error logs error messages at ERROR level.
func (a *GormLoggerAdapter) Error(ctx context.Context, msg string, data ...any) {
	a.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

// Trace logs SQL statements and their execution details.
func (a *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		a.logger.WarnContext(ctx, "query error",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)

	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		sql, rows := fc()
		a.logger.WarnContext(ctx, "slow query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"threshold", a.slowThreshold)

	default:
		if !a.logger.Enabled(ctx, slog.LevelDebug) {
			return
		}
		sql, rows := fc()
		a.logger.DebugContext(ctx, "sql query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds())
	}
}

var _ gorm_logger.Interface = (*GormLoggerAdapter)(nil)
