package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Diagnostics rate limits. A failing destination produces at most a burst of
// reports followed by one per interval.
const (
	diagnosticsBurst    = 5
	diagnosticsInterval = time.Second
)

// NewDiagnosticsLogger returns the slog logger used for the library's own
// problems: delivery failures, dropped events and datastore warnings. It never
// writes through the facade.
func NewDiagnosticsLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).
		With(moduleKey, "applog")
}

// diagnostics reports delivery problems through a rate-limited slog logger.
// Reports over the limit are counted and the count is attached to the next
// report that gets through.
type diagnostics struct {
	log        *slog.Logger
	limiter    *rate.Limiter
	mu         sync.Mutex
	suppressed int
}

func newDiagnostics(log *slog.Logger) *diagnostics {
	if log == nil {
		log = NewDiagnosticsLogger(nil, slog.LevelWarn)
	}
	return &diagnostics{
		log:     log,
		limiter: rate.NewLimiter(rate.Every(diagnosticsInterval), diagnosticsBurst),
	}
}

// report logs msg at WARN unless the rate limit is exhausted.
func (d *diagnostics) report(msg string, args ...any) {
	if !d.limiter.Allow() {
		d.mu.Lock()
		d.suppressed++
		d.mu.Unlock()
		return
	}

	d.mu.Lock()
	suppressed := d.suppressed
	d.suppressed = 0
	d.mu.Unlock()

	if suppressed > 0 {
		args = append(args, "suppressed", suppressed)
	}
	d.log.Warn(msg, args...)
}

// DeliveryRecorder receives per-destination delivery statistics.
// metrics.LoggingMetrics implements it.
type DeliveryRecorder interface {
	RecordEvent(destination, severity string)
	RecordDeliveryError(destination string)
	RecordDropped(destination string)
	SetQueueDepth(destination string, depth int)
}

type noopRecorder struct{}

func (noopRecorder) RecordEvent(string, string) {}
func (noopRecorder) RecordDeliveryError(string) {}
func (noopRecorder) RecordDropped(string)       {}
func (noopRecorder) SetQueueDepth(string, int)  {}
