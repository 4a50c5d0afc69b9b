package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/applog/internal/datastore"
	"github.com/tphakala/applog/internal/errors"
)

const (
	// openTimeout bounds transport initialization, mostly the datastore ping.
	openTimeout = 30 * time.Second

	// slowQueryThreshold is passed to the datastore's SQL logger.
	slowQueryThreshold = 200 * time.Millisecond
)

// Option configures a CentralLogger.
type Option func(*options)

type options struct {
	console       io.Writer
	fs            afero.Fs
	clock         func() time.Time
	recorder      DeliveryRecorder
	storeMetrics  datastore.OperationRecorder
	diagnostics   *slog.Logger
	sinks         map[DestinationKind]Sink
	blockOnFull   bool
	redact        bool
	flushInterval time.Duration
}

// WithConsoleWriter sets where the console destination writes. Default os.Stdout.
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithFs sets the filesystem the file destination is opened on.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithClock sets the clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithMetrics registers a recorder for delivery statistics.
func WithMetrics(r DeliveryRecorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithStoreMetrics registers a recorder for datastore operation statistics.
func WithStoreMetrics(r datastore.OperationRecorder) Option {
	return func(o *options) { o.storeMetrics = r }
}

// WithDiagnostics sets the logger that receives delivery failures.
// Default is a WARN text handler on stderr.
func WithDiagnostics(l *slog.Logger) Option {
	return func(o *options) { o.diagnostics = l }
}

// WithSink replaces the transport of a destination. The destination's activity
// and severity threshold are unchanged.
func WithSink(kind DestinationKind, s Sink) Option {
	return func(o *options) {
		if o.sinks == nil {
			o.sinks = make(map[DestinationKind]Sink)
		}
		o.sinks[kind] = s
	}
}

// WithBlockOnFull makes logging calls wait for queue space instead of dropping
// events when a destination falls behind.
func WithBlockOnFull() Option {
	return func(o *options) { o.blockOnFull = true }
}

// WithRedaction masks sensitive metadata values before delivery.
func WithRedaction() Option {
	return func(o *options) { o.redact = true }
}

// WithFileFlushInterval sets how often the log file buffer is flushed.
func WithFileFlushInterval(d time.Duration) Option {
	return func(o *options) { o.flushInterval = d }
}

// route ties an active destination to its delivery queue.
type route struct {
	dest  Destination
	queue *deliveryQueue
}

// CentralLogger fans events out to the destinations selected at startup.
// It is safe for concurrent use.
type CentralLogger struct {
	destinations []Destination
	routes       []route
	clock        func() time.Time
	redact       bool
	diag         *diagnostics

	closeOnce sync.Once
	closeErr  error
}

// NewCentralLogger selects destinations for cfg and opens their transports.
// If any active destination cannot be opened, the ones already opened are
// closed and the error is returned.
func NewCentralLogger(cfg Config, opts ...Option) (*CentralLogger, error) {
	applyConfigDefaults(&cfg)

	o := options{
		console:       os.Stdout,
		fs:            afero.NewOsFs(),
		clock:         time.Now,
		recorder:      noopRecorder{},
		blockOnFull:   cfg.BlockOnFull,
		flushInterval: DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.diagnostics == nil {
		o.diagnostics = NewDiagnosticsLogger(os.Stderr, slog.LevelWarn)
	}

	if _, err := ParseEnvironment(string(cfg.Environment)); err != nil {
		return nil, errors.New(err).
			Component("logger").
			Category(errors.CategoryConfiguration).
			Build()
	}

	destinations := SelectDestinations(cfg)
	sinks, err := openSinks(cfg, destinations, &o)
	if err != nil {
		return nil, err
	}

	cl := &CentralLogger{
		destinations: destinations,
		clock:        o.clock,
		redact:       o.redact,
		diag:         newDiagnostics(o.diagnostics),
	}
	for i, dest := range destinations {
		if sinks[i] == nil {
			continue
		}
		q := newDeliveryQueue(string(dest.Kind), sinks[i], cfg.QueueSize, o.blockOnFull, o.recorder, cl.diag)
		cl.routes = append(cl.routes, route{dest: dest, queue: q})
	}

	return cl, nil
}

// openSinks opens the transport of every active destination concurrently.
// The result is parallel to destinations; inactive ones get a nil sink.
func openSinks(cfg Config, destinations []Destination, o *options) ([]Sink, error) {
	sinks := make([]Sink, len(destinations))

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i, dest := range destinations {
		if !dest.Active {
			continue
		}
		if s, ok := o.sinks[dest.Kind]; ok {
			sinks[i] = s
			continue
		}
		g.Go(func() error {
			s, err := openSink(gctx, cfg, dest, o)
			if err != nil {
				return err
			}
			sinks[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, s := range sinks {
			if s != nil {
				_ = s.Close()
			}
		}
		return nil, err
	}
	return sinks, nil
}

// openSink opens the default transport for dest.
func openSink(ctx context.Context, cfg Config, dest Destination, o *options) (Sink, error) {
	switch dest.Kind {
	case DestinationConsole:
		return newConsoleSink(o.console), nil

	case DestinationFile:
		w, err := NewBufferedFileWriter(dest.Path,
			WithFileSystem(o.fs),
			WithFlushInterval(o.flushInterval))
		if err != nil {
			return nil, errors.FileError(err, "logger", dest.Path)
		}
		return &fileSink{writer: w}, nil

	case DestinationStore:
		if dest.StoreURL == "" {
			return nil, errors.Newf("store destination requires a database url").
				Component("logger").
				Category(errors.CategoryConfiguration).
				Context("destination", string(dest.Kind)).
				Build()
		}
		store, err := datastore.Open(ctx, dest.StoreURL, datastore.Options{
			Collection:      dest.Collection,
			Retention:       dest.Retention,
			JanitorInterval: cfg.JanitorInterval,
			GormLogger:      NewGormLoggerAdapter(o.diagnostics, slowQueryThreshold),
			Logger:          o.diagnostics,
			Now:             o.clock,
			Metrics:         o.storeMetrics,
		})
		if err != nil {
			return nil, err
		}
		return &storeSink{store: store}, nil

	default:
		return nil, errors.Newf("unknown destination %q", dest.Kind).
			Component("logger").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

// Destinations returns the destination list selected at startup.
func (cl *CentralLogger) Destinations() []Destination {
	return slices.Clone(cl.destinations)
}

// emit stamps and routes one event.
func (cl *CentralLogger) emit(severity Severity, msg string, fields []Field) {
	ev := NewEvent(severity, msg, cl.clock(), fields...)
	if cl.redact {
		ev.Message = RedactSensitiveData(ev.Message)
		ev.Meta = RedactMetadata(ev.Meta)
	}
	for i := range cl.routes {
		if cl.routes[i].dest.Admits(severity) {
			cl.routes[i].queue.enqueue(ev)
		}
	}
}

// Debug logs a debug message
func (cl *CentralLogger) Debug(msg string, fields ...Field) {
	cl.emit(SeverityDebug, msg, fields)
}

// Info logs an info message
func (cl *CentralLogger) Info(msg string, fields ...Field) {
	cl.emit(SeverityInfo, msg, fields)
}

// Warn logs a warning message
func (cl *CentralLogger) Warn(msg string, fields ...Field) {
	cl.emit(SeverityWarn, msg, fields)
}

// Error logs an error message
func (cl *CentralLogger) Error(msg string, fields ...Field) {
	cl.emit(SeverityError, msg, fields)
}

// Log logs a message with explicit severity
func (cl *CentralLogger) Log(severity Severity, msg string, fields ...Field) {
	cl.emit(severity, msg, fields)
}

// With returns a logger whose events carry fields before the call's own.
func (cl *CentralLogger) With(fields ...Field) Logger {
	return &childLogger{core: cl, fields: slices.Clone(fields)}
}

// Module returns a logger whose events carry a module field.
func (cl *CentralLogger) Module(name string) Logger {
	return &childLogger{core: cl, module: name}
}

// Flush waits for every event queued before the call to reach its transport and
// flushes the transports. It waits at most DrainTimeout.
func (cl *CentralLogger) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), DrainTimeout)
	defer cancel()

	var errs []error
	for i := range cl.routes {
		if err := cl.routes[i].queue.flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.New(errors.Join(errs...)).
		Component("logger").
		Category(errors.CategoryDestination).
		Build()
}

// Close drains every queue and closes the transports. Events logged after Close
// are dropped. Close is idempotent.
func (cl *CentralLogger) Close() error {
	cl.closeOnce.Do(func() {
		errs := make([]error, len(cl.routes))

		var wg sync.WaitGroup
		for i := range cl.routes {
			wg.Go(func() {
				errs[i] = cl.routes[i].queue.close()
			})
		}
		wg.Wait()

		if err := errors.Join(errs...); err != nil {
			cl.closeErr = errors.New(err).
				Component("logger").
				Category(errors.CategoryDestination).
				Build()
		}
	})
	return cl.closeErr
}

// childLogger carries fields accumulated by With and Module. The fields slice is
// never appended to in place.
type childLogger struct {
	core   *CentralLogger
	module string
	fields []Field
}

func (c *childLogger) emit(severity Severity, msg string, fields []Field) {
	all := make([]Field, 0, 1+len(c.fields)+len(fields))
	if c.module != "" {
		all = append(all, Field{Key: moduleKey, Value: StringValue(c.module)})
	}
	all = append(all, c.fields...)
	all = append(all, fields...)
	c.core.emit(severity, msg, all)
}

// Debug logs a debug message
func (c *childLogger) Debug(msg string, fields ...Field) { c.emit(SeverityDebug, msg, fields) }

// Info logs an info message
func (c *childLogger) Info(msg string, fields ...Field) { c.emit(SeverityInfo, msg, fields) }

// Warn logs a warning message
func (c *childLogger) Warn(msg string, fields ...Field) { c.emit(SeverityWarn, msg, fields) }

// Error logs an error message
func (c *childLogger) Error(msg string, fields ...Field) { c.emit(SeverityError, msg, fields) }

// Log logs a message with explicit severity
func (c *childLogger) Log(severity Severity, msg string, fields ...Field) {
	c.emit(severity, msg, fields)
}

// With returns a logger with accumulated fields
func (c *childLogger) With(fields ...Field) Logger {
	return &childLogger{
		core:   c.core,
		module: c.module,
		fields: slices.Concat(c.fields, fields),
	}
}

// Module creates a sub-module logger named parent.child.
func (c *childLogger) Module(name string) Logger {
	module := name
	if c.module != "" {
		module = c.module + "." + name
	}
	return &childLogger{
		core:   c.core,
		module: module,
		fields: slices.Clone(c.fields),
	}
}

// Flush flushes the shared destinations.
func (c *childLogger) Flush() error {
	return c.core.Flush()
}

var (
	_ Logger = (*CentralLogger)(nil)
	_ Logger = (*childLogger)(nil)
)
