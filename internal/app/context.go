// Package app holds the state shared by applog's subcommands.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/tphakala/applog/internal/conf"
	"github.com/tphakala/applog/internal/datastore"
	"github.com/tphakala/applog/internal/logger"
	"github.com/tphakala/applog/internal/observability"
)

// Context carries configuration and I/O for one CLI invocation.
type Context struct {
	Viper      *viper.Viper
	ConfigFile string
	Settings   *conf.Settings

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Fs     afero.Fs

	metrics *observability.Metrics
}

// NewContext returns a Context bound to the process's standard streams and
// the OS filesystem.
func NewContext() *Context {
	return &Context{
		Viper:  viper.New(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Fs:     afero.NewOsFs(),
	}
}

// Load reads settings. Flags bound to c.Viper take precedence over the
// environment and the config file.
func (c *Context) Load() error {
	settings, err := conf.LoadWith(c.Viper, c.ConfigFile)
	if err != nil {
		return err
	}
	c.Settings = settings
	return nil
}

// Metrics returns the process's metric collectors, creating them on first use.
func (c *Context) Metrics() (*observability.Metrics, error) {
	if c.metrics != nil {
		return c.metrics, nil
	}
	m, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}
	c.metrics = m
	return m, nil
}

// Diagnostics returns the logger for applog's own warnings.
func (c *Context) Diagnostics() *slog.Logger {
	return logger.NewDiagnosticsLogger(c.Stderr, slog.LevelWarn)
}

// OpenLogger builds the central logger from the loaded settings. extra options
// are applied after the ones derived from settings.
func (c *Context) OpenLogger(extra ...logger.Option) (*logger.CentralLogger, error) {
	m, err := c.Metrics()
	if err != nil {
		return nil, err
	}

	opts := []logger.Option{
		logger.WithFs(c.Fs),
		logger.WithConsoleWriter(c.Stdout),
		logger.WithDiagnostics(c.Diagnostics()),
		logger.WithFileFlushInterval(c.Settings.Log.FlushInterval),
		logger.WithMetrics(m.Logging),
		logger.WithStoreMetrics(m.Datastore),
	}
	if c.Settings.Log.BlockOnFull {
		opts = append(opts, logger.WithBlockOnFull())
	}
	if c.Settings.Log.Redact {
		opts = append(opts, logger.WithRedaction())
	}
	opts = append(opts, extra...)

	return logger.NewCentralLogger(c.Settings.LoggerConfig(), opts...)
}

// OpenStore connects to the log record store without starting its janitor.
func (c *Context) OpenStore(ctx context.Context) (*datastore.Store, error) {
	m, err := c.Metrics()
	if err != nil {
		return nil, err
	}
	diag := c.Diagnostics()
	return datastore.Open(ctx, c.Settings.Database.URL, datastore.Options{
		Collection: logger.StoreCollection,
		Retention:  logger.StoreRetention,
		GormLogger: logger.NewGormLoggerAdapter(diag, 0),
		Logger:     diag,
		Metrics:    m.Datastore,
	})
}

// LogFilePath returns the file destination path for the loaded environment.
func (c *Context) LogFilePath() string {
	cfg := c.Settings.LoggerConfig()
	return logger.LogFilePath(cfg.LogDir, cfg.Environment)
}

// WriteMetrics writes the metric textfile when one is configured.
func (c *Context) WriteMetrics() error {
	if c.metrics == nil || c.Settings == nil || c.Settings.Metrics.Textfile == "" {
		return nil
	}
	return c.metrics.WriteTextfile(c.Settings.Metrics.Textfile)
}
