package logger

import (
	"path/filepath"
	"time"
)

// DestinationKind identifies a log destination.
type DestinationKind string

const (
	DestinationConsole DestinationKind = "console"
	DestinationFile    DestinationKind = "file"
	DestinationStore   DestinationKind = "store"
)

// FormatterKind names the formatter a destination applies before delivery.
type FormatterKind string

const (
	FormatterConsole     FormatterKind = "console"
	FormatterFile        FormatterKind = "file"
	FormatterPassthrough FormatterKind = "passthrough" // structured fields go to the transport as-is
)

const (
	// StoreRetention is how long the datastore keeps a record (2,592,000 seconds).
	StoreRetention = 30 * 24 * time.Hour

	// StoreCollection is the logical table every store record is written to.
	StoreCollection = "application_logs"
)

// Destination is the startup-time decision for one output target.
type Destination struct {
	Kind        DestinationKind
	MinSeverity Severity
	Active      bool
	Formatter   FormatterKind
	Path        string        // file only
	Retention   time.Duration // store only
	Collection  string        // store only
	StoreURL    string        // store only
}

// Admits reports whether the destination delivers events of severity s.
func (d Destination) Admits(s Severity) bool {
	return d.Active && s >= d.MinSeverity
}

// LogFilePath returns the file destination path for an environment.
func LogFilePath(dir string, env Environment) string {
	if dir == "" {
		dir = DefaultLogDir
	}
	return filepath.Join(dir, string(env)+".log")
}

// SelectDestinations decides, once, which destinations exist and how they are
// configured. The result is ordered file, store, console. The console is active
// only in development; file and store are always active.
func SelectDestinations(cfg Config) []Destination {
	applyConfigDefaults(&cfg)

	return []Destination{
		{
			Kind:        DestinationFile,
			MinSeverity: SeverityInfo,
			Active:      true,
			Formatter:   FormatterFile,
			Path:        LogFilePath(cfg.LogDir, cfg.Environment),
		},
		{
			Kind:        DestinationStore,
			MinSeverity: SeverityInfo,
			Active:      true,
			Formatter:   FormatterPassthrough,
			Retention:   StoreRetention,
			Collection:  StoreCollection,
			StoreURL:    cfg.StoreURL,
		},
		{
			Kind:        DestinationConsole,
			MinSeverity: SeverityInfo,
			Active:      cfg.Environment == EnvDevelopment,
			Formatter:   FormatterConsole,
		},
	}
}
