// Package datastore persists log records in a SQL database through GORM.
//
// Records live in a single logical table and expire after a retention period.
// Expired rows are removed by a janitor goroutine owned by the Store.
package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/tphakala/applog/internal/errors"
)

const (
	// DefaultCollection is the table log records are written to.
	DefaultCollection = "application_logs"

	// DefaultRetention is how long a record is kept.
	DefaultRetention = 30 * 24 * time.Hour

	// DefaultQueryLimit caps Recent when Query.Limit is zero.
	DefaultQueryLimit = 50

	purgeTimeout = 30 * time.Second
)

// Record is one persisted log event.
type Record struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Level     string    `gorm:"size:8;index"`
	Message   string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"index"`
	Meta      string    `gorm:"type:text"` // normalized metadata as a JSON object
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// MetaMap decodes the stored metadata.
func (r *Record) MetaMap() (map[string]any, error) {
	meta := map[string]any{}
	if r.Meta == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(r.Meta), &meta); err != nil {
		return nil, fmt.Errorf("decode meta of record %s: %w", r.ID, err)
	}
	return meta, nil
}

// Options configures a Store.
type Options struct {
	Collection      string                // table name, DefaultCollection if empty
	Retention       time.Duration         // record lifetime, DefaultRetention if zero
	JanitorInterval time.Duration         // purge period; 0 disables the janitor
	GormLogger      gorm_logger.Interface // SQL logging; silent if nil
	Logger          *slog.Logger          // janitor diagnostics; discarded if nil
	Now             func() time.Time      // clock, time.Now if nil
	Metrics         OperationRecorder     // operation statistics; ignored if nil
}

// OperationRecorder receives store operation statistics.
// metrics.DatastoreMetrics implements it.
type OperationRecorder interface {
	RecordOperation(operation, status string, duration time.Duration)
	RecordPurged(count int64)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, string, time.Duration) {}
func (noopRecorder) RecordPurged(int64)                            {}

// Store writes and queries log records.
type Store struct {
	db         *gorm.DB
	dialect    string
	collection string
	retention  time.Duration
	log        *slog.Logger
	now        func() time.Time
	metrics    OperationRecorder

	stopJanitor chan struct{}
	janitorDone chan struct{}
	closeOnce   sync.Once
}

// Open connects to the store at url, verifies the connection and migrates the
// record table. Any failure is returned; nothing is retried.
func Open(ctx context.Context, url string, opts Options) (*Store, error) {
	dialector, dialect, err := dialectorFor(url)
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.GormLogger == nil {
		opts.GormLogger = gorm_logger.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = noopRecorder{}
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: opts.GormLogger})
	if err != nil {
		return nil, errors.DatabaseError(fmt.Errorf("failed to open %s database: %w", dialect, err), "datastore", "open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.DatabaseError(err, "datastore", "open")
	}
	if dialect == DialectSQLite {
		// One connection serializes writers and keeps :memory: databases shared.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.DatabaseError(fmt.Errorf("%s database unreachable: %w", dialect, err), "datastore", "ping")
	}

	if err := db.WithContext(ctx).Table(opts.Collection).AutoMigrate(&Record{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.DatabaseError(fmt.Errorf("failed to migrate %s: %w", opts.Collection, err), "datastore", "migrate")
	}

	s := &Store{
		db:         db,
		dialect:    dialect,
		collection: opts.Collection,
		retention:  opts.Retention,
		log:        opts.Logger,
		now:        opts.Now,
		metrics:    opts.Metrics,
	}
	if opts.JanitorInterval > 0 {
		s.startJanitor(opts.JanitorInterval)
	}
	return s, nil
}

// Dialect returns the SQL dialect of the store.
func (s *Store) Dialect() string { return s.dialect }

// Collection returns the table name records are written to.
func (s *Store) Collection() string { return s.collection }

// Insert writes one record. A missing ID is generated and ExpiresAt is derived
// from the record timestamp and the retention period.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	rec.Timestamp = rec.Timestamp.UTC()
	rec.ExpiresAt = rec.Timestamp.Add(s.retention)
	if rec.Meta == "" {
		rec.Meta = "{}"
	}

	start := time.Now()
	err := s.db.WithContext(ctx).Table(s.collection).Create(rec).Error
	s.observe("insert", start, err)
	if err != nil {
		return errors.DatabaseError(err, "datastore", "insert")
	}
	return nil
}

// Query filters records returned by Recent.
type Query struct {
	Levels []string  // upper-case level names; empty matches all
	Since  time.Time // only records at or after Since
	Limit  int       // DefaultQueryLimit if zero
}

// Recent returns matching records, newest first.
func (s *Store) Recent(ctx context.Context, q Query) ([]Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	tx := s.db.WithContext(ctx).Table(s.collection)
	if len(q.Levels) > 0 {
		tx = tx.Where("level IN ?", q.Levels)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("timestamp >= ?", q.Since.UTC())
	}

	var records []Record
	start := time.Now()
	err := tx.Order("timestamp DESC").Limit(limit).Find(&records).Error
	s.observe("query", start, err)
	if err != nil {
		return nil, errors.DatabaseError(err, "datastore", "query")
	}
	return records, nil
}

// PurgeExpired deletes records whose expiry is at or before now.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	res := s.db.WithContext(ctx).Table(s.collection).
		Where("expires_at <= ?", now.UTC()).
		Delete(&Record{})
	s.observe("purge", start, res.Error)
	if res.Error != nil {
		return 0, errors.DatabaseError(res.Error, "datastore", "purge")
	}
	s.metrics.RecordPurged(res.RowsAffected)
	return res.RowsAffected, nil
}

// observe reports the outcome of one database operation.
func (s *Store) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(operation, status, time.Since(start))
}

// startJanitor purges expired records every interval until Close.
func (s *Store) startJanitor(interval time.Duration) {
	s.stopJanitor = make(chan struct{})
	s.janitorDone = make(chan struct{})

	go func() {
		defer close(s.janitorDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopJanitor:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
				n, err := s.PurgeExpired(ctx, s.now())
				cancel()
				if err != nil {
					s.log.Warn("failed to purge expired log records",
						"collection", s.collection,
						"error", err)
					continue
				}
				if n > 0 {
					s.log.Debug("purged expired log records",
						"collection", s.collection,
						"count", n)
				}
			}
		}
	}()
}

// Close stops the janitor and closes the database connection. It is idempotent.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.stopJanitor != nil {
			close(s.stopJanitor)
			<-s.janitorDone
		}

		sqlDB, dbErr := s.db.DB()
		if dbErr != nil {
			err = errors.DatabaseError(dbErr, "datastore", "close")
			return
		}
		if closeErr := sqlDB.Close(); closeErr != nil {
			err = errors.DatabaseError(closeErr, "datastore", "close")
		}
	})
	return err
}
