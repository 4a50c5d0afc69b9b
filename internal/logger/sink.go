package logger

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tphakala/applog/internal/datastore"
)

// Sink is the transport collaborator of one destination. It applies the
// destination's formatter and hands the result to the underlying writer.
// Deliver is called from a single queue goroutine.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
	Flush() error
	Close() error
}

// consoleSink writes FormatConsole output to an io.Writer.
type consoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{w: w}
}

func (s *consoleSink) Deliver(_ context.Context, ev Event) error {
	line := FormatConsole(ev)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line)
	return err
}

func (s *consoleSink) Flush() error {
	if f, ok := s.w.(interface{ Sync() error }); ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Terminals and pipes reject fsync.
		_ = f.Sync()
	}
	return nil
}

func (s *consoleSink) Close() error { return s.Flush() }

// fileSink appends FormatFile documents to a BufferedFileWriter.
type fileSink struct {
	writer *BufferedFileWriter
}

func (s *fileSink) Deliver(_ context.Context, ev Event) error {
	if _, err := s.writer.Write(FormatFile(ev)); err != nil {
		return fmt.Errorf("write %s: %w", s.writer.FilePath(), err)
	}
	return nil
}

func (s *fileSink) Flush() error { return s.writer.Flush() }

func (s *fileSink) Close() error { return s.writer.Close() }

// storeSink inserts events into the datastore as structured records.
type storeSink struct {
	store *datastore.Store
}

func (s *storeSink) Deliver(ctx context.Context, ev Event) error {
	return s.store.Insert(ctx, recordFromEvent(ev))
}

func (s *storeSink) Flush() error { return nil }

func (s *storeSink) Close() error { return s.store.Close() }

// recordFromEvent maps an event onto a datastore record. Metadata goes through
// the same normalization as the file destination and is stored as compact JSON.
func recordFromEvent(ev Event) *datastore.Record {
	meta, err := marshalNoEscape(Normalize(ev.Meta))
	if err != nil {
		meta, _ = marshalNoEscape(Metadata{String("format_error", err.Error())})
	}
	return &datastore.Record{
		Level:     toUpper(ev.Severity.String()),
		Message:   ev.Message,
		Timestamp: ev.Time.UTC(),
		Meta:      string(meta),
	}
}
