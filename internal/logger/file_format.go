package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// fileIndent keeps log files diffable by humans.
const fileIndent = "    "

// fileDocument is the JSON shape written to the file destination.
type fileDocument struct {
	Level     string   `json:"level"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
	Meta      Metadata `json:"meta"`
}

// FormatFile renders one event as an indented JSON document terminated by a
// newline. Top-level error values in the metadata are normalized. The output
// depends only on the event.
func FormatFile(ev Event) []byte {
	doc := fileDocument{
		Level:     toUpper(ev.Severity.String()),
		Message:   ev.Message,
		Timestamp: ev.Timestamp(),
		Meta:      Normalize(ev.Meta),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", fileIndent)
	if err := enc.Encode(doc); err != nil {
		// Metadata marshaling never fails, so this only guards against
		// future changes to fileDocument.
		buf.Reset()
		fallback := fileDocument{
			Level:     doc.Level,
			Message:   doc.Message,
			Timestamp: doc.Timestamp,
			Meta:      Metadata{String("format_error", err.Error())},
		}
		_ = enc.Encode(fallback)
	}
	return buf.Bytes()
}

// FileRecord is one document read back from a log file.
type FileRecord struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Meta      map[string]any `json:"meta"`
}

// DecodeFileRecords reads the whitespace-separated sequence of JSON documents
// written by the file destination.
func DecodeFileRecords(r io.Reader) ([]FileRecord, error) {
	dec := json.NewDecoder(r)
	var records []FileRecord
	for {
		var rec FileRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("decode log record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}
