// Package query implements the query command, which lists recent records from
// the log store.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/applog/internal/app"
	"github.com/tphakala/applog/internal/datastore"
	"github.com/tphakala/applog/internal/logger"
)

type options struct {
	levels []string
	limit  int
	since  time.Duration
	json   bool
}

// Command creates the query command.
func Command(ctx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List recent records from the log store, newest first",
		Example: `  applog query --level error --since 1h
  applog query --limit 200 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), ctx, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.levels, "level", "l", nil, "Only these severities, repeatable or comma separated")
	cmd.Flags().IntVar(&opts.limit, "limit", datastore.DefaultQueryLimit, "Maximum number of records")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "Only records newer than this, e.g. 30m")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print one JSON object per line")

	return cmd
}

// BuildQuery converts command options into a store query relative to now.
func BuildQuery(levels []string, limit int, since time.Duration, now time.Time) (datastore.Query, error) {
	q := datastore.Query{Limit: limit}
	for _, name := range levels {
		severity, ok := logger.ParseSeverity(name)
		if !ok {
			return q, fmt.Errorf("unknown level %q", name)
		}
		q.Levels = append(q.Levels, severity.String())
	}
	if since > 0 {
		q.Since = now.Add(-since)
	}
	return q, nil
}

func run(cmdCtx context.Context, ctx *app.Context, opts *options) error {
	q, err := BuildQuery(opts.levels, opts.limit, opts.since, time.Now())
	if err != nil {
		return err
	}

	store, err := ctx.OpenStore(cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(cmdCtx, q)
	if err != nil {
		return err
	}

	if opts.json {
		return printJSON(ctx.Stdout, records)
	}
	return printConsole(ctx.Stdout, records)
}

// jsonRecord is the --json output shape; it matches the file destination's
// document with the store id added.
type jsonRecord struct {
	ID        string          `json:"id"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	Meta      json.RawMessage `json:"meta"`
}

func printJSON(w io.Writer, records []datastore.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		rec := &records[i]
		if err := enc.Encode(jsonRecord{
			ID:        rec.ID,
			Level:     rec.Level,
			Message:   rec.Message,
			Timestamp: rec.Timestamp.UTC().Format(logger.TimestampLayout),
			Meta:      json.RawMessage(rec.Meta),
		}); err != nil {
			return err
		}
	}
	return nil
}

func printConsole(w io.Writer, records []datastore.Record) error {
	for i := range records {
		rec := &records[i]
		meta, err := rec.MetaMap()
		if err != nil {
			return err
		}
		severity, _ := logger.ParseSeverity(rec.Level)
		ev := logger.Event{
			Severity: severity,
			Message:  rec.Message,
			Time:     rec.Timestamp,
			Meta:     logger.FieldsFromMap(meta),
		}
		if _, err := io.WriteString(w, logger.FormatConsole(ev)); err != nil {
			return err
		}
	}
	return nil
}
