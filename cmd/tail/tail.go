// Package tail implements the tail command, which prints the newest events of
// the environment's log file in console format.
package tail

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tphakala/applog/internal/app"
	"github.com/tphakala/applog/internal/errors"
	"github.com/tphakala/applog/internal/logger"
)

type options struct {
	lines int
	level string
}

// Command creates the tail command.
func Command(ctx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the newest events of the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 20, "Number of events to print, 0 prints all")
	cmd.Flags().StringVarP(&opts.level, "level", "l", "debug", "Minimum severity to print")

	return cmd
}

func run(ctx *app.Context, opts *options) error {
	minSeverity, ok := logger.ParseSeverity(opts.level)
	if !ok {
		return fmt.Errorf("unknown level %q", opts.level)
	}

	path := ctx.LogFilePath()
	f, err := ctx.Fs.Open(path)
	if err != nil {
		return errors.FileError(err, "tail", path)
	}
	defer func() { _ = f.Close() }()

	records, err := logger.DecodeFileRecords(f)
	if err != nil {
		return errors.New(err).
			Component("tail").
			Category(errors.CategoryFormatting).
			Context("path", path).
			Build()
	}

	events := make([]logger.Event, 0, len(records))
	for _, rec := range records {
		ev, err := rec.Event()
		if err != nil {
			return errors.New(err).
				Component("tail").
				Category(errors.CategoryFormatting).
				Context("path", path).
				Build()
		}
		if ev.Severity >= minSeverity {
			events = append(events, ev)
		}
	}

	if opts.lines > 0 && len(events) > opts.lines {
		events = events[len(events)-opts.lines:]
	}
	return printEvents(ctx.Stdout, events)
}

func printEvents(w io.Writer, events []logger.Event) error {
	for _, ev := range events {
		if _, err := io.WriteString(w, logger.FormatConsole(ev)); err != nil {
			return err
		}
	}
	return nil
}
