// Package emit implements the emit command, which logs a single event.
package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tphakala/applog/internal/app"
	"github.com/tphakala/applog/internal/logger"
)

type options struct {
	level   string
	message string
	meta    []string
	errMsg  string
	module  string
}

// Command creates the emit command.
func Command(ctx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Log one event to every active destination",
		Example: `  applog emit -l error -m "payment failed" --meta order_id=o-123 --meta amount=19.99 --error "card declined"
  applog emit -m "cache warmed" --module cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, opts)
		},
	}

	setupFlags(cmd, opts)
	return cmd
}

func setupFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.level, "level", "l", "info", "Severity: debug, info, warn, error")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Event message")
	cmd.Flags().StringArrayVar(&opts.meta, "meta", nil, "Metadata as key=value, repeatable")
	cmd.Flags().StringVar(&opts.errMsg, "error", "", "Attach an error with this message and a stack trace")
	cmd.Flags().StringVar(&opts.module, "module", "", "Module name recorded with the event")
	_ = cmd.MarkFlagRequired("message")
}

func run(ctx *app.Context, opts *options) error {
	severity, ok := logger.ParseSeverity(opts.level)
	if !ok {
		return fmt.Errorf("unknown level %q", opts.level)
	}

	fields, err := ParseMeta(opts.meta)
	if err != nil {
		return err
	}
	if opts.errMsg != "" {
		fields = append(fields, logger.Err(pkgerrors.New(opts.errMsg)))
	}

	cl, err := ctx.OpenLogger()
	if err != nil {
		return err
	}

	var log logger.Logger = cl
	if opts.module != "" {
		log = cl.Module(opts.module)
	}
	log.Log(severity, opts.message, fields...)

	return cl.Close()
}

// ParseMeta converts key=value pairs into fields. Values that parse as
// integers, finite floats or true/false keep that type; everything else is a string.
func ParseMeta(pairs []string) ([]logger.Field, error) {
	fields := make([]logger.Field, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		fields = append(fields, typedField(key, value))
	}
	return fields, nil
}

func typedField(key, value string) logger.Field {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return logger.Int64(key, n)
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return logger.Float64(key, f)
	}
	switch strings.ToLower(value) {
	case "true":
		return logger.Bool(key, true)
	case "false":
		return logger.Bool(key, false)
	}
	return logger.String(key, value)
}
