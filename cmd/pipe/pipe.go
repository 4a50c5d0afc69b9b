// Package pipe implements the pipe command, which ships lines read from stdin
// as log events until EOF or a termination signal.
package pipe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/antonholmquist/jason"
	"github.com/spf13/cobra"

	"github.com/tphakala/applog/internal/app"
	"github.com/tphakala/applog/internal/logger"
	"github.com/tphakala/applog/internal/observability"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

type options struct {
	level  string
	module string
	json   bool
	listen string
}

// Command creates the pipe command.
func Command(ctx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Log every line read from stdin",
		Long: `Log every line read from stdin until EOF or SIGINT/SIGTERM.

With --json each line is parsed as an object: "level" and "message" (or "msg")
set the severity and message, every other key becomes metadata. Lines that are
not JSON objects are logged as plain messages.`,
		Example: `  tail -F /var/log/app/stdout | applog pipe --module app
  ./service 2>&1 | applog pipe --json --metrics-listen 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(sctx, ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.level, "level", "l", "info", "Severity of plain lines")
	cmd.Flags().StringVar(&opts.module, "module", "", "Module name recorded with every event")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Parse lines as JSON objects")
	cmd.Flags().StringVar(&opts.listen, "metrics-listen", "", "Serve Prometheus metrics on this address while running")

	return cmd
}

func run(runCtx context.Context, ctx *app.Context, opts *options) (err error) {
	severity, ok := logger.ParseSeverity(opts.level)
	if !ok {
		return fmt.Errorf("unknown level %q", opts.level)
	}

	cl, err := ctx.OpenLogger()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cl.Close(); err == nil {
			err = cerr
		}
	}()

	var log logger.Logger = cl
	if opts.module != "" {
		log = cl.Module(opts.module)
	}

	listen := opts.listen
	if listen == "" {
		listen = ctx.Settings.Metrics.Listen
	}
	var wg sync.WaitGroup
	serveCtx, stopServing := context.WithCancel(runCtx)
	defer func() {
		stopServing()
		wg.Wait()
	}()
	if listen != "" {
		if err := startMetrics(serveCtx, &wg, ctx, listen, log); err != nil {
			return err
		}
	}

	return pump(runCtx, log, severity, ctx.Stdin, opts.json)
}

// pump logs lines from r until EOF or cancellation.
func pump(ctx context.Context, log logger.Logger, severity logger.Severity, r io.Reader, parseJSON bool) error {
	lines := readLines(ctx, r)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line.err != nil {
				return fmt.Errorf("failed to read input: %w", line.err)
			}
			logLine(log, severity, line.text, parseJSON)
		}
	}
}

func startMetrics(ctx context.Context, wg *sync.WaitGroup, appCtx *app.Context, listen string, log logger.Logger) error {
	m, err := appCtx.Metrics()
	if err != nil {
		return err
	}
	endpoint, err := observability.NewEndpoint(listen, m, log)
	if err != nil {
		return err
	}
	return endpoint.Start(ctx, wg)
}

type inputLine struct {
	text string
	err  error
}

// readLines scans r in a goroutine. The channel is closed after EOF, a read
// error (sent as the last item) or cancellation of ctx.
func readLines(ctx context.Context, r io.Reader) <-chan inputLine {
	out := make(chan inputLine)
	go func() {
		defer close(out)
		send := func(l inputLine) bool {
			select {
			case out <- l:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			if !send(inputLine{text: scanner.Text()}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()
	return out
}

// logLine logs one input line. Blank lines are skipped.
func logLine(log logger.Logger, severity logger.Severity, text string, parseJSON bool) {
	text = strings.TrimRight(text, "\r")
	if strings.TrimSpace(text) == "" {
		return
	}
	if parseJSON {
		if sev, msg, fields, ok := ParseJSONLine(text, severity); ok {
			log.Log(sev, msg, fields...)
			return
		}
	}
	log.Log(severity, text)
}

// ParseJSONLine extracts severity, message and metadata from a JSON object.
// ok is false when text is not a JSON object.
func ParseJSONLine(text string, fallback logger.Severity) (severity logger.Severity, msg string, fields []logger.Field, ok bool) {
	obj, err := jason.NewObjectFromBytes([]byte(text))
	if err != nil {
		return fallback, "", nil, false
	}

	severity = fallback
	if level, err := obj.GetString("level"); err == nil {
		if s, known := logger.ParseSeverity(level); known {
			severity = s
		}
	}

	meta := obj.Map()
	for _, key := range []string{"message", "msg"} {
		if m, err := obj.GetString(key); err == nil {
			msg = m
			delete(meta, key)
			break
		}
	}
	delete(meta, "level")

	raw := make(map[string]any, len(meta))
	for k, v := range meta {
		raw[k] = v.Interface()
	}
	return severity, msg, logger.FieldsFromMap(raw), true
}
