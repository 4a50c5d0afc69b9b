package logger

import (
	"context"
	"log/slog"
	"slices"
)

// slogHandler routes log/slog records into a Logger, so libraries that log
// through slog reach the same destinations.
type slogHandler struct {
	logger Logger
	attrs  []Field     // WithAttrs attributes outside any group
	groups []openGroup // outermost first
}

// openGroup is a WithGroup name and the attributes added while it was innermost.
type openGroup struct {
	name  string
	attrs []Field
}

// NewSlogHandler returns a slog.Handler that forwards records to l.
//
//	slog.SetDefault(slog.New(logger.NewSlogHandler(cl.Module("http"))))
func NewSlogHandler(l Logger) slog.Handler {
	return &slogHandler{logger: l}
}

// Enabled reports whether any destination could admit the level. Filtering is
// done per destination, so only levels below DEBUG are rejected here.
func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h != nil && h.logger != nil && level >= slog.LevelDebug
}

// Handle converts the record attributes to fields and logs the message.
//
//nolint:gocritic // slog.Handler interface requires record by value, not pointer
func (h *slogHandler) Handle(_ context.Context, record slog.Record) error {
	if h == nil || h.logger == nil {
		return nil
	}

	fields := make([]Field, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, a)
		return true
	})

	h.logger.Log(Severity(record.Level), record.Message, h.nest(fields)...)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if h == nil {
		return nil
	}
	fields := make([]Field, 0, len(attrs))
	for _, a := range attrs {
		fields = appendAttr(fields, a)
	}

	c := h.clone()
	if n := len(c.groups); n > 0 {
		c.groups[n-1].attrs = slices.Concat(c.groups[n-1].attrs, fields)
	} else {
		c.attrs = slices.Concat(c.attrs, fields)
	}
	return c
}

// WithGroup returns a handler that nests later attributes under name.
func (h *slogHandler) WithGroup(name string) slog.Handler {
	if h == nil {
		return nil
	}
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(c.groups, openGroup{name: name})
	return c
}

func (h *slogHandler) clone() *slogHandler {
	return &slogHandler{
		logger: h.logger,
		attrs:  slices.Clone(h.attrs),
		groups: slices.Clone(h.groups),
	}
}

// nest places record fields in the innermost open group and wraps outward.
// Groups left without fields are omitted.
func (h *slogHandler) nest(fields []Field) []Field {
	for i := len(h.groups) - 1; i >= 0; i-- {
		g := h.groups[i]
		inner := slices.Concat(g.attrs, fields)
		fields = nil
		if len(inner) > 0 {
			fields = []Field{Group(g.name, inner...)}
		}
	}
	return slices.Concat(h.attrs, fields)
}

// appendAttr converts a slog attribute and appends it to fields. Empty
// attributes are dropped and groups with an empty key are inlined, as the
// slog.Handler contract requires.
func appendAttr(fields []Field, a slog.Attr) []Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	v := a.Value
	switch v.Kind() {
	case slog.KindString:
		return append(fields, String(a.Key, v.String()))
	case slog.KindInt64:
		return append(fields, Int64(a.Key, v.Int64()))
	case slog.KindUint64:
		return append(fields, Uint64(a.Key, v.Uint64()))
	case slog.KindFloat64:
		return append(fields, Float64(a.Key, v.Float64()))
	case slog.KindBool:
		return append(fields, Bool(a.Key, v.Bool()))
	case slog.KindTime:
		return append(fields, Time(a.Key, v.Time()))
	case slog.KindDuration:
		return append(fields, Duration(a.Key, v.Duration()))
	case slog.KindGroup:
		var group []Field
		for _, ga := range v.Group() {
			group = appendAttr(group, ga)
		}
		if len(group) == 0 {
			return fields
		}
		if a.Key == "" {
			return append(fields, group...)
		}
		return append(fields, Group(a.Key, group...))
	default:
		return append(fields, Any(a.Key, v.Any()))
	}
}

var _ slog.Handler = (*slogHandler)(nil)
