package logger

import (
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// inspectIndent is the per-depth indentation of console metadata.
const inspectIndent = "  "

// spewConfig renders arbitrary Go values shown on the console. Pointer addresses
// are hidden and map keys sorted so the output is stable. MaxDepth stops
// self-referencing maps and slices, which spew does not track.
var spewConfig = spew.ConfigState{
	Indent:                  inspectIndent,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                maxAnyDepth,
}

// FormatConsole renders one event for an interactive terminal:
//
//	<SEVERITY> [<timestamp>] <message>
//	META <metadata>
//
// Severity, timestamp and the META label are colorized. Metadata is rendered to
// full depth. Error values are shown raw with their stack trace, not normalized.
func FormatConsole(ev Event) string {
	var b strings.Builder
	b.WriteString(Colorize(ev.Severity.String()))
	b.WriteString(" [")
	b.WriteString(colorTimestamp.Sprint(ev.Timestamp()))
	b.WriteString("] ")
	b.WriteString(ev.Message)
	b.WriteByte('\n')
	b.WriteString(colorMetaLabel.Sprint("META"))
	b.WriteByte(' ')
	inspectGroup(&b, ev.Meta, 0)
	b.WriteByte('\n')
	return b.String()
}

func inspectGroup(b *strings.Builder, m Metadata, depth int) {
	m = m.dedupe()
	if len(m) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{\n")
	for i, f := range m {
		writeIndent(b, depth+1)
		b.WriteString(f.Key)
		b.WriteString(": ")
		inspectValue(b, f.Value, depth+1)
		if i < len(m)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	writeIndent(b, depth)
	b.WriteByte('}')
}

func inspectValue(b *strings.Builder, v Value, depth int) {
	switch v.Kind() {
	case KindString:
		b.WriteString(strconv.Quote(v.Str()))
	case KindInt64:
		b.WriteString(strconv.FormatInt(v.Int64(), 10))
	case KindUint64:
		b.WriteString(strconv.FormatUint(v.Uint64(), 10))
	case KindFloat64:
		b.WriteString(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case KindTime:
		b.WriteString(v.Time().Format(time.RFC3339Nano))
	case KindDuration:
		b.WriteString(v.Duration().String())
	case KindGroup:
		inspectGroup(b, v.Group(), depth)
	case KindError:
		inspectError(b, v.Err(), depth)
	default:
		if v.Any() == nil {
			b.WriteString("null")
			return
		}
		writeIndented(b, strings.TrimRight(spewConfig.Sdump(v.Any()), "\n"), depth)
	}
}

// inspectError renders an error as [Name: message] followed by its stack trace.
func inspectError(b *strings.Builder, err error, depth int) {
	if err == nil {
		b.WriteString("null")
		return
	}
	b.WriteByte('[')
	b.WriteString(errorName(err))
	b.WriteString(": ")
	b.WriteString(errorMessage(err))
	b.WriteByte(']')
	if trace := errorTrace(err); trace != "" {
		b.WriteByte('\n')
		writeIndent(b, depth+1)
		writeIndented(b, trace, depth+1)
	}
}

// writeIndented writes a multi-line string, indenting continuation lines to depth.
func writeIndented(b *strings.Builder, s string, depth int) {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
			writeIndent(b, depth)
		}
		b.WriteString(line)
	}
}

func writeIndent(b *strings.Builder, depth int) {
	for range depth {
		b.WriteString(inspectIndent)
	}
}
