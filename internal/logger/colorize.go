package logger

import (
	"github.com/fatih/color"
)

// Console decorations. Colors are force-enabled so the rendering does not depend
// on whether stdout is a terminal; the console destination is only ever active
// in development.
var (
	colorError     = newForcedColor(color.FgRed)
	colorInfo      = newForcedColor(color.FgBlue)
	colorWarn      = newForcedColor(color.FgYellow)
	colorTimestamp = newForcedColor(color.FgGreen)
	colorMetaLabel = newForcedColor(color.FgMagenta)
)

func newForcedColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

// Colorize returns the terminal-decorated form of a severity name. The name is
// upper-cased before lookup: ERROR is red, INFO blue, WARN yellow. Any other
// input is returned unchanged.
func Colorize(level string) string {
	upper := toUpper(level)
	switch upper {
	case "ERROR":
		return colorError.Sprint(upper)
	case "INFO":
		return colorInfo.Sprint(upper)
	case "WARN":
		return colorWarn.Sprint(upper)
	default:
		return level
	}
}
