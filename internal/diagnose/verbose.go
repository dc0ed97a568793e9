package diagnose

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Verbose output formatting constants.
const (
	verbosePrefix          = "[docktor]"
	verboseBlockMaxLines   = 8
	verboseTruncationLabel = "... [truncated]"
)

var isTerminal = term.IsTerminal

// Options configures per-run progress output.
type Options struct {
	Verbose bool
	Writer  io.Writer
	NoColor bool
}

// lineStyle selects how a verbose line is styled.
type lineStyle int

const (
	styleDefault lineStyle = iota
	styleTask
	styleOutput
	styleToolCall
	styleToolResult
	styleError
)

const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiCyan    = "\x1b[36m"
	ansiMagenta = "\x1b[35m"
)

// logf emits one styled progress line when verbosity is enabled.
func (o *Orchestrator) logf(style lineStyle, format string, args ...any) {
	if !o.Options.Verbose || o.Options.Writer == nil {
		return
	}
	palette := paletteFor(o.Options.Writer, o.Options.NoColor)
	fmt.Fprintf(o.Options.Writer, "%s %s\n", verbosePrefix, palette.apply(style, fmt.Sprintf(format, args...)))
}

// logBlock emits a header line and a truncated multi-line body.
func (o *Orchestrator) logBlock(style lineStyle, header, body string) {
	if !o.Options.Verbose || o.Options.Writer == nil {
		return
	}
	o.logf(style, "%s", header)
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) > verboseBlockMaxLines {
		lines = append(lines[:verboseBlockMaxLines], verboseTruncationLabel)
	}
	for _, line := range lines {
		fmt.Fprintf(o.Options.Writer, "%s   %s\n", verbosePrefix, line)
	}
}

// palette controls ANSI styling for verbose output.
type palette struct {
	enabled bool
}

// paletteFor selects a palette based on the writer and color settings.
func paletteFor(writer io.Writer, noColor bool) palette {
	if noColor {
		return palette{enabled: false}
	}
	return palette{enabled: shouldUseStyling(writer)}
}

// shouldUseStyling reports whether ANSI styling should be enabled.
func shouldUseStyling(writer io.Writer) bool {
	if writer == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if file, ok := writer.(*os.File); ok {
		return isTerminal(int(file.Fd()))
	}
	if fder, ok := writer.(interface{ Fd() uintptr }); ok {
		return isTerminal(int(fder.Fd()))
	}
	return false
}

// apply wraps text with ANSI codes for the requested style.
func (p palette) apply(style lineStyle, text string) string {
	if !p.enabled {
		return text
	}
	switch style {
	case styleTask:
		return ansiBold + ansiCyan + text + ansiReset
	case styleOutput:
		return ansiBold + ansiMagenta + text + ansiReset
	case styleToolCall:
		return ansiBold + ansiYellow + text + ansiReset
	case styleToolResult:
		return ansiBold + ansiGreen + text + ansiReset
	case styleError:
		return ansiBold + ansiRed + text + ansiReset
	default:
		return text
	}
}
