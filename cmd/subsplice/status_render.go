package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"subsplice/internal/preflight"
	"subsplice/internal/queue"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

type statusStyle struct {
	tag   string
	color string
}

var statusStyles = map[statusKind]statusStyle{
	statusInfo:  {tag: "INFO", color: ansiBlue},
	statusOK:    {tag: "OK", color: ansiGreen},
	statusWarn:  {tag: "WARN", color: ansiYellow},
	statusError: {tag: "ERROR", color: ansiRed},
}

func styleFor(kind statusKind) statusStyle {
	if style, ok := statusStyles[kind]; ok {
		return style
	}
	return statusStyles[statusInfo]
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

// renderStatusLine prints "  label:   [TAG] message" with the label column
// padded so doctor output lines up.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := styleFor(kind)
	var b strings.Builder
	b.WriteString(statusIndent)
	fmt.Fprintf(&b, "%-*s ", statusLabelWidth, label+":")
	b.WriteString("[" + style.tag + "]")
	if message != "" {
		b.WriteString(" " + message)
	}
	return paint(b.String(), style.color, colorize)
}

func renderCheck(r preflight.Result, colorize bool) string {
	if r.Passed {
		return renderStatusLine(r.Name, statusOK, r.Detail, colorize)
	}
	return renderStatusLine(r.Name, statusError, r.Detail, colorize)
}

func jobStatusKind(status queue.Status) statusKind {
	switch {
	case status == queue.StatusCompleted:
		return statusOK
	case status == queue.StatusFailed:
		return statusError
	case status == queue.StatusQueued:
		return statusInfo
	default:
		// planning, extracting, assembling
		return statusWarn
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	underline := strings.Repeat("-", len(heading))
	return []string{
		paint(heading, ansiBlue, colorize),
		paint(underline, ansiBlue, colorize),
	}
}

// shouldColorize is true for terminals unless NO_COLOR is set.
func shouldColorize(w io.Writer) bool {
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
