package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// consoleHandler writes a one-line header per record followed by indented
// fields. Component, job, run and stage attributes are folded into the
// header so the body only carries what is specific to the line.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	preset    []field
	prefix    string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, attr)
		return true
	})
	fields = lastWins(fields)

	var component, jobID, runID, stage string
	body := fields[:0:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = renderValue(f.value, false)
		case FieldJobID:
			jobID = renderValue(f.value, false)
		case FieldRunID:
			runID = renderValue(f.value, false)
		case FieldStage:
			stage = renderValue(f.value, false)
		default:
			body = append(body, f)
		}
	}

	var b strings.Builder
	b.WriteString(consoleTime(record.Time))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if component != "" {
		b.WriteString(" [" + component + "]")
	}
	if subject := subjectLabel(jobID, runID, stage); subject != "" {
		b.WriteString(" " + subject)
	}
	b.WriteString(" - ")
	if msg := strings.TrimSpace(record.Message); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			b.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	b.WriteByte('\n')
	for _, f := range body {
		b.WriteString("    " + f.key + ": " + renderValue(f.value, true) + "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// subjectLabel names what a line is about. Job ids win over run ids since
// runs without job history are the only ones lacking a job.
func subjectLabel(jobID, runID, stage string) string {
	var who string
	switch {
	case jobID != "":
		who = "Job #" + jobID
	case runID != "":
		who = "Run " + shortRunID(runID)
	}
	switch {
	case who != "" && stage != "":
		return who + " (" + stage + ")"
	case who != "":
		return who
	default:
		return stage
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		next.preset = appendAttr(next.preset, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(dst []field, prefix string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = prefix + attr.Key + "."
		}
		for _, a := range attr.Value.Group() {
			dst = appendAttr(dst, inner, a)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	return append(dst, field{key: prefix + attr.Key, value: attr.Value})
}

// lastWins keeps the first position of each key with its last value.
func lastWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
