package main

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"subsplice/internal/cue"
)

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func formatSigned(v float64) string {
	return fmt.Sprintf("%+.3f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// formatClock renders seconds as an SRT-style timestamp.
func formatClock(v float64) string {
	return cue.FormatTimestamp(v)
}

func formatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "0s"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Millisecond).String()
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(n))
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
