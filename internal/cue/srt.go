package cue

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadOptions controls how subtitle files are read.
type LoadOptions struct {
	// Encoding forces a charset (any WHATWG label, e.g. "gbk", "utf-16le").
	// Empty means detect.
	Encoding string
}

// LoadResult is a parsed subtitle file.
type LoadResult struct {
	Path     string
	Encoding string
	Track    Track
	// Issues lists blocks that were skipped, one human-readable line each.
	Issues []string
}

// Load reads and parses an SRT file.
func Load(path string, opts LoadOptions) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read srt: %w", err)
	}
	text, enc, err := Decode(data, opts.Encoding)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%s: %w", path, err)
	}
	track, issues := ParseSRT(text)
	return LoadResult{Path: path, Encoding: enc, Track: track, Issues: issues}, nil
}

// ParseSRT parses SRT text into a track. Blocks that cannot be parsed, or
// whose end does not follow their start, are skipped and reported in the
// returned issue list. Cues without a numeric counter line get their
// 1-based block position as index.
func ParseSRT(content string) (Track, []string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var (
		track  Track
		issues []string
	)
	blocks := splitBlocks(content)
	for pos, block := range blocks {
		c, err := parseBlock(block.lines, pos+1)
		if err != nil {
			issues = append(issues, fmt.Sprintf("line %d: %v", block.line, err))
			continue
		}
		if !c.Valid() {
			issues = append(issues, fmt.Sprintf("line %d: cue %d has non-positive duration", block.line, c.Index))
			continue
		}
		track = append(track, c)
	}
	if !track.Ordered() {
		issues = append(issues, "cue start times are not in ascending order")
	}
	return track, issues
}

type srtBlock struct {
	line  int
	lines []string
}

func splitBlocks(content string) []srtBlock {
	var (
		blocks  []srtBlock
		current *srtBlock
	)
	for i, raw := range strings.Split(content, "\n") {
		if strings.TrimSpace(raw) == "" {
			current = nil
			continue
		}
		if current == nil {
			blocks = append(blocks, srtBlock{line: i + 1})
			current = &blocks[len(blocks)-1]
		}
		current.lines = append(current.lines, strings.TrimRight(raw, " \t"))
	}
	return blocks
}

func parseBlock(lines []string, position int) (Cue, error) {
	index := position
	timing := 0
	if !strings.Contains(lines[0], "-->") {
		n, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return Cue{}, fmt.Errorf("expected cue counter, got %q", lines[0])
		}
		if len(lines) < 2 {
			return Cue{}, fmt.Errorf("cue %d has no timing line", n)
		}
		index = n
		timing = 1
	}
	start, end, err := parseTiming(lines[timing])
	if err != nil {
		return Cue{}, err
	}
	return Cue{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[timing+1:], "\n"),
	}, nil
}

func parseTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Anything after the end stamp is positioning data.
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	end, err := ParseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp converts "HH:MM:SS,mmm" (a period separator is accepted too)
// to seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	hms := strings.Split(strings.ReplaceAll(value, ",", "."), ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.ParseFloat(hms[2], 64)
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := float64(hours*3600+minutes*60) + seconds
	return math.Round(total*1000) / 1000, nil
}

// FormatTimestamp renders seconds as an SRT timestamp.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatSRT renders a track as SRT text.
func FormatSRT(track Track) string {
	var sb strings.Builder
	for i, c := range track {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", c.Index, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text)
	}
	return sb.String()
}

// WriteSRT writes a track to path as UTF-8 SRT.
func WriteSRT(path string, track Track) error {
	if err := os.WriteFile(path, []byte(FormatSRT(track)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}
