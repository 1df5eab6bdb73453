package planner

import (
	"fmt"
	"strings"

	"subsplice/internal/config"
)

// Strategy selects how matches become segments.
type Strategy string

const (
	StrategyCumulative Strategy = config.StrategyCumulative
	StrategyRemap      Strategy = config.StrategyRemap
	StrategyGap        Strategy = config.StrategyGap
	StrategyAlign      Strategy = config.StrategyAlign
	StrategyOverlap    Strategy = config.StrategyOverlap
	StrategyCompact    Strategy = config.StrategyCompact
)

var allStrategies = []Strategy{
	StrategyCumulative,
	StrategyRemap,
	StrategyGap,
	StrategyAlign,
	StrategyOverlap,
	StrategyCompact,
}

// Strategies returns every supported strategy in display order.
func Strategies() []Strategy {
	out := make([]Strategy, len(allStrategies))
	copy(out, allStrategies)
	return out
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	normalized := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range allStrategies {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", name)
}

// RetimesTarget reports whether the strategy places segments on the new
// track's timeline rather than preserving original pacing.
func (s Strategy) RetimesTarget() bool {
	return s == StrategyCumulative || s == StrategyRemap
}

// Description returns a one-line summary for CLI help and reports.
func (s Strategy) Description() string {
	switch s {
	case StrategyCumulative:
		return "shift original intervals by start-time drift beyond a threshold"
	case StrategyRemap:
		return "global text match; segment length follows the new cue"
	case StrategyGap:
		return "windowed text match; keep original intervals verbatim"
	case StrategyAlign:
		return "text and duration blend with a forward-only anchor"
	case StrategyOverlap:
		return "pair cues by time overlap and merge nearby segments"
	case StrategyCompact:
		return "start-time proximity after the running duration offset; keep original intervals"
	default:
		return ""
	}
}
