package config

const (
	defaultConfigPath = "~/.config/subsplice/config.toml"
	defaultWorkDir    = "~/.local/share/subsplice/work"
	defaultOutputDir  = "~/.local/share/subsplice/output"
	defaultLogDir     = "~/.local/share/subsplice/logs"

	defaultStrategy   = StrategyGap
	defaultSimilarity = SimilaritySequence
	defaultMergeGap   = 0.5

	defaultCumulativeThreshold      = 0.5
	defaultCumulativeMatchThreshold = 0.3
	defaultCumulativeWindowRadius   = 5
	defaultRemapMatchThreshold      = 0.3
	defaultGapMatchThreshold        = 0.3
	defaultGapWindowRadius          = 20
	defaultAlignMatchThreshold      = 0.4
	defaultAlignTextFloor           = 0.3
	defaultAlignTextWeight          = 0.7
	defaultAlignWindowRadius        = 10
	defaultOverlapMinOverlap        = 0.3
	defaultOverlapMergeGap          = 2.0
	defaultCompactMatchThreshold    = 0.3
	defaultCompactMaxTimeDiff       = 10.0
	defaultCompactTimeWeight        = 0.7

	defaultExtractionMode  = ModeCopy
	defaultWorkers         = 1
	defaultSegmentTimeout  = 300
	defaultConcatTimeout   = 600
	defaultProbeTimeout    = 30
	defaultMinSegmentBytes = 1000
	defaultContainer       = "mp4"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultStaleWorkHours = 24
)

// Strategy names accepted by planner.strategy.
const (
	StrategyCumulative = "cumulative"
	StrategyRemap      = "remap"
	StrategyGap        = "gap"
	StrategyAlign      = "align"
	StrategyOverlap    = "overlap"
	StrategyCompact    = "compact"
)

// Similarity metrics accepted by planner.similarity.
const (
	SimilaritySequence = "sequence"
	SimilarityToken    = "token"
)

// Extraction modes accepted by extraction.mode.
const (
	ModeCopy     = "copy"
	ModeReencode = "reencode"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Planner: Planner{
			Strategy:   defaultStrategy,
			Similarity: defaultSimilarity,
			MergeGap:   defaultMergeGap,
			Cumulative: Cumulative{
				Threshold:      defaultCumulativeThreshold,
				MatchThreshold: defaultCumulativeMatchThreshold,
				WindowRadius:   defaultCumulativeWindowRadius,
			},
			Remap: Remap{
				MatchThreshold: defaultRemapMatchThreshold,
			},
			Gap: Gap{
				MatchThreshold: defaultGapMatchThreshold,
				WindowRadius:   defaultGapWindowRadius,
			},
			Align: Align{
				MatchThreshold: defaultAlignMatchThreshold,
				TextFloor:      defaultAlignTextFloor,
				TextWeight:     defaultAlignTextWeight,
				WindowRadius:   defaultAlignWindowRadius,
			},
			Overlap: Overlap{
				MinOverlap: defaultOverlapMinOverlap,
				MergeGap:   defaultOverlapMergeGap,
			},
			Compact: Compact{
				MatchThreshold: defaultCompactMatchThreshold,
				MaxTimeDiff:    defaultCompactMaxTimeDiff,
				TimeWeight:     defaultCompactTimeWeight,
			},
		},
		Extraction: Extraction{
			Mode:            defaultExtractionMode,
			Workers:         defaultWorkers,
			SegmentTimeout:  defaultSegmentTimeout,
			ConcatTimeout:   defaultConcatTimeout,
			ProbeTimeout:    defaultProbeTimeout,
			MinSegmentBytes: defaultMinSegmentBytes,
			Container:       defaultContainer,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Jobs: Jobs{
			Enabled:        true,
			StaleWorkHours: defaultStaleWorkHours,
		},
	}
}
