package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlanner()
	c.normalizeExtraction()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePlanner() {
	c.Planner.Strategy = strings.ToLower(strings.TrimSpace(c.Planner.Strategy))
	if c.Planner.Strategy == "" {
		c.Planner.Strategy = defaultStrategy
	}
	c.Planner.Similarity = strings.ToLower(strings.TrimSpace(c.Planner.Similarity))
	if c.Planner.Similarity == "" {
		c.Planner.Similarity = defaultSimilarity
	}
}

func (c *Config) normalizeExtraction() {
	c.Extraction.Mode = strings.ToLower(strings.TrimSpace(c.Extraction.Mode))
	switch c.Extraction.Mode {
	case "":
		c.Extraction.Mode = defaultExtractionMode
	case "stream-copy", "streamcopy":
		c.Extraction.Mode = ModeCopy
	case "re-encode", "encode":
		c.Extraction.Mode = ModeReencode
	}
	if c.Extraction.Workers == 0 {
		c.Extraction.Workers = defaultWorkers
	}
	c.Extraction.Container = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Extraction.Container)), ".")
	if c.Extraction.Container == "" {
		c.Extraction.Container = defaultContainer
	}
}

func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv("SUBSPLICE_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("SUBSPLICE_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = strings.TrimSpace(value)
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("SUBSPLICE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
