package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subsplice/internal/config"
	"subsplice/internal/logging"
	"subsplice/internal/media/ffmpeg"
	"subsplice/internal/queue"
	"subsplice/internal/services"
	"subsplice/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *queue.Store
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue returns the process logger, falling back to a console logger
// when the configured outputs cannot be opened.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "info", Format: "console"})
		}
		c.logger = logger
	})
	return c.logger
}

// openStore opens the job store, or returns nil when history is disabled.
func (c *commandContext) openStore() (*queue.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Jobs.Enabled {
		return nil, nil
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

func (c *commandContext) requireStore() (*queue.Store, error) {
	store, err := c.openStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("job history is disabled (jobs.enabled = false)")
	}
	return store, nil
}

func (c *commandContext) mediaTool() *ffmpeg.FFmpeg {
	cfg := c.configValue()
	return ffmpeg.New(cfg.FFmpegBinary(), cfg.FFprobeBinary(), c.loggerValue())
}

func (c *commandContext) runner(store *queue.Store) *workflow.Runner {
	return workflow.NewRunner(c.configValue(), store, c.mediaTool(), c.loggerValue())
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps error kinds onto distinct process exit codes so scripts can
// tell bad input from tool failures.
func exitCode(err error) int {
	switch services.Kind(err) {
	case "invalid_input", "configuration":
		return 2
	case "no_match", "no_segments_extracted":
		return 3
	case "canceled":
		return 130
	default:
		return 1
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
