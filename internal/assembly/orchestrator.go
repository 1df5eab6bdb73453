package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"subsplice/internal/config"
	"subsplice/internal/fileutil"
	"subsplice/internal/logging"
	"subsplice/internal/media/ffmpeg"
	"subsplice/internal/services"
)

// Options tunes extraction and assembly.
type Options struct {
	Workers         int
	SegmentTimeout  time.Duration
	ConcatTimeout   time.Duration
	MinSegmentBytes int64
	Container       string
	Progress        ProgressFunc
	// OnAssembling is called once extraction has finished and concatenation
	// is about to start.
	OnAssembling func(extracted int)
}

// OptionsFromConfig maps the extraction section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return Options{
		Workers:         cfg.Extraction.Workers,
		SegmentTimeout:  cfg.SegmentTimeout(),
		ConcatTimeout:   cfg.ConcatTimeout(),
		MinSegmentBytes: cfg.Extraction.MinSegmentBytes,
		Container:       cfg.Extraction.Container,
	}
}

// Orchestrator runs segment plans through a media tool.
type Orchestrator struct {
	tool   ffmpeg.Tool
	opts   Options
	logger *slog.Logger
}

// New constructs an Orchestrator. Zero-valued options fall back to the
// configuration defaults.
func New(tool ffmpeg.Tool, opts Options, logger *slog.Logger) *Orchestrator {
	defaults := OptionsFromConfig(nil)
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.SegmentTimeout <= 0 {
		opts.SegmentTimeout = defaults.SegmentTimeout
	}
	if opts.ConcatTimeout <= 0 {
		opts.ConcatTimeout = defaults.ConcatTimeout
	}
	if opts.MinSegmentBytes < 0 {
		opts.MinSegmentBytes = 0
	}
	opts.Container = strings.TrimPrefix(strings.TrimSpace(opts.Container), ".")
	if opts.Container == "" {
		opts.Container = defaults.Container
	}
	return &Orchestrator{tool: tool, opts: opts, logger: logging.NewComponentLogger(logger, "assembly")}
}

// Execute extracts every planned segment and concatenates the survivors into
// req.OutputPath. The returned Outcome is populated even when an error is
// returned.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (Result, error) {
	outcome := Outcome{RunID: req.RunID, Mode: req.Mode, Planned: len(req.Plan)}
	if o == nil || o.tool == nil {
		return Result{Outcome: outcome}, services.Wrap(services.ErrConfiguration, "extracting", "execute", "media tool unavailable", nil)
	}
	if err := validateRequest(req); err != nil {
		return Result{Outcome: outcome}, err
	}
	if outcome.Mode == "" {
		outcome.Mode = ffmpeg.ModeCopy
	}
	if outcome.RunID == "" {
		outcome.RunID = uuid.NewString()
	}
	logger := logging.WithContext(ctx, o.logger).With(logging.String(logging.FieldRunID, outcome.RunID))

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return Result{Outcome: outcome}, services.Wrap(services.ErrConfiguration, "extracting", "create output dir", req.OutputPath, err)
	}
	lock := flock.New(req.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Outcome: outcome}, services.Wrap(services.ErrConfiguration, "extracting", "lock output", req.OutputPath, err)
	}
	if !locked {
		return Result{Outcome: outcome}, services.Wrap(services.ErrInvalidInput, "extracting", "lock output", "another run is writing "+req.OutputPath, nil)
	}
	// The lock file stays on disk: removing it would let a waiting run lock
	// an unlinked inode while a newer run locks a fresh file.
	defer func() { _ = lock.Unlock() }()

	runDir := filepath.Join(req.WorkDir, "run-"+outcome.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{Outcome: outcome}, services.Wrap(services.ErrConfiguration, "extracting", "create work dir", runDir, err)
	}
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			logging.WarnWithContext(logger, "work dir cleanup failed", "work_dir_cleanup_failed",
				logging.String("path", runDir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the directory manually or run subsplice clean"),
				logging.String(logging.FieldImpact, "intermediate segment files remain on disk"),
			)
		}
	}()

	logger.Info("extraction started",
		logging.Int("segments", len(req.Plan)),
		logging.String("mode", outcome.Mode),
		logging.Int("workers", o.opts.Workers),
		logging.String(logging.FieldEventType, "extraction_started"),
	)
	outcome.Segments = o.extractAll(ctx, logger, req, outcome.Mode, runDir)

	survivors := make([]string, 0, len(outcome.Segments))
	for _, seg := range outcome.Segments {
		switch seg.Status {
		case SegmentExtracted:
			outcome.Extracted++
			outcome.ExtractedDuration += seg.SourceEnd - seg.SourceStart
			survivors = append(survivors, filepath.Join(runDir, seg.File))
		case SegmentSkipped:
			outcome.Skipped++
		default:
			outcome.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{Outcome: outcome}, services.Wrap(services.ErrCanceled, "extracting", "execute", "run canceled", err)
	}
	if len(survivors) == 0 {
		return Result{Outcome: outcome}, services.Wrap(services.ErrNoSegmentsExtracted, "extracting", "execute",
			fmt.Sprintf("all %d segments failed", len(req.Plan)), nil)
	}

	if o.opts.OnAssembling != nil {
		o.opts.OnAssembling(len(survivors))
	}
	size, err := o.assemble(ctx, logger, survivors, runDir, req.OutputPath)
	if err != nil {
		return Result{Outcome: outcome}, err
	}
	outcome.OutputBytes = size
	logger.Info("assembly completed",
		logging.String("output", req.OutputPath),
		logging.Int("extracted", outcome.Extracted),
		logging.Int("failed", outcome.Failed),
		logging.Int64("bytes", size),
		logging.String(logging.FieldEventType, "assembly_completed"),
	)
	return Result{OutputPath: req.OutputPath, Outcome: outcome}, nil
}

func validateRequest(req Request) error {
	if len(req.Plan) == 0 {
		return services.Wrap(services.ErrInvalidInput, "extracting", "validate", "segment plan is empty", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrInvalidInput, "extracting", "validate", "output path is required", nil)
	}
	if strings.TrimSpace(req.WorkDir) == "" {
		return services.Wrap(services.ErrInvalidInput, "extracting", "validate", "work dir is required", nil)
	}
	switch req.Mode {
	case "", ffmpeg.ModeCopy, ffmpeg.ModeReencode:
	default:
		return services.Wrap(services.ErrInvalidInput, "extracting", "validate", fmt.Sprintf("unknown mode %q", req.Mode), nil)
	}
	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "extracting", "validate", "source media not found", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrInvalidInput, "extracting", "validate", "source media is a directory", nil)
	}
	return nil
}

// extractAll runs extractions on a bounded pool. Results are stored by plan
// index so completion order never affects the manifest.
func (o *Orchestrator) extractAll(ctx context.Context, logger *slog.Logger, req Request, mode, runDir string) []SegmentOutcome {
	results := make([]SegmentOutcome, len(req.Plan))
	workers := min(o.opts.Workers, len(req.Plan))

	var (
		mu        sync.Mutex
		done      int
		extracted int
		sampler   = logging.NewProgressSampler(25)
	)
	report := func(res SegmentOutcome) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if res.Status == SegmentExtracted {
			extracted++
		}
		percent := float64(done) / float64(len(req.Plan)) * 100
		if sampler.ShouldLog(percent, "extracting") {
			logger.Info("extraction progress",
				logging.Int("done", done),
				logging.Int("total", len(req.Plan)),
				logging.Int("extracted", extracted),
				logging.String(logging.FieldEventType, "extraction_progress"),
			)
		}
		if o.opts.Progress != nil {
			o.opts.Progress(Progress{Done: done, Total: len(req.Plan), Extracted: extracted})
		}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res := o.extractOne(ctx, logger, req, mode, runDir, idx)
				results[idx] = res
				report(res)
			}
		}()
	}
	for idx := range req.Plan {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

func (o *Orchestrator) extractOne(ctx context.Context, logger *slog.Logger, req Request, mode, runDir string, idx int) SegmentOutcome {
	seg := req.Plan[idx]
	res := SegmentOutcome{Index: idx, SourceStart: seg.SourceStart, SourceEnd: seg.SourceEnd}
	segLogger := logger.With(logging.Int("segment", idx))

	if err := ctx.Err(); err != nil {
		res.Status = SegmentSkipped
		res.Error = err.Error()
		return res
	}

	res.File = fmt.Sprintf("segment_%04d.%s", idx, o.opts.Container)
	path := filepath.Join(runDir, res.File)
	segCtx, cancel := context.WithTimeout(ctx, o.opts.SegmentTimeout)
	defer cancel()

	started := time.Now()
	err := o.tool.Extract(segCtx, ffmpeg.ExtractRequest{
		Source:   req.SourcePath,
		Start:    seg.SourceStart,
		Duration: seg.Duration(),
		Mode:     mode,
		Output:   path,
	})
	res.Elapsed = time.Since(started)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			res.Status = SegmentSkipped
			res.Error = ctx.Err().Error()
		case errors.Is(segCtx.Err(), context.DeadlineExceeded):
			res.Status = SegmentTimeout
			res.Error = services.Wrap(services.ErrTimeout, "extracting", "extract segment", o.opts.SegmentTimeout.String(), err).Error()
			logging.WarnWithContext(segLogger, "segment extraction timed out; segment dropped", "segment_timeout",
				logging.Duration("timeout", o.opts.SegmentTimeout),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise extraction.segment_timeout or use copy mode"),
				logging.String(logging.FieldImpact, "segment omitted from output"),
			)
		default:
			res.Status = SegmentFailed
			res.Error = services.Wrap(services.ErrSegmentExtraction, "extracting", "extract segment", res.File, err).Error()
			logging.WarnWithContext(segLogger, "segment extraction failed; segment dropped", "segment_extract_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ffmpeg output and source media"),
				logging.String(logging.FieldImpact, "segment omitted from output"),
			)
		}
		return res
	}

	ok, size, statErr := fileutil.SizeAbove(path, o.opts.MinSegmentBytes)
	res.Bytes = size
	if statErr != nil || !ok {
		res.Status = SegmentTooSmall
		detail := fmt.Sprintf("%d bytes, need more than %d", size, o.opts.MinSegmentBytes)
		if statErr != nil {
			detail = statErr.Error()
		}
		res.Error = services.Wrap(services.ErrSegmentExtraction, "extracting", "verify segment", detail, nil).Error()
		logging.WarnWithContext(segLogger, "segment output missing or too small; segment dropped", "segment_too_small",
			logging.Int64("bytes", size),
			logging.Int64("min_bytes", o.opts.MinSegmentBytes),
			logging.String(logging.FieldErrorHint, "interval may fall between keyframes; try reencode mode"),
			logging.String(logging.FieldImpact, "segment omitted from output"),
		)
		return res
	}

	res.Status = SegmentExtracted
	segLogger.Debug("segment extracted",
		logging.Float64("start", seg.SourceStart),
		logging.Float64("end", seg.SourceEnd),
		logging.Int64("bytes", size),
		logging.Duration("elapsed", res.Elapsed),
	)
	return res
}

// assemble concatenates survivors inside runDir, verifies the result and
// moves it to output so a failed run never leaves a partial artifact.
func (o *Orchestrator) assemble(ctx context.Context, logger *slog.Logger, survivors []string, runDir, output string) (int64, error) {
	ext := filepath.Ext(output)
	if ext == "" {
		ext = "." + o.opts.Container
	}
	staged := filepath.Join(runDir, "assembled"+ext)

	concatCtx, cancel := context.WithTimeout(ctx, o.opts.ConcatTimeout)
	defer cancel()
	if err := o.tool.Concat(concatCtx, survivors, staged); err != nil {
		if errors.Is(concatCtx.Err(), context.DeadlineExceeded) {
			err = services.Wrap(services.ErrTimeout, "assembling", "concat", o.opts.ConcatTimeout.String(), err)
		}
		logging.ErrorWithContext(logger, "concatenation failed", "assembly_failed",
			logging.Int("inputs", len(survivors)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that segment codecs match; reencode mode avoids mismatches"),
		)
		return 0, services.Wrap(services.ErrAssemblyFailed, "assembling", "concat", "", err)
	}

	ok, size, err := fileutil.SizeAbove(staged, o.opts.MinSegmentBytes)
	if err != nil || !ok {
		detail := fmt.Sprintf("assembled file is %d bytes", size)
		return 0, services.Wrap(services.ErrAssemblyFailed, "assembling", "verify output", detail, err)
	}

	if err := fileutil.MoveFile(staged, output); err != nil {
		return 0, services.Wrap(services.ErrAssemblyFailed, "assembling", "move output", output, err)
	}
	return size, nil
}
