package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"subsplice/internal/assembly"
	"subsplice/internal/config"
	"subsplice/internal/cue"
	"subsplice/internal/logging"
	"subsplice/internal/media/ffmpeg"
	"subsplice/internal/planner"
	"subsplice/internal/queue"
	"subsplice/internal/services"
	"subsplice/internal/textutil"
)

// Runner executes subsplice runs against a configuration, a media tool and an
// optional job store.
type Runner struct {
	cfg    *config.Config
	store  *queue.Store
	tool   ffmpeg.Tool
	logger *slog.Logger
}

// NewRunner constructs a Runner. A nil store disables job history.
func NewRunner(cfg *config.Config, store *queue.Store, tool ffmpeg.Tool, logger *slog.Logger) *Runner {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, tool: tool, logger: logger}
}

// Plan loads both tracks and computes a segment plan without touching media
// beyond an optional duration probe.
func (r *Runner) Plan(ctx context.Context, req PlanRequest) (PlanOutcome, error) {
	return r.plan(ctx, r.logger, req)
}

func (r *Runner) plan(ctx context.Context, logger *slog.Logger, req PlanRequest) (PlanOutcome, error) {
	var out PlanOutcome
	strategy, err := r.strategy(req.Strategy)
	if err != nil {
		return out, err
	}

	if out.Original, err = r.loadTrack(logger, req.OriginalSubtitle, req.Encoding, "original"); err != nil {
		return out, err
	}
	if out.New, err = r.loadTrack(logger, req.NewSubtitle, req.Encoding, "new"); err != nil {
		return out, err
	}

	out.VideoDuration = req.VideoDuration
	if out.VideoDuration <= 0 {
		if out.VideoDuration, err = r.probe(ctx, req.VideoPath); err != nil {
			return out, err
		}
	}

	p := planner.New(r.cfg.Planner, logger)
	out.Result, err = p.Plan(out.Original.Track, out.New.Track, out.VideoDuration, strategy)
	if err != nil {
		return out, err
	}
	report := out.Result.Report
	logger.Info("plan computed",
		logging.String(logging.FieldStrategy, string(strategy)),
		logging.Int("matched", report.MatchedCount),
		logging.Int("unmatched", report.UnmatchedCount),
		logging.Int("segments", report.SegmentCount),
		logging.Float64("planned_seconds", report.PlannedDuration),
		logging.Bool("merged", r.cfg.Planner.Merge),
		logging.String(logging.FieldEventType, "plan_computed"),
	)
	return out, nil
}

func (r *Runner) strategy(override string) (planner.Strategy, error) {
	name := strings.TrimSpace(override)
	if name == "" {
		name = r.cfg.Planner.Strategy
	}
	strategy, err := planner.ParseStrategy(name)
	if err != nil {
		return "", services.Wrap(services.ErrInvalidInput, "planning", "strategy", err.Error(), nil)
	}
	return strategy, nil
}

func (r *Runner) loadTrack(logger *slog.Logger, path, encoding, label string) (cue.LoadResult, error) {
	if strings.TrimSpace(path) == "" {
		return cue.LoadResult{}, services.Wrap(services.ErrInvalidInput, "planning", "load "+label+" subtitle", "path is required", nil)
	}
	res, err := cue.Load(path, cue.LoadOptions{Encoding: encoding})
	if err != nil {
		return res, services.Wrap(services.ErrInvalidInput, "planning", "load "+label+" subtitle", path, err)
	}
	for _, issue := range res.Issues {
		logging.WarnWithContext(logger, "subtitle block skipped", "subtitle_block_skipped",
			logging.String("track", label),
			logging.String("path", path),
			logging.String("issue", issue),
			logging.String(logging.FieldErrorHint, "fix the block timing or numbering in the SRT file"),
			logging.String(logging.FieldImpact, "cue excluded from matching"),
		)
	}
	if err := res.Track.Validate(); err != nil {
		return res, services.Wrap(services.ErrInvalidInput, "planning", "validate "+label+" subtitle", path, err)
	}
	logger.Debug("subtitle loaded",
		logging.String("track", label),
		logging.String("encoding", res.Encoding),
		logging.Int("cues", res.Track.Len()),
	)
	return res, nil
}

// checkSource confirms the source video is an existing regular file.
func checkSource(video string) error {
	if strings.TrimSpace(video) == "" {
		return services.Wrap(services.ErrInvalidInput, "planning", "validate", "video path is required", nil)
	}
	info, err := os.Stat(video)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "planning", "validate", "source video "+video, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrInvalidInput, "planning", "validate", "source video is a directory: "+video, nil)
	}
	return nil
}

func (r *Runner) probe(ctx context.Context, video string) (float64, error) {
	if strings.TrimSpace(video) == "" {
		return 0, services.Wrap(services.ErrInvalidInput, "planning", "probe", "video path or duration is required", nil)
	}
	if err := checkSource(video); err != nil {
		return 0, err
	}
	if r.tool == nil {
		return 0, services.Wrap(services.ErrConfiguration, "planning", "probe", "media tool unavailable", nil)
	}
	probeCtx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout())
	defer cancel()
	duration, err := r.tool.ProbeDuration(probeCtx, video)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "planning", "probe", video, err)
	}
	return duration, nil
}

// Run plans, extracts and assembles. The returned Outcome carries whatever the
// run produced before an error.
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	var out Outcome
	if err := checkSource(req.VideoPath); err != nil {
		return out, err
	}
	strategy, err := r.strategy(req.Strategy)
	if err != nil {
		return out, err
	}
	req.Strategy = string(strategy)
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = r.cfg.Extraction.Mode
	}
	out.OutputPath = r.outputPath(req, strategy)
	out.ReportPath = out.OutputPath + ".report.json"

	job, err := r.newJob(ctx, req, mode, out.OutputPath)
	if err != nil {
		return out, err
	}
	out.RunID = uuid.NewString()
	if job != nil {
		out.JobID = job.ID
		out.RunID = job.RunID
		ctx = services.WithJobID(ctx, job.ID)
	}
	ctx = services.WithRunID(ctx, out.RunID)
	ctx = services.WithStrategy(ctx, string(strategy))

	logger, closer := r.runLogger(out.RunID)
	if closer != nil {
		out.LogPath = r.runLogPath(out.RunID)
		defer closer.Close()
	}

	doc := Document{
		RunID:    out.RunID,
		JobID:    out.JobID,
		Video:    req.VideoPath,
		Original: req.OriginalSubtitle,
		New:      req.NewSubtitle,
		Output:   out.OutputPath,
		Mode:     mode,
	}
	tracker := &jobTracker{store: r.store, job: job}
	fail := func(stage string, runErr error) (Outcome, error) {
		stageLogger := logging.WithContext(services.WithStage(ctx, stage), logger)
		storeCtx := context.WithoutCancel(ctx)
		doc.Error = runErr.Error()
		doc.ErrorKind = services.Kind(runErr)
		if doc.Report.Strategy != "" {
			if err := writeDocument(out.ReportPath, doc); err != nil {
				stageLogger.Warn("report write failed", logging.Error(err))
			} else {
				tracker.setReport(storeCtx, out.ReportPath, doc)
			}
		}
		tracker.fail(storeCtx, stageLogger, runErr)
		report := logging.ErrorWithContext
		if !services.IsFatal(runErr) {
			// nothing matched; the inputs were usable but unrelated
			report = logging.WarnWithContext
		}
		report(stageLogger, "run failed", "run_failed",
			logging.String("error_kind", doc.ErrorKind),
			logging.Error(runErr),
		)
		return out, runErr
	}

	// planning
	if err := tracker.advance(ctx, queue.StatusPlanning); err != nil {
		return fail("planning", err)
	}
	planCtx := services.WithStage(ctx, "planning")
	planned, err := r.plan(planCtx, logging.WithContext(planCtx, logger), req.PlanRequest)
	if err != nil {
		return fail("planning", err)
	}
	out.Plan = planned.Result
	doc.Report = planned.Result.Report
	doc.Segments = planned.Result.Segments
	if len(planned.Result.Segments) == 0 {
		return fail("planning", services.Wrap(services.ErrNoMatchFound, "planning", "plan",
			fmt.Sprintf("none of %d new cues matched", planned.Result.Report.TotalNewCues), nil))
	}
	if err := writeDocument(out.ReportPath, doc); err != nil {
		return fail("planning", services.Wrap(services.ErrConfiguration, "planning", "write report", out.ReportPath, err))
	}
	tracker.setReport(ctx, out.ReportPath, doc)
	tracker.setPlanned(len(planned.Result.Segments))

	// extracting + assembling
	if err := tracker.advance(ctx, queue.StatusExtracting); err != nil {
		return fail("extracting", err)
	}
	extractCtx := services.WithStage(ctx, "extracting")
	opts := assembly.OptionsFromConfig(r.cfg)
	opts.Progress = req.Progress
	opts.OnAssembling = func(int) {
		if err := tracker.advance(ctx, queue.StatusAssembling); err != nil {
			logger.Warn("job transition failed", logging.Error(err))
		}
	}
	orch := assembly.New(r.tool, opts, logging.WithContext(extractCtx, logger))
	res, err := orch.Execute(extractCtx, assembly.Request{
		Plan:       planned.Result.Segments,
		SourcePath: req.VideoPath,
		WorkDir:    r.cfg.Paths.WorkDir,
		Mode:       mode,
		OutputPath: out.OutputPath,
		RunID:      out.RunID,
	})
	out.Assembly = res.Outcome
	doc.Assembly = &out.Assembly
	tracker.setExtracted(res.Outcome.Extracted)
	if err != nil {
		stage := "extracting"
		if errors.Is(err, services.ErrAssemblyFailed) {
			stage = "assembling"
		}
		return fail(stage, err)
	}

	if req.WriteSubtitle {
		path := strings.TrimSuffix(out.OutputPath, filepath.Ext(out.OutputPath)) + ".srt"
		retimed := retimeSubtitles(planned.New.Track, planned.Result.Report, res.Outcome.Segments)
		if err := cue.WriteSRT(path, retimed); err != nil {
			logging.WarnWithContext(logger, "subtitle sidecar write failed", "subtitle_sidecar_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "output has no matching subtitle file"),
			)
		} else {
			out.SubtitlePath = path
		}
	}

	if err := writeDocument(out.ReportPath, doc); err != nil {
		logger.Warn("report write failed", logging.Error(err))
	} else {
		tracker.setReport(ctx, out.ReportPath, doc)
	}
	if err := tracker.advance(ctx, queue.StatusCompleted); err != nil {
		return out, err
	}
	logging.WithContext(ctx, logger).Info("run completed",
		logging.String("output", out.OutputPath),
		logging.Int("segments", out.Assembly.Extracted),
		logging.Int("dropped", out.Assembly.Failed),
		logging.String(logging.FieldEventType, "run_completed"),
	)
	return out, nil
}

func (r *Runner) outputPath(req Request, strategy planner.Strategy) string {
	if path := strings.TrimSpace(req.OutputPath); path != "" {
		return path
	}
	base := strings.TrimSuffix(filepath.Base(req.VideoPath), filepath.Ext(req.VideoPath))
	name := textutil.SanitizeFileName(base)
	if name == "" {
		name = "output"
	}
	container := strings.TrimPrefix(r.cfg.Extraction.Container, ".")
	return filepath.Join(r.cfg.Paths.OutputDir, fmt.Sprintf("%s-%s.%s", name, strategy, container))
}

func (r *Runner) newJob(ctx context.Context, req Request, mode, output string) (*queue.Job, error) {
	if r.store == nil {
		return nil, nil
	}
	job, err := r.store.NewJob(ctx, queue.NewJobParams{
		Strategy:         req.Strategy,
		Mode:             mode,
		SourcePath:       req.VideoPath,
		OriginalSubtitle: req.OriginalSubtitle,
		NewSubtitle:      req.NewSubtitle,
		OutputPath:       output,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "queued", "create job", "job store "+r.store.Path(), err)
	}
	return job, nil
}

func (r *Runner) runLogPath(runID string) string {
	return filepath.Join(r.cfg.Paths.LogDir, "runs", runID+".log")
}

// runLogger tees the process logger into a per-run JSON file. Failure to
// open the file degrades to the process logger alone.
func (r *Runner) runLogger(runID string) (*slog.Logger, io.Closer) {
	if strings.TrimSpace(r.cfg.Paths.LogDir) == "" {
		return r.logger, nil
	}
	handler, closer, err := logging.NewFileHandler(r.runLogPath(runID), r.cfg.Logging.Level)
	if err != nil {
		r.logger.Warn("run log unavailable", logging.Error(err))
		return r.logger, nil
	}
	return logging.TeeLogger(r.logger, handler), closer
}
