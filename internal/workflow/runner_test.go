package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subsplice/internal/config"
	"subsplice/internal/logging"
	"subsplice/internal/media/ffmpeg"
	"subsplice/internal/queue"
	"subsplice/internal/services"
	"subsplice/internal/testsupport"
	"subsplice/internal/workflow"
)

type fakeTool struct {
	duration  float64
	probed    int
	failAll   bool
	extracted int
}

func (f *fakeTool) Extract(_ context.Context, req ffmpeg.ExtractRequest) error {
	if f.failAll {
		return errors.New("exit status 1")
	}
	f.extracted++
	return os.WriteFile(req.Output, []byte(strings.Repeat("v", 128)), 0o644)
}

func (f *fakeTool) Concat(_ context.Context, inputs []string, output string) error {
	var data []byte
	for _, in := range inputs {
		chunk, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		data = append(data, chunk...)
	}
	return os.WriteFile(output, data, 0o644)
}

func (f *fakeTool) ProbeDuration(context.Context, string) (float64, error) {
	f.probed++
	return f.duration, nil
}

type inputs struct {
	video    string
	original string
	updated  string
}

func writeInputs(t *testing.T, cfg *config.Config, newTexts ...string) inputs {
	t.Helper()
	base := testsupport.BaseDir(cfg)
	video := filepath.Join(base, "media", "Episode 01.mkv")
	testsupport.WriteFile(t, video, 256)
	original := testsupport.WriteSRT(t, filepath.Join(base, "media", "original.srt"),
		testsupport.SRTBlock{Start: "00:00:01,000", End: "00:00:02,000", Text: "hello there"},
		testsupport.SRTBlock{Start: "00:00:03,000", End: "00:00:04,000", Text: "how are you"},
		testsupport.SRTBlock{Start: "00:00:05,000", End: "00:00:06,000", Text: "goodbye now"},
	)
	if len(newTexts) == 0 {
		newTexts = []string{"hello there", "how are you", "goodbye now"}
	}
	starts := []string{"00:00:00,500", "00:00:02,500", "00:00:04,500"}
	ends := []string{"00:00:01,500", "00:00:03,500", "00:00:05,500"}
	var blocks []testsupport.SRTBlock
	for i, text := range newTexts {
		blocks = append(blocks, testsupport.SRTBlock{Start: starts[i], End: ends[i], Text: text})
	}
	updated := testsupport.WriteSRT(t, filepath.Join(base, "media", "new.srt"), blocks...)
	return inputs{video: video, original: original, updated: updated}
}

func (in inputs) request() workflow.Request {
	return workflow.Request{
		PlanRequest: workflow.PlanRequest{
			OriginalSubtitle: in.original,
			NewSubtitle:      in.updated,
			VideoPath:        in.video,
		},
		WriteSubtitle: true,
	}
}

func TestRunCompletesAndRecordsJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tool := &fakeTool{duration: 10}
	in := writeInputs(t, cfg)

	runner := workflow.NewRunner(cfg, store, tool, logging.NewNop())
	out, err := runner.Run(context.Background(), in.request())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantOutput := filepath.Join(cfg.Paths.OutputDir, "Episode 01-gap.mp4")
	if out.OutputPath != wantOutput {
		t.Fatalf("output = %q, want %q", out.OutputPath, wantOutput)
	}
	if _, err := os.Stat(out.OutputPath); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if tool.probed != 1 || tool.extracted != 3 {
		t.Fatalf("probed=%d extracted=%d", tool.probed, tool.extracted)
	}
	if out.Assembly.Extracted != 3 || out.Plan.Report.MatchedCount != 3 {
		t.Fatalf("unexpected outcome %+v", out)
	}

	doc, err := workflow.ReadDocument(out.ReportPath)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Assembly == nil || doc.Assembly.Extracted != 3 || doc.Report.SegmentCount != 3 || doc.Error != "" {
		t.Fatalf("unexpected report %+v", doc)
	}

	job, err := store.GetByID(context.Background(), out.JobID)
	if err != nil || job == nil {
		t.Fatalf("GetByID: %v %v", job, err)
	}
	if job.Status != queue.StatusCompleted || job.SegmentsPlanned != 3 || job.SegmentsExtracted != 3 {
		t.Fatalf("unexpected job %#v", job)
	}
	if job.RunID != out.RunID || job.ReportPath != out.ReportPath {
		t.Fatalf("job/run mismatch: %#v vs %+v", job, out)
	}
	var stored workflow.Document
	if err := json.Unmarshal([]byte(job.ReportJSON), &stored); err != nil || stored.Report.MatchedCount != 3 {
		t.Fatalf("stored report: %v %+v", err, stored)
	}

	sidecar, err := os.ReadFile(out.SubtitlePath)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	// gap keeps [1,2] [3,4] [5,6]; the output is those three seconds back to back
	for _, line := range []string{
		"00:00:00,000 --> 00:00:01,000\nhello there",
		"00:00:01,000 --> 00:00:02,000\nhow are you",
		"00:00:02,000 --> 00:00:03,000\ngoodbye now",
	} {
		if !strings.Contains(string(sidecar), line) {
			t.Fatalf("sidecar missing %q:\n%s", line, sidecar)
		}
	}
	if _, err := os.Stat(out.LogPath); err != nil {
		t.Fatalf("expected run log: %v", err)
	}
	entries, _ := os.ReadDir(cfg.Paths.WorkDir)
	if len(entries) != 0 {
		t.Fatalf("expected clean work dir, found %d entries", len(entries))
	}
}

func TestRunFailsWhenNothingMatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tool := &fakeTool{duration: 10}
	in := writeInputs(t, cfg, "zzz", "qqq", "kkk")

	out, err := workflow.NewRunner(cfg, store, tool, logging.NewNop()).Run(context.Background(), in.request())
	if !errors.Is(err, services.ErrNoMatchFound) {
		t.Fatalf("expected ErrNoMatchFound, got %v", err)
	}
	if tool.extracted != 0 {
		t.Fatal("no extraction expected without matches")
	}
	job, _ := store.GetByID(context.Background(), out.JobID)
	if job.Status != queue.StatusFailed || job.ErrorMessage == "" {
		t.Fatalf("unexpected job %#v", job)
	}
	doc, err := workflow.ReadDocument(out.ReportPath)
	if err != nil {
		t.Fatalf("report should exist on failure: %v", err)
	}
	if doc.ErrorKind != "no_match" || doc.Report.UnmatchedCount != 3 {
		t.Fatalf("unexpected report %+v", doc)
	}
}

func TestRunFailsWhenAllSegmentsFail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tool := &fakeTool{duration: 10, failAll: true}
	in := writeInputs(t, cfg)

	out, err := workflow.NewRunner(cfg, store, tool, logging.NewNop()).Run(context.Background(), in.request())
	if !errors.Is(err, services.ErrNoSegmentsExtracted) {
		t.Fatalf("expected ErrNoSegmentsExtracted, got %v", err)
	}
	if out.Assembly.Failed != 3 {
		t.Fatalf("assembly outcome = %+v", out.Assembly)
	}
	job, _ := store.GetByID(context.Background(), out.JobID)
	if job.Status != queue.StatusFailed {
		t.Fatalf("status = %q", job.Status)
	}
	doc, err := workflow.ReadDocument(out.ReportPath)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Assembly == nil || doc.ErrorKind != "no_segments_extracted" {
		t.Fatalf("unexpected report %+v", doc)
	}
	if _, err := os.Stat(out.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err = %v", err)
	}
}

func TestRunWithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStrategy(config.StrategyRemap))
	tool := &fakeTool{duration: 10}
	in := writeInputs(t, cfg)
	req := in.request()
	req.OutputPath = filepath.Join(testsupport.BaseDir(cfg), "custom", "cut.mp4")
	req.VideoDuration = 8

	out, err := workflow.NewRunner(cfg, nil, tool, logging.NewNop()).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.JobID != 0 || out.RunID == "" {
		t.Fatalf("expected run id without job, got %+v", out)
	}
	if tool.probed != 0 {
		t.Fatal("explicit duration should skip probing")
	}
	if out.Plan.Report.Strategy != config.StrategyRemap {
		t.Fatalf("strategy = %q", out.Plan.Report.Strategy)
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		t.Fatalf("expected custom output: %v", err)
	}
}

func TestPlanOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	in := writeInputs(t, cfg)
	runner := workflow.NewRunner(cfg, nil, nil, logging.NewNop())

	out, err := runner.Plan(context.Background(), workflow.PlanRequest{
		OriginalSubtitle: in.original,
		NewSubtitle:      in.updated,
		VideoDuration:    10,
		Strategy:         "overlap",
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if out.Original.Encoding == "" || out.New.Track.Len() != 3 {
		t.Fatalf("unexpected load results %+v", out)
	}
	if out.Result.Report.Strategy != "overlap" || len(out.Result.Segments) == 0 {
		t.Fatalf("unexpected plan %+v", out.Result.Report)
	}

	if _, err := runner.Plan(context.Background(), workflow.PlanRequest{OriginalSubtitle: in.original, NewSubtitle: in.updated}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected missing duration to be invalid input, got %v", err)
	}
	if _, err := runner.Plan(context.Background(), workflow.PlanRequest{OriginalSubtitle: in.original, NewSubtitle: in.updated, VideoDuration: 1, Strategy: "shuffle"}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected unknown strategy to be invalid input, got %v", err)
	}
}

func TestRunRejectsMissingVideoBeforeProbing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tool := &fakeTool{duration: 10}
	in := writeInputs(t, cfg)
	req := in.request()
	req.VideoPath = filepath.Join(testsupport.BaseDir(cfg), "media", "missing.mkv")

	_, err := workflow.NewRunner(cfg, store, tool, logging.NewNop()).Run(context.Background(), req)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if tool.probed != 0 {
		t.Fatalf("probe ran %d times for a missing file", tool.probed)
	}
	jobs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("no job should be recorded, got %d", len(jobs))
	}

	runner := workflow.NewRunner(cfg, nil, tool, logging.NewNop())
	_, err = runner.Plan(context.Background(), workflow.PlanRequest{
		OriginalSubtitle: in.original,
		NewSubtitle:      in.updated,
		VideoPath:        req.VideoPath,
	})
	if !errors.Is(err, services.ErrInvalidInput) || tool.probed != 0 {
		t.Fatalf("plan with missing video: err=%v probed=%d", err, tool.probed)
	}
}

func TestRunJobStoreFailureIsConfigurationError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	tool := &fakeTool{duration: 10}
	in := writeInputs(t, cfg)

	_, err := workflow.NewRunner(cfg, store, tool, logging.NewNop()).Run(context.Background(), in.request())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("store failure must not be reported as bad input: %v", err)
	}
	if tool.probed != 0 || tool.extracted != 0 {
		t.Fatalf("nothing should run without a job: probed=%d extracted=%d", tool.probed, tool.extracted)
	}
}
