package testsupport

import (
	"context"
	"testing"

	"subsplice/internal/config"
	"subsplice/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a queued job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, strategy string) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), queue.NewJobParams{
		Strategy:         strategy,
		Mode:             config.ModeCopy,
		SourcePath:       "/media/source.mp4",
		OriginalSubtitle: "/media/original.srt",
		NewSubtitle:      "/media/new.srt",
		OutputPath:       "/media/out.mp4",
	})
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}
