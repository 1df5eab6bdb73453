package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subsplice/internal/logging"
)

func makeDir(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(filepath.Join(path, "segment_0000.mp4"), make([]byte, 10), 0o644); err != nil {
		t.Fatalf("write segment: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return path
}

func TestCleanStale(t *testing.T) {
	root := t.TempDir()
	oldRun := makeDir(t, root, "run-old", 48*time.Hour)
	freshRun := makeDir(t, root, "run-fresh", time.Minute)
	activeRun := makeDir(t, root, "run-active", 72*time.Hour)
	foreign := makeDir(t, root, "keep-me", 72*time.Hour)

	result := CleanStale(context.Background(), root, 24*time.Hour, map[string]struct{}{"active": {}}, logging.NewNop())

	if len(result.Failed) != 0 {
		t.Fatalf("unexpected errors: %v", result.Failed)
	}
	if len(result.Removed) != 1 || result.Removed[0] != oldRun {
		t.Fatalf("removed = %v, want [%s]", result.Removed, oldRun)
	}
	for _, keep := range []string{freshRun, activeRun, foreign} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s to remain: %v", keep, err)
		}
	}
	if len(result.Kept) != 2 {
		t.Fatalf("kept = %v", result.Kept)
	}
}

func TestCleanStaleMissingDir(t *testing.T) {
	result := CleanStale(context.Background(), filepath.Join(t.TempDir(), "nope"), time.Hour, nil, nil)
	if len(result.Removed) != 0 || len(result.Failed) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if got := CleanStale(context.Background(), "  ", time.Hour, nil, nil); len(got.Removed) != 0 {
		t.Fatalf("expected no-op for blank dir, got %+v", got)
	}
}

func TestListDirectories(t *testing.T) {
	root := t.TempDir()
	makeDir(t, root, "run-abc", time.Hour)
	makeDir(t, root, "other", time.Hour)
	if err := os.WriteFile(filepath.Join(root, "run-file"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs, err := ListDirectories(root)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 {
		t.Fatalf("expected one run dir, got %+v", dirs)
	}
	if dirs[0].RunID != "abc" || dirs[0].Size != 10 {
		t.Fatalf("unexpected dir info %+v", dirs[0])
	}
}

func TestRunID(t *testing.T) {
	if id, ok := RunID("run-1234"); !ok || id != "1234" {
		t.Fatalf("RunID = %q, %v", id, ok)
	}
	for _, name := range []string{"run-", "queue-1", "1234"} {
		if _, ok := RunID(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
