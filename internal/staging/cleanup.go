// Package staging manages the run-scoped work directories left under
// paths.work_dir.
//
// A successful or failed run removes its own run-<id> directory; anything
// still present belongs to a run that was killed. CleanStale reclaims those
// once they are older than jobs.stale_work_hours.
package staging

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subsplice/internal/logging"
)

// RunDirPrefix prefixes every run work directory name.
const RunDirPrefix = "run-"

// Result lists what a cleanup pass did with each run directory.
type Result struct {
	Removed []string
	Kept    []string
	Failed  []Failure
}

// Failure records a directory that could not be removed.
type Failure struct {
	Path string
	Err  error
}

// DirInfo describes one run directory.
type DirInfo struct {
	Name    string
	RunID   string
	Path    string
	ModTime time.Time
	Size    int64
}

// RunID extracts the run id from a work directory name.
func RunID(dirName string) (string, bool) {
	id, ok := strings.CutPrefix(dirName, RunDirPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// CleanStale removes run directories in workDir older than maxAge. Runs
// listed in active are kept regardless of age. Directories not named
// run-<id> are never touched.
func CleanStale(ctx context.Context, workDir string, maxAge time.Duration, active map[string]struct{}, logger *slog.Logger) Result {
	var res Result
	dirs, err := ListDirectories(workDir)
	if err != nil {
		res.Failed = append(res.Failed, Failure{Path: workDir, Err: err})
		return res
	}

	cutoff := time.Now().Add(-maxAge)
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		_, running := active[dir.RunID]
		if running || dir.ModTime.After(cutoff) {
			res.Kept = append(res.Kept, dir.Path)
			continue
		}
		if err := os.RemoveAll(dir.Path); err != nil {
			res.Failed = append(res.Failed, Failure{Path: dir.Path, Err: err})
			logging.WarnWithContext(logger, "stale run directory not removed", "work_cleanup_failed",
				logging.String("path", dir.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		res.Removed = append(res.Removed, dir.Path)
		if logger != nil {
			logger.Info("stale run directory removed",
				logging.String("path", dir.Path),
				logging.Duration("age", time.Since(dir.ModTime).Round(time.Second)),
				logging.Int64("bytes", dir.Size),
				logging.String(logging.FieldEventType, "work_cleanup"),
			)
		}
	}
	return res
}

// ListDirectories returns the run-<id> directories directly under workDir.
// A missing or blank workDir yields no directories.
func ListDirectories(workDir string) ([]DirInfo, error) {
	root := strings.TrimSpace(workDir)
	if root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []DirInfo
	for _, entry := range entries {
		runID, ok := RunID(entry.Name())
		if !entry.IsDir() || !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(root, entry.Name())
		out = append(out, DirInfo{
			Name:    entry.Name(),
			RunID:   runID,
			Path:    path,
			ModTime: info.ModTime(),
			Size:    treeSize(path),
		})
	}
	return out, nil
}

// treeSize sums regular file sizes below path. Unreadable entries count as 0.
func treeSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
