package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"subsplice/internal/config"
	"subsplice/internal/deps"
)

// minFreeBytes is the free-space floor below which the work directory check
// fails. Segment extraction roughly doubles the output size on disk.
const minFreeBytes = 512 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(free), path)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckSystemDeps evaluates the external media binaries for cfg.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.Check(ctx, deps.MediaRequirements(cfg))
}

// CheckBinaries converts dependency statuses into preflight results.
func CheckBinaries(ctx context.Context, cfg *config.Config) []Result {
	statuses := CheckSystemDeps(ctx, cfg)
	results := make([]Result, 0, len(statuses))
	for _, s := range statuses {
		r := Result{Name: s.Name, Passed: s.Available || s.Optional}
		switch {
		case s.Available && s.Version != "":
			r.Detail = s.Version
		case s.Available:
			r.Detail = s.Path
		default:
			r.Detail = s.Detail
		}
		results = append(results, r)
	}
	return results
}
