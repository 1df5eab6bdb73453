// Package fileutil holds the filesystem helpers used to publish assembled
// output.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// partialSuffix marks a destination that is still being written.
const partialSuffix = ".partial"

// CopyFileVerified copies src to dst through a sibling dst.partial file,
// re-reads the copy to compare SHA-256 digests and only then renames it
// into place. dst is never left holding a truncated file.
func CopyFileVerified(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	partial := dst + partialSuffix
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(partial)
		}
	}()

	srcHash := sha256.New()
	if _, err := io.Copy(out, io.TeeReader(in, srcHash)); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("sync copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	dstHash, err := digest(partial)
	if err != nil {
		return fmt.Errorf("verify copy: %w", err)
	}
	if !bytes.Equal(srcHash.Sum(nil), dstHash) {
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	if err := os.Rename(partial, dst); err != nil {
		return err
	}
	ok = true
	return nil
}

func digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// MoveFile renames src to dst. When the two live on different filesystems
// it falls back to a verified copy followed by removing src.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		return err
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("cross-device move: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// SizeAbove reports whether path is a regular file larger than minBytes,
// returning its size either way.
func SizeAbove(path string, minBytes int64) (bool, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, err
	}
	if !info.Mode().IsRegular() {
		return false, 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size() > minBytes, info.Size(), nil
}
