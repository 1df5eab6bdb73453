package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile creates path, and any missing parents, holding size bytes of
// filler. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{'B'}, int(max(size, 1))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SRTBlock describes one cue for WriteSRT.
type SRTBlock struct {
	Start, End string
	Text       string
}

// WriteSRT writes a minimal SRT file from blocks and returns its path.
func WriteSRT(t testing.TB, path string, blocks ...SRTBlock) string {
	t.Helper()

	var b strings.Builder
	for i, block := range blocks {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, block.Start, block.End, block.Text)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
