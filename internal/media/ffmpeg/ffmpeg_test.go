package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"subsplice/internal/services"
)

type recordedCall struct {
	name string
	args []string
}

type recorder struct {
	calls  []recordedCall
	output []byte
	err    error
	onCall func(args []string)
}

func (r *recorder) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, recordedCall{name: name, args: append([]string(nil), args...)})
	if r.onCall != nil {
		r.onCall(args)
	}
	return r.output, r.err
}

func TestExtractArgs(t *testing.T) {
	tests := []struct {
		name    string
		req     ExtractRequest
		want    []string
		wantErr bool
	}{
		{
			name: "copy",
			req:  ExtractRequest{Source: "in.mp4", Start: 12.5, Duration: 2, Mode: ModeCopy, Output: "seg.mp4"},
			want: []string{"-y", "-ss", "12.500", "-i", "in.mp4", "-t", "2.000", "-c", "copy", "-avoid_negative_ts", "1", "-loglevel", "error", "seg.mp4"},
		},
		{
			name: "reencode",
			req:  ExtractRequest{Source: "in.mp4", Start: 0, Duration: 1.25, Mode: ModeReencode, Output: "seg.mp4"},
			want: []string{"-y", "-ss", "0.000", "-i", "in.mp4", "-t", "1.250", "-c:v", "libx264", "-c:a", "aac", "-preset", "fast", "-crf", "23", "-loglevel", "error", "seg.mp4"},
		},
		{name: "unknown mode", req: ExtractRequest{Source: "a", Duration: 1, Mode: "lossy", Output: "b"}, wantErr: true},
		{name: "zero duration", req: ExtractRequest{Source: "a", Duration: 0, Output: "b"}, wantErr: true},
		{name: "missing output", req: ExtractRequest{Source: "a", Duration: 1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractArgs(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractArgs err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractArgs =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestExtractUsesRunner(t *testing.T) {
	rec := &recorder{}
	tool := New("/opt/ffmpeg", "", nil)
	tool.WithCommandRunner(rec.run)

	err := tool.Extract(context.Background(), ExtractRequest{Source: "in.mp4", Start: 1, Duration: 2, Output: "out.mp4"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0].name != "/opt/ffmpeg" {
		t.Fatalf("unexpected calls %+v", rec.calls)
	}

	rec.err = errors.New("exit status 1")
	err = tool.Extract(context.Background(), ExtractRequest{Source: "in.mp4", Start: 1, Duration: 2, Output: "out.mp4"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	err = tool.Extract(context.Background(), ExtractRequest{Source: "in.mp4", Duration: -1, Output: "out.mp4"})
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestConcatWritesOrderedList(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		filepath.Join(dir, "segment_0002.mp4"),
		filepath.Join(dir, "it's_0001.mp4"),
	}
	output := filepath.Join(dir, "final.mp4")

	var listContent string
	rec := &recorder{onCall: func(args []string) {
		for i, a := range args {
			if a == "-i" {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					t.Errorf("read list: %v", err)
				}
				listContent = string(data)
			}
		}
	}}
	tool := New("", "", nil)
	tool.WithCommandRunner(rec.run)

	if err := tool.Concat(context.Background(), inputs, output); err != nil {
		t.Fatalf("Concat: %v", err)
	}
	want := "file '" + inputs[0] + "'\nfile '" + strings.ReplaceAll(inputs[1], "'", `'\''`) + "'\n"
	if listContent != want {
		t.Fatalf("list =\n%s\nwant\n%s", listContent, want)
	}
	args := rec.calls[0].args
	if args[len(args)-1] != output || !strings.Contains(strings.Join(args, " "), "-f concat -safe 0") {
		t.Fatalf("unexpected concat args %v", args)
	}
	if _, err := os.Stat(output + ".concat.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected list file removed, stat err = %v", err)
	}

	if err := tool.Concat(context.Background(), nil, output); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty concat, got %v", err)
	}
}

func TestProbeDuration(t *testing.T) {
	rec := &recorder{output: []byte(`{"format":{"duration":"42.042"}}`)}
	tool := New("", "my-ffprobe", nil)
	tool.WithCommandRunner(rec.run)

	got, err := tool.ProbeDuration(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("ProbeDuration: %v", err)
	}
	if got != 42.042 || rec.calls[0].name != "my-ffprobe" {
		t.Fatalf("ProbeDuration = %v via %q", got, rec.calls[0].name)
	}

	rec.output = []byte(`{"format":{}}`)
	if _, err := tool.ProbeDuration(context.Background(), "in.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
