package ffmpeg

import "context"

// Extraction modes.
const (
	ModeCopy     = "copy"
	ModeReencode = "reencode"
)

// ExtractRequest asks for [Start, Start+Duration) of Source to be written
// to Output.
type ExtractRequest struct {
	Source   string
	Start    float64
	Duration float64
	Mode     string
	Output   string
}

// Tool is the media capability consumed by the assembly orchestrator.
type Tool interface {
	Extract(ctx context.Context, req ExtractRequest) error
	Concat(ctx context.Context, inputs []string, output string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}
