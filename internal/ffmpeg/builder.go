package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/gifbatch/internal/convert"
)

// Build constructs the complete ffmpeg argument slice for one invocation,
// binary first. The skeleton is fixed:
//
//	<bin> -hide_banner -nostdin -y -loglevel error -i <in> [-vf <filters>]
//	      -f gif -progress pipe:2 -nostats <out>
//
// -y is always present: collisions are resolved before the engine runs.
func Build(bin string, inv convert.Invocation) []string {
	args := make([]string, 0, 20)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// --- Input ---
	args = append(args, "-i", inv.InputPath)

	// --- Video filter chain ---
	if vf := VideoFilters(inv); vf != "" {
		args = append(args, "-vf", vf)
	}

	// --- Output ---
	format := inv.Format
	if format == "" {
		format = convert.OutputFormat
	}
	args = append(args, "-f", format, "-progress", "pipe:2", "-nostats", inv.OutputPath)
	return args
}

// VideoFilters returns the -vf chain for inv: a width-constrained scale
// that keeps the aspect ratio (even height), then the frame rate. Empty when
// both options are left to the engine.
func VideoFilters(inv convert.Invocation) string {
	var parts []string
	if inv.Width > 0 {
		parts = append(parts, "scale="+strconv.Itoa(inv.Width)+":-2")
	}
	if inv.FrameRate > 0 {
		parts = append(parts, "fps="+strconv.Itoa(inv.FrameRate))
	}
	return strings.Join(parts, ",")
}
