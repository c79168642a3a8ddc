package ffmpeg

import (
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/backmassage/gifbatch/internal/convert"
)

// Pre-compiled regexes for classifying ffmpeg stderr. Checked in order by
// [Classify]; the first match wins.
var (
	rePermission = regexp.MustCompile(
		`(?i)Permission denied|Operation not permitted|Read-only file system`)

	reMissingInput = regexp.MustCompile(
		`(?i)No such file or directory`)

	reEncoderUnavailable = regexp.MustCompile(
		`(?i)Unknown encoder|Encoder \S+ not found|` +
			`Requested output format '\S+' is not a suitable output format|` +
			`Unable to find a suitable output format|` +
			`Automatic encoder selection failed`)

	reInvalidData = regexp.MustCompile(
		`(?i)Invalid data found when processing input|moov atom not found|` +
			`could not find codec parameters|Invalid argument|` +
			`does not contain any stream|Output file #0 does not contain any stream|` +
			`Error opening input`)
)

// Classify maps ffmpeg stderr to a failure reason.
func Classify(stderr string) convert.Reason {
	switch {
	case rePermission.MatchString(stderr):
		return convert.ReasonPermission
	case reMissingInput.MatchString(stderr):
		return convert.ReasonMissingInput
	case reEncoderUnavailable.MatchString(stderr):
		return convert.ReasonEncoderUnavailable
	case reInvalidData.MatchString(stderr):
		return convert.ReasonInvalidData
	default:
		return convert.ReasonUnknown
	}
}

// ExecError is a failed ffmpeg invocation: the process error plus the tail
// of its stderr.
type ExecError struct {
	Err    error
	Stderr string
}

func (e *ExecError) Error() string {
	if last := lastLine(e.Stderr); last != "" {
		return "ffmpeg: " + e.Err.Error() + ": " + last
	}
	return "ffmpeg: " + e.Err.Error()
}

func (e *ExecError) Unwrap() error { return e.Err }

// Reason implements [convert.Classifier].
func (e *ExecError) Reason() convert.Reason {
	switch {
	case errors.Is(e.Err, exec.ErrNotFound), errors.Is(e.Err, os.ErrNotExist):
		return convert.ReasonEncoderUnavailable
	case errors.Is(e.Err, os.ErrPermission):
		return convert.ReasonPermission
	}
	return Classify(e.Stderr)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
