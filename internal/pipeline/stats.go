package pipeline

import (
	"fmt"
	"time"
)

// Status is the final state of one FileJob.
type Status string

const (
	StatusConverted Status = "converted"
	StatusFailed    Status = "failed"
	StatusPlanned   Status = "dry-run"
)

// FileJob pairs one input with its output path for one conversion.
type FileJob struct {
	Seq    int // 1-based position in the listing.
	Input  string
	Output string
}

// FileOutcome is the result of one FileJob.
type FileOutcome struct {
	FileJob
	Status      Status
	Err         error
	Elapsed     time.Duration
	OutputBytes int64
	UploadKey   string // Object key when the GIF was uploaded.
}

// BatchResult is the aggregate outcome of one ConvertAll run.
type BatchResult struct {
	RunID       string
	Considered  int // Recognized files found in the input directory.
	Outcomes    []FileOutcome
	Interrupted bool // The context was cancelled before every file was attempted.
	Started     time.Time
	Elapsed     time.Duration
}

// Succeeded counts converted files.
func (r *BatchResult) Succeeded() int { return r.count(StatusConverted) }

// Failed counts failed files.
func (r *BatchResult) Failed() int { return r.count(StatusFailed) }

// Planned counts dry-run entries.
func (r *BatchResult) Planned() int { return r.count(StatusPlanned) }

// Attempted is the number of files that reached the converter or dry-run.
func (r *BatchResult) Attempted() int { return len(r.Outcomes) }

// OutputBytes sums the sizes of all produced GIFs.
func (r *BatchResult) OutputBytes() int64 {
	var n int64
	for _, o := range r.Outcomes {
		n += o.OutputBytes
	}
	return n
}

func (r *BatchResult) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// String renders a one-line digest of the result.
func (r *BatchResult) String() string {
	return fmt.Sprintf("run %s: %d considered, %d converted, %d failed", r.RunID, r.Considered, r.Succeeded(), r.Failed())
}
