// Package ledger keeps a durable record of per-file outcomes in a pebble
// store. Records are keyed run/<runID>/<seq>, so one run reads back in
// processing order. The ledger is write-only from the batch's point of view:
// it is never consulted to skip files.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"

	"github.com/backmassage/gifbatch/internal/pipeline"
)

// Record is one persisted FileOutcome.
type Record struct {
	RunID       string    `json:"run_id"`
	Seq         int       `json:"seq"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	OutputBytes int64     `json:"output_bytes"`
	UploadKey   string    `json:"upload_key,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ErrNotFound is returned by Get for an unknown run/seq.
var ErrNotFound = errors.New("ledger record not found")

// Store is an open ledger.
type Store struct {
	db  *pebble.DB
	now func() time.Time
}

var _ pipeline.Recorder = (*Store)(nil)

// Open opens (or creates) the ledger at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", dir, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put writes rec synchronously.
func (s *Store) Put(rec Record) error {
	if s.db == nil {
		return errors.New("ledger is closed")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal ledger record: %w", err)
	}
	return s.db.Set(key(rec.RunID, rec.Seq), data, pebble.Sync)
}

// RecordOutcome implements [pipeline.Recorder].
func (s *Store) RecordOutcome(runID string, o pipeline.FileOutcome) error {
	rec := Record{
		RunID:       runID,
		Seq:         o.Seq,
		Input:       o.Input,
		Output:      o.Output,
		Status:      string(o.Status),
		ElapsedMs:   o.Elapsed.Milliseconds(),
		OutputBytes: o.OutputBytes,
		UploadKey:   o.UploadKey,
		Timestamp:   s.now().UTC(),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return s.Put(rec)
}

// Get reads one record.
func (s *Store) Get(runID string, seq int) (*Record, error) {
	if s.db == nil {
		return nil, errors.New("ledger is closed")
	}
	data, closer, err := s.db.Get(key(runID, seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal ledger record: %w", err)
	}
	return &rec, nil
}

// ListRun returns every record of runID in sequence order.
func (s *Store) ListRun(runID string) ([]Record, error) {
	if s.db == nil {
		return nil, errors.New("ledger is closed")
	}
	lower := runPrefix(runID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(lower),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // Skip invalid records
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}

func runPrefix(runID string) []byte {
	return []byte("run/" + runID + "/")
}

func key(runID string, seq int) []byte {
	return []byte(fmt.Sprintf("run/%s/%06d", runID, seq))
}

// upperBound returns the smallest key greater than every key with prefix p.
func upperBound(p []byte) []byte {
	end := make([]byte, len(p))
	copy(end, p)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
