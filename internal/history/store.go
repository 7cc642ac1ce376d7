// Package history persists the outcome of every pipeline run as a JSON
// array on disk. The file is read in full and rewritten in full; there is
// no incremental append format. After each append the two newest records
// are compared once and the loser of that single pairwise judgment is
// pruned.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Record is one persisted pipeline run. It is created on append, mutated
// only to attach a judge verdict, and removed only by pruning.
type Record struct {
	ID          string        `json:"id"`
	Timestamp   string        `json:"timestamp_utc"`
	Branch      string        `json:"branch"`
	ChainDepth  int           `json:"chain_depth"`
	FinalOutput string        `json:"final_output"`
	LogExcerpt  string        `json:"log_excerpt,omitempty"`
	Judge       *JudgeVerdict `json:"judge,omitempty"`
}

// Store is the in-memory view of the history file.
type Store struct {
	path    string
	records []Record
	log     *zap.Logger
}

// Load reads the history file at path. A missing or corrupt file yields an
// empty store: a broken history must never block the pipeline from
// starting.
func Load(path string, log *zap.Logger) *Store {
	s := &Store{path: path, log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read history file, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return s
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		log.Warn("history file is corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		s.records = nil
	}
	return s
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Records returns a copy of the record sequence, oldest first.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Last returns the newest record, if any.
func (s *Store) Last() (Record, bool) {
	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Append adds a record to the end of the sequence.
func (s *Store) Append(rec Record) {
	s.records = append(s.records, rec)
}

// Save rewrites the history file with stable two-space indentation.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	records := s.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// Prune compares the two newest records via one oracle judgment and
// deletes the older one when the newer wins. The verdict is attached to
// the newest record before any deletion decision. Only the newest pair is
// ever compared; older entries were vetted by earlier runs.
//
// A failed judgment returns a *PruneJudgmentError and leaves the sequence
// untouched; the caller appends regardless and simply skips pruning.
func (s *Store) Prune(ctx context.Context, judge *Judge) error {
	if len(s.records) < 2 {
		return nil
	}

	prev := s.records[len(s.records)-2]
	last := s.records[len(s.records)-1]

	verdict, err := judge.Compare(ctx, prev.FinalOutput, last.FinalOutput)
	if err != nil {
		return &PruneJudgmentError{Err: err}
	}

	s.records[len(s.records)-1].Judge = verdict

	if verdict.Winner == WinnerLast {
		s.log.Info("new record judged better, pruning previous",
			zap.String("pruned_branch", prev.Branch),
			zap.String("kept_branch", last.Branch))
		s.records = append(s.records[:len(s.records)-2], s.records[len(s.records)-1])
	}
	return nil
}
