// Package round runs one generation round against the oracle: stimulus
// words, candidates, a finalized artifact, and a self-evaluation. The
// selector repeats rounds and keeps the strongest artifact.
package round

import (
	"fmt"
	"strings"
)

// Required stimulus cardinalities. The ten words seed candidate
// generation one to one, so the shape is enforced strictly.
const (
	wantNouns     = 3
	wantAbstracts = 3
	wantActions   = 2
	wantCross     = 2
)

// StimulusSet is the high-entropy word bank for one round.
type StimulusSet struct {
	Nouns     []string `json:"nouns"`
	Abstracts []string `json:"abstracts"`
	Actions   []string `json:"actions"`
	Cross     []string `json:"cross"`
}

// Validate enforces the 3/3/2/2 shape.
func (s *StimulusSet) Validate() error {
	checks := []struct {
		field string
		got   int
		want  int
	}{
		{"nouns", len(s.Nouns), wantNouns},
		{"abstracts", len(s.Abstracts), wantAbstracts},
		{"actions", len(s.Actions), wantActions},
		{"cross", len(s.Cross), wantCross},
	}
	for _, c := range checks {
		if c.got != c.want {
			return &ValidationError{
				Field:  c.field,
				Reason: fmt.Sprintf("want %d words, got %d", c.want, c.got),
			}
		}
	}
	return nil
}

// Words returns all ten stimulus words in seeding order.
func (s *StimulusSet) Words() []string {
	words := make([]string, 0, wantNouns+wantAbstracts+wantActions+wantCross)
	words = append(words, s.Nouns...)
	words = append(words, s.Abstracts...)
	words = append(words, s.Actions...)
	words = append(words, s.Cross...)
	return words
}

// Candidate is one proposal derived from one stimulus word.
type Candidate struct {
	StimulusWord       string `json:"stimulus_word"`
	WordTraits         string `json:"word_traits"`
	Mapping            string `json:"mapping"`
	Proposal           string `json:"proposal"`
	First48hExperiment string `json:"first_48h_experiment"`
}

// Scores holds the four evaluation axes, each 0-10.
type Scores struct {
	Novelty     float64 `json:"novelty"`
	Fit         float64 `json:"fit"`
	Feasibility float64 `json:"feasibility"`
	Impact      float64 `json:"impact"`
}

// Total is the aggregate score, range 0-40. Sub-scores the model omitted
// unmarshal to zero, so the aggregate is always computable.
func (s Scores) Total() float64 {
	return s.Novelty + s.Fit + s.Feasibility + s.Impact
}

// Evaluation is the model's self-assessment of a finalized artifact.
type Evaluation struct {
	Pass   bool   `json:"pass"`
	Scores Scores `json:"scores"`
	Why    string `json:"why"`
}

// Result is the output of one successful round.
type Result struct {
	Artifact string
	Eval     Evaluation
}

// ValidationError reports oracle JSON that parsed but lacks the required
// structure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid stimulus set: %s: %s", e.Field, e.Reason)
}

// ExhaustionError reports that every round in the budget failed outright.
type ExhaustionError struct {
	Attempts int
	Errs     []error
}

func (e *ExhaustionError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("all %d rounds failed: %s", e.Attempts, strings.Join(msgs, "; "))
}

func (e *ExhaustionError) Unwrap() []error { return e.Errs }
