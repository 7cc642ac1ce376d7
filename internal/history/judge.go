package history

import (
	"context"
	"fmt"

	"ideaforge/internal/extract"
	"ideaforge/internal/oracle"
	"ideaforge/internal/round"

	"go.uber.org/zap"
)

// Verdict winners.
const (
	WinnerPrev = "prev"
	WinnerLast = "last"
)

// tempJudge keeps the comparison deterministic.
const tempJudge = 0.2

// ScorePair holds the judge's per-record scores.
type ScorePair struct {
	Prev round.Scores `json:"prev"`
	Last round.Scores `json:"last"`
}

// JudgeVerdict is the outcome of comparing the two newest records.
type JudgeVerdict struct {
	Winner string    `json:"winner"`
	Scores ScorePair `json:"scores"`
	Why    string    `json:"why"`
}

// PruneJudgmentError reports that the comparison oracle call failed or
// returned unusable output. Non-fatal: pruning is skipped for the run.
type PruneJudgmentError struct {
	Err error
}

func (e *PruneJudgmentError) Error() string {
	return fmt.Sprintf("prune judgment failed: %v", e.Err)
}

func (e *PruneJudgmentError) Unwrap() error { return e.Err }

// Judge compares two artifacts with one low-temperature oracle call.
type Judge struct {
	client oracle.Client
	log    *zap.Logger
}

// NewJudge creates a pairwise judge.
func NewJudge(client oracle.Client, log *zap.Logger) *Judge {
	return &Judge{client: client, log: log}
}

const judgeSystemPrompt = "You are a strict proposal review judge. You may only " +
	"output JSON in the requested shape."

func judgePrompt(prev, last string) string {
	return fmt.Sprintf(`Compare the two proposals and decide which one is better overall.
All four axes carry equal weight:
- novelty
- fit
- feasibility
- impact

Proposal A (prev):
%s

Proposal B (last):
%s

Output JSON only:
{
  "winner": "prev" or "last",
  "scores": {
    "prev": {"novelty":0-10,"fit":0-10,"feasibility":0-10,"impact":0-10},
    "last": {"novelty":0-10,"fit":0-10,"feasibility":0-10,"impact":0-10}
  },
  "why": "one-sentence reason"
}
Do not output anything else.`, prev, last)
}

// Compare judges prev against last and returns the verdict.
func (j *Judge) Compare(ctx context.Context, prev, last string) (*JudgeVerdict, error) {
	text, err := j.client.Complete(ctx, judgeSystemPrompt, judgePrompt(prev, last), tempJudge)
	if err != nil {
		return nil, err
	}

	var verdict JudgeVerdict
	if err := extract.Object(text, &verdict); err != nil {
		return nil, err
	}

	if verdict.Winner != WinnerPrev && verdict.Winner != WinnerLast {
		return nil, fmt.Errorf("judge returned invalid winner %q", verdict.Winner)
	}

	j.log.Debug("pairwise judgment complete",
		zap.String("winner", verdict.Winner),
		zap.Float64("prev_score", verdict.Scores.Prev.Total()),
		zap.Float64("last_score", verdict.Scores.Last.Total()))
	return &verdict, nil
}
