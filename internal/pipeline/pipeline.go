// Package pipeline wires the whole run together: depth guard, best-of-N
// round selection, history append, and pairwise pruning, in that order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"ideaforge/internal/config"
	"ideaforge/internal/history"
	"ideaforge/internal/oracle"
	"ideaforge/internal/round"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// excerptLen caps the log excerpt stored with each history record.
const excerptLen = 4000

// Pipeline runs the generation loop against one history file. One
// instance per process; concurrent runs against the same history file
// would corrupt the read-modify-write cycle and are out of scope.
type Pipeline struct {
	cfg    *config.Config
	client oracle.Client
	log    *zap.Logger
}

// New creates a pipeline.
func New(cfg *config.Config, client oracle.Client, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, client: client, log: log}
}

// Report summarizes a completed (or skipped) run.
type Report struct {
	// Skipped is true when the chain-depth guard stopped the run before
	// any oracle call. Nothing else in the report is set.
	Skipped bool

	Artifact string
	Eval     round.Evaluation
	Branch   string
}

// Run executes one pipeline run. The guard is checked exactly once, first;
// exhaustion surfaces as an error and leaves the history untouched; a
// failed prune judgment is logged and tolerated.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	store := history.Load(p.cfg.HistoryPath, p.log)

	if store.AtDepthCeiling(p.cfg.MaxChainDepth) {
		p.log.Info("chain depth ceiling reached, skipping run to avoid an infinite loop",
			zap.Int("chain_depth", store.LastChainDepth()),
			zap.Int("max_chain_depth", p.cfg.MaxChainDepth))
		return &Report{Skipped: true}, nil
	}
	depth := store.LastChainDepth()

	runner := round.NewRunner(p.client, p.cfg.Brief, p.log)
	best, err := round.BestOfN(ctx, runner, p.cfg.MaxRounds, p.log)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := history.Record{
		ID:          uuid.NewString(),
		Timestamp:   now.Format(time.RFC3339),
		Branch:      BranchName(now),
		ChainDepth:  depth + 1,
		FinalOutput: best.Artifact,
		LogExcerpt:  logExcerpt(best.Eval),
	}
	store.Append(rec)

	if err := store.Prune(ctx, history.NewJudge(p.client, p.log)); err != nil {
		// The new record stays either way; this run just skips pruning.
		p.log.Warn("pruning skipped", zap.Error(err))
	}

	if err := store.Save(); err != nil {
		return nil, err
	}

	p.log.Info("run recorded",
		zap.String("branch", rec.Branch),
		zap.Int("chain_depth", rec.ChainDepth),
		zap.Float64("score", best.Eval.Scores.Total()),
		zap.Bool("pass", best.Eval.Pass))

	return &Report{Artifact: best.Artifact, Eval: best.Eval, Branch: rec.Branch}, nil
}

// BranchName derives the branch identifier for a run started at t.
func BranchName(t time.Time) string {
	return "idea-" + t.UTC().Format("20060102-150405") + "-utc"
}

func logExcerpt(eval round.Evaluation) string {
	s := fmt.Sprintf("aggregate %.0f/40 (novelty %.0f, fit %.0f, feasibility %.0f, impact %.0f) pass=%v: %s",
		eval.Scores.Total(), eval.Scores.Novelty, eval.Scores.Fit,
		eval.Scores.Feasibility, eval.Scores.Impact, eval.Pass, eval.Why)
	if len(s) > excerptLen {
		s = s[:excerptLen]
	}
	return s
}
