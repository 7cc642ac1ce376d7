package round

import (
	"context"
	"strings"

	"ideaforge/internal/extract"
	"ideaforge/internal/oracle"

	"go.uber.org/zap"
)

// Stage temperatures. Generation stages run hot for divergence, the
// self-evaluation runs cold so structured answers stay stable.
const (
	tempStimulus   = 1.0
	tempCandidates = 0.95
	tempFinalize   = 0.75
	tempEvaluate   = 0.2
)

// Runner executes the four-stage round. Stages are strictly sequential;
// each one's input is the previous one's output.
type Runner struct {
	client oracle.Client
	brief  string
	log    *zap.Logger
}

// NewRunner creates a round runner for the given brief.
func NewRunner(client oracle.Client, brief string, log *zap.Logger) *Runner {
	return &Runner{client: client, brief: brief, log: log}
}

// Run performs one full round. Any stage failure aborts the round; the
// caller decides whether to try again.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	stimuli, err := r.stimulusStage(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := r.candidateStage(ctx, stimuli.Words())
	if err != nil {
		return nil, err
	}

	artifact, err := r.finalizeStage(ctx, candidates)
	if err != nil {
		return nil, err
	}

	eval, err := r.evaluateStage(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return &Result{Artifact: artifact, Eval: eval}, nil
}

func (r *Runner) stimulusStage(ctx context.Context) (*StimulusSet, error) {
	text, err := r.client.Complete(ctx, systemPrompt, stimulusPrompt(r.brief), tempStimulus)
	if err != nil {
		return nil, err
	}

	var set StimulusSet
	if err := extract.Object(text, &set); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	r.log.Debug("stimulus stage complete", zap.Strings("words", set.Words()))
	return &set, nil
}

func (r *Runner) candidateStage(ctx context.Context, words []string) ([]Candidate, error) {
	text, err := r.client.Complete(ctx, systemPrompt, candidatePrompt(r.brief, words), tempCandidates)
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates(text)
	if err != nil {
		return nil, err
	}

	// One candidate per word is the ideal; the oracle sometimes over- or
	// under-produces and that is tolerable.
	if len(candidates) != len(words) {
		r.log.Warn("candidate count does not match stimulus words",
			zap.Int("candidates", len(candidates)),
			zap.Int("words", len(words)))
	}
	return candidates, nil
}

// parseCandidates accepts either a bare JSON array of candidates or an
// object wrapping it under a "candidates" key. Models produce both.
func parseCandidates(text string) ([]Candidate, error) {
	var candidates []Candidate
	if err := extract.Array(text, &candidates); err == nil {
		return candidates, nil
	}

	var wrapped struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := extract.Object(text, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Candidates, nil
}

func (r *Runner) finalizeStage(ctx context.Context, candidates []Candidate) (string, error) {
	text, err := r.client.Complete(ctx, systemPrompt, finalizePrompt(candidates), tempFinalize)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *Runner) evaluateStage(ctx context.Context, artifact string) (Evaluation, error) {
	text, err := r.client.Complete(ctx, systemPrompt, evaluatePrompt(artifact), tempEvaluate)
	if err != nil {
		return Evaluation{}, err
	}

	var eval Evaluation
	if err := extract.Object(text, &eval); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}
