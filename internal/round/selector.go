package round

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// cooldown is the fixed wait between rounds. Throttling, not backoff.
// Variable so tests can run without the delay.
var cooldown = 500 * time.Millisecond

// runner lets tests drive the selector with scripted rounds.
type runner interface {
	Run(ctx context.Context) (*Result, error)
}

// BestOfN runs up to maxRounds rounds and returns the best-scoring result.
// Strict greater-than comparison keeps the first round that reached a
// score, so later ties lose. The first round whose evaluation passes ends
// the search early. When every round fails outright the selector reports
// exhaustion; a best-effort result without a pass is still a result.
func BestOfN(ctx context.Context, r runner, maxRounds int, log *zap.Logger) (*Result, error) {
	var best *Result
	bestScore := -1.0
	var failures []error

	for i := 1; i <= maxRounds; i++ {
		result, err := r.Run(ctx)
		if err != nil {
			log.Warn("round failed",
				zap.Int("round", i),
				zap.Int("max_rounds", maxRounds),
				zap.Error(err))
			failures = append(failures, err)
			if i < maxRounds {
				time.Sleep(cooldown)
			}
			continue
		}

		total := result.Eval.Scores.Total()
		log.Info("round complete",
			zap.Int("round", i),
			zap.Float64("score", total),
			zap.Bool("pass", result.Eval.Pass))

		if total > bestScore {
			best = result
			bestScore = total
		}

		if result.Eval.Pass {
			break
		}

		if i < maxRounds {
			time.Sleep(cooldown)
		}
	}

	if best == nil {
		return nil, &ExhaustionError{Attempts: maxRounds, Errs: failures}
	}
	return best, nil
}
