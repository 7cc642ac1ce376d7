package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOracle returns one canned completion or error and records the call.
type fakeOracle struct {
	response string
	err      error
	calls    int
	lastUser string
	lastTemp float64
}

func (f *fakeOracle) Complete(_ context.Context, _, user string, temperature float64) (string, error) {
	f.calls++
	f.lastUser = user
	f.lastTemp = temperature
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const verdictLastWins = `{"winner":"last","scores":{"prev":{"novelty":5,"fit":5,"feasibility":5,"impact":5},"last":{"novelty":8,"fit":8,"feasibility":8,"impact":8}},"why":"clearly stronger"}`

const verdictPrevWins = `{"winner":"prev","scores":{"prev":{"novelty":8,"fit":8,"feasibility":8,"impact":8},"last":{"novelty":5,"fit":5,"feasibility":5,"impact":5}},"why":"incumbent holds"}`

func twoRecordStore(t *testing.T) *Store {
	t.Helper()
	s := Load(tempPath(t), zap.NewNop())
	s.Append(Record{ID: "r1", Branch: "idea-a", FinalOutput: "older idea"})
	s.Append(Record{ID: "r2", Branch: "idea-b", FinalOutput: "newer idea"})
	return s
}

func TestJudgeCompare(t *testing.T) {
	oracle := &fakeOracle{response: "```json\n" + verdictLastWins + "\n```"}
	judge := NewJudge(oracle, zap.NewNop())

	verdict, err := judge.Compare(context.Background(), "older idea", "newer idea")
	require.NoError(t, err)

	assert.Equal(t, WinnerLast, verdict.Winner)
	assert.InDelta(t, 20, verdict.Scores.Prev.Total(), 1e-9)
	assert.InDelta(t, 32, verdict.Scores.Last.Total(), 1e-9)
	assert.Equal(t, "clearly stronger", verdict.Why)

	// Both artifacts go into the prompt, and the call runs cold.
	assert.Contains(t, oracle.lastUser, "older idea")
	assert.Contains(t, oracle.lastUser, "newer idea")
	assert.InDelta(t, tempJudge, oracle.lastTemp, 1e-9)
}

func TestJudgeCompareInvalidWinner(t *testing.T) {
	oracle := &fakeOracle{response: `{"winner":"both","scores":{},"why":""}`}
	judge := NewJudge(oracle, zap.NewNop())

	_, err := judge.Compare(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid winner")
}

func TestPruneWinnerLastRemovesPrev(t *testing.T) {
	s := twoRecordStore(t)
	judge := NewJudge(&fakeOracle{response: verdictLastWins}, zap.NewNop())

	require.NoError(t, s.Prune(context.Background(), judge))

	require.Equal(t, 1, s.Len())
	last, _ := s.Last()
	assert.Equal(t, "r2", last.ID)
	require.NotNil(t, last.Judge, "verdict must be attached to the surviving record")
	assert.Equal(t, WinnerLast, last.Judge.Winner)
}

func TestPruneWinnerPrevKeepsBoth(t *testing.T) {
	s := twoRecordStore(t)
	judge := NewJudge(&fakeOracle{response: verdictPrevWins}, zap.NewNop())

	require.NoError(t, s.Prune(context.Background(), judge))

	require.Equal(t, 2, s.Len())
	last, _ := s.Last()
	require.NotNil(t, last.Judge)
	assert.Equal(t, WinnerPrev, last.Judge.Winner)
}

func TestPruneJudgeFailureIsNonFatal(t *testing.T) {
	s := twoRecordStore(t)
	judge := NewJudge(&fakeOracle{err: errors.New("oracle unreachable")}, zap.NewNop())

	err := s.Prune(context.Background(), judge)

	var pjErr *PruneJudgmentError
	require.True(t, errors.As(err, &pjErr), "want *PruneJudgmentError, got %T", err)
	assert.Equal(t, 2, s.Len(), "nothing may be removed when the judgment fails")
	last, _ := s.Last()
	assert.Nil(t, last.Judge)
}

func TestPruneUnparsableVerdict(t *testing.T) {
	s := twoRecordStore(t)
	judge := NewJudge(&fakeOracle{response: "I prefer the newer one."}, zap.NewNop())

	err := s.Prune(context.Background(), judge)

	var pjErr *PruneJudgmentError
	require.True(t, errors.As(err, &pjErr), "want *PruneJudgmentError, got %T", err)
	assert.Equal(t, 2, s.Len())
}

func TestPruneNeedsTwoRecords(t *testing.T) {
	oracle := &fakeOracle{response: verdictLastWins}
	judge := NewJudge(oracle, zap.NewNop())

	s := Load(tempPath(t), zap.NewNop())
	require.NoError(t, s.Prune(context.Background(), judge))

	s.Append(Record{ID: "solo", FinalOutput: "alone"})
	require.NoError(t, s.Prune(context.Background(), judge))

	assert.Zero(t, oracle.calls, "no judgment call with fewer than two records")
	assert.Equal(t, 1, s.Len())
}

func TestPruneOnlyComparesNewestPair(t *testing.T) {
	s := Load(tempPath(t), zap.NewNop())
	s.Append(Record{ID: "r1", FinalOutput: "ancient"})
	s.Append(Record{ID: "r2", FinalOutput: "older"})
	s.Append(Record{ID: "r3", FinalOutput: "newest"})

	oracle := &fakeOracle{response: verdictLastWins}
	require.NoError(t, s.Prune(context.Background(), NewJudge(oracle, zap.NewNop())))

	assert.NotContains(t, oracle.lastUser, "ancient")
	require.Equal(t, 2, s.Len())
	records := s.Records()
	assert.Equal(t, "r1", records[0].ID, "older history is never touched")
	assert.Equal(t, "r3", records[1].ID)
}
