package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	result RemoteResult
	err    error
	calls  int
}

func (f *fakeRemote) Evaluate(_ context.Context, _ Question, _ Mode, _ string) (RemoteResult, error) {
	f.calls++
	return f.result, f.err
}

func intp(n int) *int { return &n }

func TestHeuristicMarksWithinRange(t *testing.T) {
	for _, maxMarks := range []int{1, 5, 10, 25, 100} {
		for _, answerLen := range []int{0, 1, 30, 60, 119, 120, 121, 500} {
			q := Question{Text: "q", MaxMarks: maxMarks}
			answer := strings.Repeat("x", answerLen)

			res := heuristic(q, ModeMark, answer)
			require.NotNil(t, res.MarksAwarded, "maxMarks=%d len=%d", maxMarks, answerLen)

			want := int(math.Round(float64(maxMarks) * math.Min(float64(answerLen)/120, 1)))
			assert.Equal(t, want, *res.MarksAwarded, "maxMarks=%d len=%d", maxMarks, answerLen)
			assert.GreaterOrEqual(t, *res.MarksAwarded, 0)
			assert.LessOrEqual(t, *res.MarksAwarded, maxMarks)
			assert.Equal(t, fmt.Sprintf("%d/%d", want, maxMarks), res.Feedback.ScoreText)
		}
	}
}

func TestHeuristicExplainModeHasNoMarks(t *testing.T) {
	res := heuristic(Question{Text: "q", MaxMarks: 10}, ModeExplain, strings.Repeat("x", 300))
	assert.Nil(t, res.MarksAwarded)
	assert.Equal(t, "Explanation only", res.Feedback.ScoreText)
	assert.Len(t, res.Feedback.Steps, 4)
}

func TestEvaluateWithoutRemoteMatchesHeuristic(t *testing.T) {
	q := Question{Text: "q", MaxMarks: 10}
	answer := strings.Repeat("a", 60)

	got := New(nil).Evaluate(context.Background(), q, ModeMark, answer)
	want := heuristic(q, ModeMark, answer)
	assert.Equal(t, want, got)
	assert.Equal(t, "5/10", got.Feedback.ScoreText)
}

func TestEvaluateRemoteErrorFallsBackToHeuristic(t *testing.T) {
	q := Question{Text: "q", MaxMarks: 10}
	answer := strings.Repeat("a", 60)
	remote := &fakeRemote{err: errors.New("boom")}

	got := New(remote).Evaluate(context.Background(), q, ModeMark, answer)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, heuristic(q, ModeMark, answer), got)
}

func TestEvaluateRemoteOverridesFieldByField(t *testing.T) {
	q := Question{Text: "q", MaxMarks: 10}
	answer := strings.Repeat("a", 60) // heuristic would award 5

	t.Run("full override", func(t *testing.T) {
		remote := &fakeRemote{result: RemoteResult{
			MarksAwarded: intp(8),
			Summary:      "Well reasoned.",
			Steps:        []string{"Step one", "Step two", "Step three"},
		}}
		got := New(remote).Evaluate(context.Background(), q, ModeMark, answer)
		require.NotNil(t, got.MarksAwarded)
		assert.Equal(t, 8, *got.MarksAwarded)
		assert.Equal(t, "8/10", got.Feedback.ScoreText)
		assert.Equal(t, "Well reasoned.", got.Feedback.Summary)
		assert.Equal(t, []string{"Step one", "Step two", "Step three"}, got.Feedback.Steps)
	})

	t.Run("partial override keeps heuristic fields", func(t *testing.T) {
		remote := &fakeRemote{result: RemoteResult{MarksAwarded: intp(9)}}
		got := New(remote).Evaluate(context.Background(), q, ModeMark, answer)
		base := heuristic(q, ModeMark, answer)
		require.NotNil(t, got.MarksAwarded)
		assert.Equal(t, 9, *got.MarksAwarded)
		assert.Equal(t, "9/10", got.Feedback.ScoreText, "score text tracks the final marks")
		assert.Equal(t, base.Feedback.Summary, got.Feedback.Summary)
		assert.Equal(t, base.Feedback.Steps, got.Feedback.Steps)
	})

	t.Run("absent remote marks keep heuristic marks", func(t *testing.T) {
		remote := &fakeRemote{result: RemoteResult{Summary: "Remote summary."}}
		got := New(remote).Evaluate(context.Background(), q, ModeMark, answer)
		require.NotNil(t, got.MarksAwarded)
		assert.Equal(t, 5, *got.MarksAwarded)
		assert.Equal(t, "5/10", got.Feedback.ScoreText)
		assert.Equal(t, "Remote summary.", got.Feedback.Summary)
	})

	t.Run("explain mode ignores remote marks", func(t *testing.T) {
		remote := &fakeRemote{result: RemoteResult{MarksAwarded: intp(7), Summary: "Outline."}}
		got := New(remote).Evaluate(context.Background(), q, ModeExplain, answer)
		assert.Nil(t, got.MarksAwarded)
		assert.Equal(t, "Explanation only", got.Feedback.ScoreText)
	})
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeExplain, ParseMode("explain"))
	assert.Equal(t, ModeMark, ParseMode("mark"))
	assert.Equal(t, ModeMark, ParseMode(""))
	assert.Equal(t, ModeMark, ParseMode("anything"))
}
