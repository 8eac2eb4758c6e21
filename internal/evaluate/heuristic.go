package evaluate

import (
	"math"
	"unicode/utf8"
)

// An answer of this many runes counts as "complete" for the length proxy.
const targetAnswerRunes = 120

const (
	markSummary    = "This prototype gives a rough score based on how complete your answer looks."
	explainSummary = "Here is a straightforward outline of how to approach the question."
)

func defaultSteps() []string {
	return []string{
		"State what the question is asking you to find.",
		"Write down the key formula or relationship you will use.",
		"Substitute in the values and simplify carefully.",
		"Check that your final answer makes sense.",
	}
}

// heuristic is tier 1: local, deterministic, never fails. Completeness is a
// crude length proxy, not a judgement of correctness.
func heuristic(q Question, mode Mode, answer string) Result {
	completeness := math.Min(float64(utf8.RuneCountInString(answer))/targetAnswerRunes, 1)

	var marks *int
	if mode == ModeMark {
		m := int(math.Round(float64(q.MaxMarks) * completeness))
		marks = &m
	}

	summary := explainSummary
	if mode == ModeMark {
		summary = markSummary
	}

	return Result{
		MarksAwarded: marks,
		Feedback: Feedback{
			ScoreText: scoreText(marks, q.MaxMarks),
			Summary:   summary,
			Steps:     defaultSteps(),
		},
	}
}
