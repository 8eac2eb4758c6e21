// Package evaluate turns a learner's submitted answer into marks and
// structured feedback. A deterministic heuristic always produces a usable
// result; when a remote model is configured it is asked for richer feedback,
// which overrides the heuristic field by field. The remote path is strictly
// best effort: any failure falls back to the heuristic and the caller never
// sees an error.
package evaluate

import (
	"context"
	"fmt"
	"log"
)

type Mode string

const (
	ModeMark    Mode = "mark"
	ModeExplain Mode = "explain"
)

// ParseMode defaults anything that is not "explain" to marking.
func ParseMode(s string) Mode {
	if s == string(ModeExplain) {
		return ModeExplain
	}
	return ModeMark
}

// Question is the minimal view a grader needs.
type Question struct {
	Text          string
	MarkingScheme string
	MaxMarks      int
}

type Feedback struct {
	ScoreText string   `json:"scoreText"`
	Summary   string   `json:"summary"`
	Steps     []string `json:"steps"`
}

type Result struct {
	MarksAwarded *int
	Feedback     Feedback
}

// RemoteResult carries the validated fields of a remote evaluation. Absent
// fields stay zero and do not override the heuristic.
type RemoteResult struct {
	MarksAwarded *int
	Summary      string
	Steps        []string
}

// Remote is the tier-2 strategy. Implementations must bound their own
// latency; an error means "unavailable", never "wrong answer".
type Remote interface {
	Evaluate(ctx context.Context, q Question, mode Mode, answer string) (RemoteResult, error)
}

type Evaluator struct {
	remote Remote
}

// New builds an evaluator. A nil remote disables tier 2.
func New(remote Remote) *Evaluator { return &Evaluator{remote: remote} }

// Evaluate never fails: the heuristic result stands wherever the remote is
// disabled, errors, or returns a partially usable payload.
func (e *Evaluator) Evaluate(ctx context.Context, q Question, mode Mode, answer string) Result {
	res := heuristic(q, mode, answer)
	if e.remote == nil {
		return res
	}

	rr, err := e.remote.Evaluate(ctx, q, mode, answer)
	if err != nil {
		log.Printf("evaluate: remote feedback unavailable: %v", err)
		return res
	}

	if mode == ModeMark && rr.MarksAwarded != nil {
		res.MarksAwarded = rr.MarksAwarded
	}
	if rr.Summary != "" {
		res.Feedback.Summary = rr.Summary
	}
	if len(rr.Steps) > 0 {
		res.Feedback.Steps = rr.Steps
	}
	res.Feedback.ScoreText = scoreText(res.MarksAwarded, q.MaxMarks)
	return res
}

func scoreText(marks *int, maxMarks int) string {
	if marks == nil {
		return "Explanation only"
	}
	return fmt.Sprintf("%d/%d", *marks, maxMarks)
}
