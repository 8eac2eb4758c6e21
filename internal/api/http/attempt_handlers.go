package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lcmaths/practice-api/internal/attempt"
	"github.com/lcmaths/practice-api/internal/auth"
	"github.com/lcmaths/practice-api/internal/catalog"
	"github.com/lcmaths/practice-api/internal/evaluate"
)

// CreateAttemptHandler runs the two-tier evaluation and records the outcome.
// Evaluation itself cannot fail; only storage errors surface to the caller.
func CreateAttemptHandler(c *catalog.Store, at *attempt.Store, ev *evaluate.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())

		var req struct {
			QuestionID int64  `json:"questionId"`
			AnswerText string `json:"answerText"`
			Mode       string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			req.QuestionID == 0 || strings.TrimSpace(req.AnswerText) == "" {
			writeError(w, http.StatusBadRequest, "questionId and answerText are required.")
			return
		}

		q, err := c.GetQuestion(r.Context(), req.QuestionID)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not submit attempt.")
			return
		}

		mode := evaluate.ParseMode(req.Mode)
		res := ev.Evaluate(r.Context(), evaluate.Question{
			Text:          q.Text,
			MarkingScheme: q.MarkingScheme,
			MaxMarks:      q.MaxMarks,
		}, mode, req.AnswerText)

		fb, err := json.Marshal(res.Feedback)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not submit attempt.")
			return
		}
		if _, err := at.Record(r.Context(), user.ID, q.ID, req.AnswerText, res.MarksAwarded, string(fb)); err != nil {
			writeError(w, http.StatusInternalServerError, "Could not submit attempt.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":       true,
			"feedback": res.Feedback,
		})
	}
}
