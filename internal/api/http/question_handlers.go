package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lcmaths/practice-api/internal/attempt"
	"github.com/lcmaths/practice-api/internal/auth"
	"github.com/lcmaths/practice-api/internal/catalog"
)

const recentAttemptLimit = 3

func QuestionDetailHandler(c *catalog.Store, at *attempt.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}

		q, err := c.GetQuestion(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load question.")
			return
		}

		topic, err := c.GetTopic(r.Context(), q.TopicID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load question.")
			return
		}

		displayNumber, err := c.DisplayNumber(r.Context(), q)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load question.")
			return
		}

		attempts, err := at.RecentForQuestion(r.Context(), user.ID, q.ID, recentAttemptLimit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load question.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"question": map[string]interface{}{
				"id":            q.ID,
				"text":          q.Text,
				"max_marks":     q.MaxMarks,
				"displayNumber": displayNumber,
			},
			"topic": map[string]interface{}{
				"id":    topic.ID,
				"title": topic.Title,
				"level": topic.Level,
				"paper": topic.Paper,
			},
			"attempts": attempts,
		})
	}
}
