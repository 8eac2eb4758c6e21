package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lcmaths/practice-api/internal/auth"
	"github.com/lcmaths/practice-api/internal/catalog"
)

func ListTopicsHandler(c *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())

		if err := c.EnsureSeed(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topics.")
			return
		}
		topics, err := c.ListTopicsWithProgress(r.Context(), user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topics.")
			return
		}

		summary := "No topics yet."
		if n := len(topics); n == 1 {
			summary = "You have 1 topic to explore."
		} else if n > 1 {
			summary = fmt.Sprintf("You have %d topics to explore.", n)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"topics":      topics,
			"summaryText": summary,
		})
	}
}

type topicQuestion struct {
	ID            int64   `json:"id"`
	Text          string  `json:"text"`
	MaxMarks      int     `json:"max_marks"`
	DisplayNumber int     `json:"displayNumber"`
	LastMarkText  *string `json:"lastMarkText"`
}

func TopicDetailHandler(c *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())
		slug := chi.URLParam(r, "slug")

		if err := c.EnsureSeed(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topic.")
			return
		}

		topic, err := c.GetTopicBySlug(r.Context(), slug)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topic.")
			return
		}

		questions, err := c.ListQuestions(r.Context(), topic.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topic.")
			return
		}
		lastMarks, err := c.LastMarks(r.Context(), user.ID, topic.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topic.")
			return
		}

		out := make([]topicQuestion, 0, len(questions))
		for i, q := range questions {
			tq := topicQuestion{
				ID:            q.ID,
				Text:          q.Text,
				MaxMarks:      q.MaxMarks,
				DisplayNumber: i + 1,
			}
			if lm, ok := lastMarks[q.ID]; ok && lm.Marks != nil {
				s := fmt.Sprintf("%d/%d", *lm.Marks, q.MaxMarks)
				tq.LastMarkText = &s
			}
			out = append(out, tq)
		}

		stats, err := c.TopicStats(r.Context(), user.ID, topic.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topic.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"topic": map[string]interface{}{
				"id":        topic.ID,
				"title":     topic.Title,
				"slug":      topic.Slug,
				"level":     topic.Level,
				"paper":     topic.Paper,
				"notesHtml": topic.NotesHTML,
			},
			"questions": out,
			"stats":     stats,
		})
	}
}
