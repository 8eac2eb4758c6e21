package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lcmaths/practice-api/internal/catalog"
	"github.com/lcmaths/practice-api/internal/db"
)

func AdminListTopicsHandler(c *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := c.ListTopics(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not load topics.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
	}
}

func AdminCreateTopicHandler(c *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title      string `json:"title"`
			Slug       string `json:"slug"`
			Level      string `json:"level"`
			Paper      int    `json:"paper"`
			OrderIndex int    `json:"order_index"`
			NotesHTML  string `json:"notes_html"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			req.Title == "" || req.Slug == "" || req.Level == "" || req.Paper == 0 {
			writeError(w, http.StatusBadRequest, "title, slug, level, paper are required.")
			return
		}

		topic, err := c.CreateTopic(r.Context(), catalog.Topic{
			Title:      req.Title,
			Slug:       req.Slug,
			Level:      req.Level,
			Paper:      req.Paper,
			OrderIndex: req.OrderIndex,
			NotesHTML:  req.NotesHTML,
		})
		if errors.Is(err, db.ErrUniqueViolation) {
			writeError(w, http.StatusConflict, "Slug already exists.")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not create topic.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "topic": topic})
	}
}

func AdminCreateQuestionHandler(c *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TopicID       int64  `json:"topic_id"`
			Text          string `json:"text"`
			MarkingScheme string `json:"marking_scheme"`
			MaxMarks      int    `json:"max_marks"`
			SourceRef     string `json:"source_ref"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			req.TopicID == 0 || req.Text == "" || req.MarkingScheme == "" || req.MaxMarks <= 0 {
			writeError(w, http.StatusBadRequest, "topic_id, text, marking_scheme, max_marks are required.")
			return
		}

		question, err := c.CreateQuestion(r.Context(), catalog.Question{
			TopicID:       req.TopicID,
			Text:          req.Text,
			MarkingScheme: req.MarkingScheme,
			MaxMarks:      req.MaxMarks,
			SourceRef:     req.SourceRef,
		})
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Could not create question.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "question": question})
	}
}
