package catalog

import "errors"

var ErrNotFound = errors.New("not found")

type Topic struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Level      string `json:"level"`
	Paper      int    `json:"paper"`
	OrderIndex int    `json:"order_index"`
	NotesHTML  string `json:"notesHtml,omitempty"`
}

type Question struct {
	ID            int64  `json:"id"`
	TopicID       int64  `json:"topic_id"`
	Text          string `json:"text"`
	MarkingScheme string `json:"marking_scheme,omitempty"`
	MaxMarks      int    `json:"max_marks"`
	SourceRef     string `json:"source_ref,omitempty"`
}

// TopicProgress is a catalog row with the caller's completion percentage.
type TopicProgress struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Level        string `json:"level"`
	Paper        int    `json:"paper"`
	CompletedPct int    `json:"completedPct"`
}

// TopicStats are recomputed on every read, never cached.
type TopicStats struct {
	Total      int `json:"total"`
	Attempted  int `json:"attempted"`
	AvgMarkPct int `json:"avgMarkPct"`
}

// LastMark is the caller's most recent attempt at a question. Marks is nil
// when the latest attempt was explanation-only.
type LastMark struct {
	Marks *int
}
