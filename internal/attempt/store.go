// Package attempt records evaluation outcomes. Attempts are append-only:
// one row per submission, never updated or deleted, so a (user, question)
// pair accumulates history rather than overwriting it.
package attempt

import (
	"context"
	"database/sql"
	"time"
)

type Attempt struct {
	ID           int64  `json:"id"`
	MarksAwarded *int   `json:"marks_awarded"`
	CreatedAt    int64  `json:"created_at"`
	AnswerText   string `json:"-"`
	FeedbackJSON string `json:"-"`
}

type Store struct {
	db *sql.DB
}

func NewStore(dbh *sql.DB) *Store { return &Store{db: dbh} }

// Record appends one attempt row. The caller has already verified the
// question exists; a storage failure here propagates as a request error.
func (s *Store) Record(ctx context.Context, userID, questionID int64, answerText string, marksAwarded *int, feedbackJSON string) (int64, error) {
	var marks interface{}
	if marksAwarded != nil {
		marks = *marksAwarded
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO attempts (user_id, question_id, answer_text, marks_awarded, feedback_json, created_at)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		userID, questionID, answerText, marks, feedbackJSON, time.Now().Unix()).Scan(&id)
	return id, err
}

// RecentForQuestion lists the caller's attempts at a question, newest first.
func (s *Store) RecentForQuestion(ctx context.Context, userID, questionID int64, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, marks_awarded, created_at FROM attempts
		 WHERE user_id = $1 AND question_id = $2
		 ORDER BY created_at DESC, id DESC LIMIT $3`,
		userID, questionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var marks sql.NullInt64
		if err := rows.Scan(&a.ID, &marks, &a.CreatedAt); err != nil {
			return nil, err
		}
		if marks.Valid {
			m := int(marks.Int64)
			a.MarksAwarded = &m
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
