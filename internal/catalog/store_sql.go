package catalog

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/lcmaths/practice-api/internal/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbh *sql.DB) *Store { return &Store{db: dbh} }

// ListTopicsWithProgress returns the catalog ordered by paper, order_index,
// id, with the caller's completion percentage per topic.
func (s *Store) ListTopicsWithProgress(ctx context.Context, userID int64) ([]TopicProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.slug, t.level, t.paper,
		       (SELECT COUNT(*) FROM questions q WHERE q.topic_id = t.id),
		       (SELECT COUNT(DISTINCT a.question_id)
		          FROM attempts a JOIN questions q ON q.id = a.question_id
		         WHERE a.user_id = $1 AND q.topic_id = t.id)
		  FROM topics t
		 ORDER BY t.paper, t.order_index, t.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopicProgress{}
	for rows.Next() {
		var tp TopicProgress
		var total, attempted int
		if err := rows.Scan(&tp.ID, &tp.Title, &tp.Slug, &tp.Level, &tp.Paper, &total, &attempted); err != nil {
			return nil, err
		}
		tp.CompletedPct = pct(attempted, total)
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (s *Store) ListTopics(ctx context.Context) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, level, paper, order_index
		  FROM topics ORDER BY paper, order_index, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Topic{}
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug, &t.Level, &t.Paper, &t.OrderIndex); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTopicBySlug(ctx context.Context, slug string) (Topic, error) {
	var t Topic
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, level, paper, order_index, notes_html
		  FROM topics WHERE slug = $1`, slug).
		Scan(&t.ID, &t.Title, &t.Slug, &t.Level, &t.Paper, &t.OrderIndex, &t.NotesHTML)
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, ErrNotFound
	}
	return t, err
}

func (s *Store) GetTopic(ctx context.Context, id int64) (Topic, error) {
	var t Topic
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, slug, level, paper, order_index, notes_html
		  FROM topics WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Slug, &t.Level, &t.Paper, &t.OrderIndex, &t.NotesHTML)
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, ErrNotFound
	}
	return t, err
}

func (s *Store) CreateTopic(ctx context.Context, t Topic) (Topic, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO topics (title, slug, level, paper, order_index, notes_html)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		t.Title, t.Slug, t.Level, t.Paper, t.OrderIndex, t.NotesHTML).Scan(&t.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Topic{}, db.ErrUniqueViolation
		}
		return Topic{}, err
	}
	return t, nil
}

// ListQuestions returns a topic's questions ordered by id; display numbering
// is the 1-based position in this ordering.
func (s *Store) ListQuestions(ctx context.Context, topicID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, topic_id, text, max_marks FROM questions
		 WHERE topic_id = $1 ORDER BY id`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Text, &q.MaxMarks); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (Question, error) {
	var q Question
	var sourceRef sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, topic_id, text, marking_scheme, max_marks, source_ref
		  FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.TopicID, &q.Text, &q.MarkingScheme, &q.MaxMarks, &sourceRef)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	q.SourceRef = sourceRef.String
	return q, err
}

// CreateQuestion fails with ErrNotFound when the topic does not exist.
func (s *Store) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if _, err := s.GetTopic(ctx, q.TopicID); err != nil {
		return Question{}, err
	}
	var sourceRef interface{}
	if q.SourceRef != "" {
		sourceRef = q.SourceRef
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO questions (topic_id, text, marking_scheme, max_marks, source_ref)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		q.TopicID, q.Text, q.MarkingScheme, q.MaxMarks, sourceRef).Scan(&q.ID)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

// DisplayNumber is the question's 1-based ordinal within its topic, ordered
// by id. Stable: unaffected by recency or difficulty.
func (s *Store) DisplayNumber(ctx context.Context, q Question) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE topic_id = $1 AND id <= $2`,
		q.TopicID, q.ID).Scan(&n)
	return n, err
}

// TopicStats recomputes the caller's progress for one topic on every call.
func (s *Store) TopicStats(ctx context.Context, userID, topicID int64) (TopicStats, error) {
	var st TopicStats
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM questions q WHERE q.topic_id = $2),
		  (SELECT COUNT(DISTINCT a.question_id)
		     FROM attempts a JOIN questions q ON q.id = a.question_id
		    WHERE a.user_id = $1 AND q.topic_id = $2),
		  (SELECT AVG(a.marks_awarded * 100.0 / q.max_marks)
		     FROM attempts a JOIN questions q ON q.id = a.question_id
		    WHERE a.user_id = $1 AND q.topic_id = $2)`,
		userID, topicID).Scan(&st.Total, &st.Attempted, &avg)
	if err != nil {
		return TopicStats{}, err
	}
	if avg.Valid {
		st.AvgMarkPct = int(math.Round(avg.Float64))
	}
	return st, nil
}

// LastMarks maps question id to the caller's most recent attempt, for every
// question in the topic the caller has attempted.
func (s *Store) LastMarks(ctx context.Context, userID, topicID int64) (map[int64]LastMark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.question_id, a.marks_awarded
		  FROM attempts a
		  JOIN questions q ON q.id = a.question_id
		 WHERE a.user_id = $1 AND q.topic_id = $2
		   AND a.id = (SELECT b.id FROM attempts b
		                WHERE b.user_id = a.user_id AND b.question_id = a.question_id
		                ORDER BY b.created_at DESC, b.id DESC LIMIT 1)`,
		userID, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]LastMark{}
	for rows.Next() {
		var qid int64
		var marks sql.NullInt64
		if err := rows.Scan(&qid, &marks); err != nil {
			return nil, err
		}
		var lm LastMark
		if marks.Valid {
			m := int(marks.Int64)
			lm.Marks = &m
		}
		out[qid] = lm
	}
	return out, rows.Err()
}

func pct(attempted, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(attempted) * 100 / float64(total)))
}
