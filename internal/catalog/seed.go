package catalog

import (
	"context"
	"database/sql"
	"errors"
)

const seedNotesHTML = "<p>This topic covers basic quadratic equations, factoring, and roots.</p>"

// EnsureSeed populates a starter topic and two questions when the catalog is
// empty. The insert is keyed on the slug's unique constraint, so two
// concurrent first requests cannot double-seed.
func (s *Store) EnsureSeed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var topicID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO topics (title, slug, level, paper, order_index, notes_html)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id`,
		"Algebra & Equations", "algebra-equations", "HL", 1, 1, seedNotesHTML).Scan(&topicID)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race; the other request seeds the questions.
		return nil
	}
	if err != nil {
		return err
	}

	seedQuestions := []struct {
		text, scheme string
		maxMarks     int
	}{
		{
			"Solve the quadratic equation 2x^2 - 3x - 5 = 0.",
			"Award full marks for correctly finding both roots with clear working. Partial credit for one correct root or correct use of quadratic formula with minor algebra slips.",
			10,
		},
		{
			"Sketch the graph of f(x) = 2x^2 - 3x - 5, indicating roots and vertex.",
			"Award marks for correct shape, intercepts, and vertex position. Partial credit for correct features but inaccurate scaling.",
			15,
		},
	}
	for _, q := range seedQuestions {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO questions (topic_id, text, marking_scheme, max_marks, source_ref)
			VALUES ($1,$2,$3,$4,$5)`,
			topicID, q.text, q.scheme, q.maxMarks, "Sample"); err != nil {
			return err
		}
	}
	return nil
}
