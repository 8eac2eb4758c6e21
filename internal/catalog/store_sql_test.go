package catalog_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcmaths/practice-api/internal/catalog"
	"github.com/lcmaths/practice-api/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func createUser(t *testing.T, dbh *sql.DB, email string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, dbh.QueryRow(
		`INSERT INTO users (email, password_hash, is_admin, created_at) VALUES ($1,'x',0,0) RETURNING id`,
		email).Scan(&id))
	return id
}

func createTopic(t *testing.T, s *catalog.Store, slug string) catalog.Topic {
	t.Helper()
	topic, err := s.CreateTopic(context.Background(), catalog.Topic{
		Title: "T " + slug, Slug: slug, Level: "HL", Paper: 1,
	})
	require.NoError(t, err)
	return topic
}

func createQuestion(t *testing.T, s *catalog.Store, topicID int64, maxMarks int) catalog.Question {
	t.Helper()
	q, err := s.CreateQuestion(context.Background(), catalog.Question{
		TopicID: topicID, Text: "q", MarkingScheme: "ms", MaxMarks: maxMarks,
	})
	require.NoError(t, err)
	return q
}

func recordAttempt(t *testing.T, dbh *sql.DB, userID, questionID int64, marks *int, createdAt int64) {
	t.Helper()
	var m interface{}
	if marks != nil {
		m = *marks
	}
	_, err := dbh.Exec(
		`INSERT INTO attempts (user_id, question_id, answer_text, marks_awarded, feedback_json, created_at)
		 VALUES ($1,$2,'a',$3,'{}',$4)`,
		userID, questionID, m, createdAt)
	require.NoError(t, err)
}

func intp(n int) *int { return &n }

func TestEnsureSeedIsIdempotent(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)
	ctx := context.Background()

	require.NoError(t, s.EnsureSeed(ctx))
	require.NoError(t, s.EnsureSeed(ctx))

	var topics, questions int
	require.NoError(t, dbh.QueryRow(`SELECT COUNT(*) FROM topics`).Scan(&topics))
	require.NoError(t, dbh.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&questions))
	assert.Equal(t, 1, topics)
	assert.Equal(t, 2, questions)

	topic, err := s.GetTopicBySlug(ctx, "algebra-equations")
	require.NoError(t, err)
	assert.Equal(t, "Algebra & Equations", topic.Title)
}

func TestCompletionPercentage(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)
	ctx := context.Background()

	user := createUser(t, dbh, "a@example.com")
	other := createUser(t, dbh, "b@example.com")
	topic := createTopic(t, s, "geometry")
	qs := make([]catalog.Question, 4)
	for i := range qs {
		qs[i] = createQuestion(t, s, topic.ID, 10)
	}

	// Two attempts at the same question count once; other users don't count.
	recordAttempt(t, dbh, user, qs[0].ID, intp(3), 100)
	recordAttempt(t, dbh, user, qs[0].ID, intp(7), 200)
	recordAttempt(t, dbh, other, qs[1].ID, intp(10), 300)

	topics, err := s.ListTopicsWithProgress(ctx, user)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, 25, topics[0].CompletedPct)
}

func TestCompletionPercentageEmptyTopic(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)

	user := createUser(t, dbh, "a@example.com")
	createTopic(t, s, "empty")

	topics, err := s.ListTopicsWithProgress(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, 0, topics[0].CompletedPct)
}

func TestTopicStats(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)
	ctx := context.Background()

	user := createUser(t, dbh, "a@example.com")
	topic := createTopic(t, s, "algebra")
	q1 := createQuestion(t, s, topic.ID, 10)
	createQuestion(t, s, topic.ID, 15)

	recordAttempt(t, dbh, user, q1.ID, intp(5), 100)

	stats, err := s.TopicStats(ctx, user, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Attempted)
	assert.Equal(t, 50, stats.AvgMarkPct)
}

func TestTopicStatsNoAttempts(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)

	user := createUser(t, dbh, "a@example.com")
	topic := createTopic(t, s, "calculus")
	createQuestion(t, s, topic.ID, 10)

	stats, err := s.TopicStats(context.Background(), user, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Attempted)
	assert.Equal(t, 0, stats.AvgMarkPct)
}

func TestLastMarksUsesMostRecentAttempt(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)
	ctx := context.Background()

	user := createUser(t, dbh, "a@example.com")
	topic := createTopic(t, s, "trig")
	q1 := createQuestion(t, s, topic.ID, 10)
	q2 := createQuestion(t, s, topic.ID, 10)

	recordAttempt(t, dbh, user, q1.ID, intp(9), 100)
	recordAttempt(t, dbh, user, q1.ID, intp(4), 200) // later, lower mark wins
	recordAttempt(t, dbh, user, q2.ID, intp(6), 100)
	recordAttempt(t, dbh, user, q2.ID, nil, 200) // latest was explanation-only

	marks, err := s.LastMarks(ctx, user, topic.ID)
	require.NoError(t, err)
	require.Contains(t, marks, q1.ID)
	require.NotNil(t, marks[q1.ID].Marks)
	assert.Equal(t, 4, *marks[q1.ID].Marks)
	require.Contains(t, marks, q2.ID)
	assert.Nil(t, marks[q2.ID].Marks)
}

func TestDisplayNumberFollowsIDOrder(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)
	ctx := context.Background()

	topic := createTopic(t, s, "sequences")
	qs := []catalog.Question{
		createQuestion(t, s, topic.ID, 5),
		createQuestion(t, s, topic.ID, 5),
		createQuestion(t, s, topic.ID, 5),
	}
	for i, q := range qs {
		n, err := s.DisplayNumber(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}
}

func TestCreateTopicDuplicateSlug(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)

	createTopic(t, s, "dupe")
	_, err := s.CreateTopic(context.Background(), catalog.Topic{
		Title: "Again", Slug: "dupe", Level: "OL", Paper: 2,
	})
	assert.ErrorIs(t, err, db.ErrUniqueViolation)
}

func TestCreateQuestionUnknownTopic(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)

	_, err := s.CreateQuestion(context.Background(), catalog.Question{
		TopicID: 999, Text: "q", MarkingScheme: "ms", MaxMarks: 10,
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGetTopicBySlugNotFound(t *testing.T) {
	dbh := openTestDB(t)
	s := catalog.NewStore(dbh)

	_, err := s.GetTopicBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
