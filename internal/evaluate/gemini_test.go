package evaluate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiPayload(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return string(body)
}

func newGeminiForTest(baseURL string) *Gemini {
	return NewGemini(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	})
}

func TestGeminiEvaluateParsesModelOutput(t *testing.T) {
	var gotPath string
	var gotReq genRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(geminiPayload(
			`Here is my assessment: {"marks_awarded": 12, "summary": "Solid.", "steps": ["A", "B", "C"]}`)))
	}))
	defer srv.Close()

	g := newGeminiForTest(srv.URL)
	q := Question{Text: "Solve 2x^2 - 3x - 5 = 0.", MarkingScheme: "Full marks for both roots.", MaxMarks: 10}

	rr, err := g.Evaluate(context.Background(), q, ModeMark, "x = 5/2 or x = -1")
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-1.5-flash-latest:generateContent", gotPath)
	require.Len(t, gotReq.Contents, 1)
	prompt := gotReq.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Solve 2x^2 - 3x - 5 = 0.")
	assert.Contains(t, prompt, "Marking scheme: Full marks for both roots.")
	assert.Contains(t, prompt, "x = 5/2 or x = -1")
	assert.Equal(t, 0.2, gotReq.GenerationConfig.Temperature)
	assert.Equal(t, 400, gotReq.GenerationConfig.MaxOutputTokens)

	// 12 exceeds the question's 10 marks and is clamped.
	require.NotNil(t, rr.MarksAwarded)
	assert.Equal(t, 10, *rr.MarksAwarded)
	assert.Equal(t, "Solid.", rr.Summary)
	assert.Equal(t, []string{"A", "B", "C"}, rr.Steps)
}

func TestGeminiEvaluateErrorsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newGeminiForTest(srv.URL).Evaluate(context.Background(), Question{MaxMarks: 10}, ModeMark, "answer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiEvaluateErrorsWhenNoJSONInOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiPayload("I cannot grade this, sorry.")))
	}))
	defer srv.Close()

	_, err := newGeminiForTest(srv.URL).Evaluate(context.Background(), Question{MaxMarks: 10}, ModeMark, "answer")
	require.Error(t, err)
}

func TestGeminiEvaluateErrorsOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	_, err := newGeminiForTest(srv.URL).Evaluate(context.Background(), Question{MaxMarks: 10}, ModeMark, "answer")
	require.Error(t, err)
}

func TestGeminiEvaluateTimesOut(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := g.Evaluate(context.Background(), Question{MaxMarks: 10}, ModeMark, "answer")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEvaluatorDegradesWhenGeminiUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := Question{Text: "q", MaxMarks: 10}
	answer := strings.Repeat("a", 60)

	got := New(newGeminiForTest(srv.URL)).Evaluate(context.Background(), q, ModeMark, answer)
	assert.Equal(t, heuristic(q, ModeMark, answer), got, "degraded result is identical to tier 1")
}
