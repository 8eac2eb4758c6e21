package evaluate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash-latest"
	defaultGeminiTimeout = 12 * time.Second
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Gemini implements Remote against the generateContent endpoint. Output is
// bounded and sampling temperature kept low so repeated grading of the same
// answer stays consistent.
type Gemini struct {
	cfg   GeminiConfig
	httpc *http.Client
}

func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	return &Gemini{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

type genPart struct {
	Text string `json:"text"`
}

type genContent struct {
	Role  string    `json:"role"`
	Parts []genPart `json:"parts"`
}

type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Evaluate makes exactly one call; there are no retries. Every failure mode
// surfaces as an error, which the Evaluator treats as "tier 2 unavailable".
func (g *Gemini) Evaluate(ctx context.Context, q Question, mode Mode, answer string) (RemoteResult, error) {
	var req genRequest
	req.Contents = []genContent{{Role: "user", Parts: []genPart{{Text: buildPrompt(q, mode, answer)}}}}
	req.GenerationConfig.Temperature = 0.2
	req.GenerationConfig.MaxOutputTokens = 400

	body, err := json.Marshal(req)
	if err != nil {
		return RemoteResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(g.cfg.BaseURL, "/"), g.cfg.Model, url.QueryEscape(g.cfg.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return RemoteResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpc.Do(httpReq)
	if err != nil {
		return RemoteResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return RemoteResult{}, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var gr genResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return RemoteResult{}, fmt.Errorf("gemini: decode response: %w", err)
	}

	rr, ok := parseRemoteFeedback(extractText(gr), mode, q.MaxMarks)
	if !ok {
		return RemoteResult{}, fmt.Errorf("gemini: no JSON object in model output")
	}
	return rr, nil
}

// extractText concatenates the generated parts of the first candidate.
func extractText(gr genResponse) string {
	if len(gr.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range gr.Candidates[0].Content.Parts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

func buildPrompt(q Question, mode Mode, answer string) string {
	var instructions string
	if mode == ModeMark {
		instructions = fmt.Sprintf(`Score the learner's answer for a Leaving Cert maths question.
Return JSON with keys: marks_awarded (integer 0-%d), summary (1-2 calm sentences), and steps (array of 3-6 short bullet points).
Keep the tone factual and supportive.`, q.MaxMarks)
	} else {
		instructions = `Give a short walkthrough for a Leaving Cert maths question.
Return JSON with keys: summary (1-2 calm sentences) and steps (array of 3-6 short bullet points).`
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Question (max %d marks): %s\n", q.MaxMarks, q.Text)
	if q.MarkingScheme != "" {
		fmt.Fprintf(&b, "Marking scheme: %s\n", q.MarkingScheme)
	}
	b.WriteString("\nLearner answer:\n")
	b.WriteString(answer)
	return b.String()
}
