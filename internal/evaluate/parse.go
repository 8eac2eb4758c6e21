package evaluate

import (
	"encoding/json"
	"math"
	"strings"
)

const maxSteps = 6

// firstJSONObject returns the first balanced {...} substring, tracking
// string literals and escapes so braces inside values do not miscount. The
// model often wraps its JSON in prose.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
		default:
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// parseRemoteFeedback validates the model's free-text output into a
// RemoteResult. ok is false when no usable JSON object is present; malformed
// external content never propagates past this boundary.
func parseRemoteFeedback(text string, mode Mode, maxMarks int) (RemoteResult, bool) {
	raw, ok := firstJSONObject(text)
	if !ok {
		return RemoteResult{}, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return RemoteResult{}, false
	}

	var rr RemoteResult
	if mode == ModeMark {
		rr.MarksAwarded = clampMarks(obj["marks_awarded"], maxMarks)
	}

	if s, ok := obj["summary"].(string); ok && strings.TrimSpace(s) != "" {
		rr.Summary = strings.TrimSpace(s)
	} else if c, ok := obj["comment"].(string); ok && strings.TrimSpace(c) != "" {
		rr.Summary = strings.TrimSpace(c)
	}

	if steps, ok := obj["steps"].([]interface{}); ok {
		for _, st := range steps {
			s, ok := st.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			rr.Steps = append(rr.Steps, s)
			if len(rr.Steps) == maxSteps {
				break
			}
		}
	}
	return rr, true
}

// clampMarks rounds a numeric value into [0, maxMarks]. Non-numeric values
// yield nil (marks absent). Clamping an in-range integer is a no-op.
func clampMarks(v interface{}, maxMarks int) *int {
	f, ok := v.(float64) // encoding/json decodes all numbers as float64
	if !ok || math.IsNaN(f) {
		return nil
	}
	m := int(math.Round(f))
	if m < 0 {
		m = 0
	}
	if m > maxMarks {
		m = maxMarks
	}
	return &m
}
