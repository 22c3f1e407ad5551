package ask

import (
	"encoding/json"
	"strconv"
	"strings"
)

// structuredOutput is the shape the prompt asks the model for. Confidence is
// kept raw because models emit it as a number, a quoted number, or worse.
type structuredOutput struct {
	Answer     string          `json:"answer"`
	Confidence json.RawMessage `json:"confidence"`
}

// parseStructured attempts the strict decode of the model output. Returns
// (answer, confidence, true) on success; on any failure the caller degrades
// to the raw text with zero confidence. The model output format is
// best-effort, so nothing here ever propagates an error.
func parseStructured(raw string) (string, float64, bool) {
	trimmed := stripCodeFence(strings.TrimSpace(raw))

	var out structuredOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return "", 0, false
	}
	if out.Answer == "" && out.Confidence == nil {
		return "", 0, false
	}

	return strings.TrimSpace(out.Answer), clamp(parseConfidence(out.Confidence), 0, 100), true
}

// parseConfidence accepts a JSON number or a numeric string.
func parseConfidence(raw json.RawMessage) float64 {
	if raw == nil {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return 0
}

// stripCodeFence removes a surrounding markdown fence, with or without a
// language tag. Models add these despite instructions not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
