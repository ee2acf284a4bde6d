package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// screeningSchema is the contract the model's answer must satisfy.
const screeningSchema = `{
  "type": "object",
  "required": ["score", "summary"],
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "summary": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`

var screeningSchemaLoader = gojsonschema.NewStringLoader(screeningSchema)

// AIScreening is a validated model answer.
type AIScreening struct {
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
	// Raw is the parsed object re-encoded, as stored in ai_raw_response.
	Raw json.RawMessage `json:"-"`
}

// RoundedScore is the integer score persisted on the application.
func (s *AIScreening) RoundedScore() int {
	return int(math.Round(s.Score))
}

// stripCodeFences removes a markdown fence wrapping the whole answer and the
// surrounding whitespace. Backticks inside the payload are left alone.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")

	// The opening fence may carry a language tag such as "json".
	if i := strings.IndexAny(text, "{[\n"); i >= 0 {
		if tag := strings.TrimSpace(text[:i]); !strings.ContainsAny(tag, " \"") {
			text = text[i:]
		}
	}

	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ParseAIScreening strips fences from the model text and validates it.
// Failures wrap ErrInvalidAIResponse.
func ParseAIScreening(text string) (*AIScreening, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidAIResponse)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: not JSON: %v", ErrInvalidAIResponse, err)
	}

	result, err := gojsonschema.Validate(screeningSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidAIResponse, strings.Join(msgs, "; "))
	}

	var screening AIScreening
	if err := json.Unmarshal([]byte(cleaned), &screening); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	screening.Raw = raw

	return &screening, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
