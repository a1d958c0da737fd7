// Package llm implements rerank.Scorer by prompting a chat model to score
// a (query, passage) pair, following the same robust-JSON-extraction
// approach used throughout this codebase's small local-model integrations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ragforge/queryengine/model/chat"
)

// Scorer scores relevance via an injected chat.Model.
type Scorer struct {
	Model   chat.Model
	ModelID string
}

var _ interface {
	Score(ctx context.Context, query, content string) (float64, error)
} = (*Scorer)(nil)

// Score asks the model to rate relevance on a 0.0-1.0 scale and parses the
// response defensively: small models frequently wrap JSON in markdown
// fences or prepend conversational filler.
func (s *Scorer) Score(ctx context.Context, query, content string) (float64, error) {
	prompt := "Rate the relevance of the passage to the query on a scale of 0.0 to 1.0.\n" +
		"Query: " + query + "\n" +
		"Passage: " + content + "\n" +
		`Respond with only a JSON object: {"score": <float>}`

	opts, err := chat.NewOptions(s.ModelID)
	if err != nil {
		return 0, err
	}

	req, err := chat.NewRequest([]chat.Message{chat.NewUserMessage(chat.MessageParams{Text: prompt})})
	if err != nil {
		return 0, err
	}
	req.Options = opts

	resp, err := s.Model.Call(ctx, req)
	if err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("reranker scorer: empty response")
	}

	return parseScore(resp.Results[0].AssistantMessage.Text)
}

// parseScore extracts a relevance score from a model response, tolerating
// markdown code fences and surrounding filler text around the JSON object.
func parseScore(resp string) (float64, error) {
	s := strings.TrimSpace(resp)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return 0, fmt.Errorf("no JSON object in reranker response")
	}

	var obj struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return 0, fmt.Errorf("unmarshal reranker score: %w", err)
	}
	return obj.Score, nil
}
