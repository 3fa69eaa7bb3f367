package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseClassification extracts category and confidence from the model's
// response text. The category may legitimately be null when the model
// declines to categorize; that is not a parse error.
func parseClassification(content string) (ClassificationResponse, error) {
	var jsonResp struct {
		Category   *string `json:"category"`
		Reasoning  string  `json:"reasoning"`
		Confidence float64 `json:"confidence"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	resp := ClassificationResponse{
		Confidence: jsonResp.Confidence,
		Reasoning:  jsonResp.Reasoning,
	}
	if jsonResp.Category != nil {
		resp.Category = *jsonResp.Category
	}
	return resp, nil
}

// cleanMarkdownWrapper strips a ```json ... ``` (or bare ```) fence the
// model sometimes wraps its output in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
