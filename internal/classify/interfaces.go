// Package classify implements the classification pipeline: a rule engine
// gated by a confidence threshold, with an optional LLM fallback behind a
// stricter gate.
package classify

import (
	"context"

	"ledgermail/internal/model"
)

// Classifier produces a classification for one piece of transaction text.
// Both the rule engine and the LLM fallback implement this.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.ClassificationResult, error)
}

// SideChannel records near-miss classifications for offline rule
// authoring. Write-only from the pipeline's perspective.
type SideChannel interface {
	RecordUncertain(ctx context.Context, text string, result model.ClassificationResult) error
}
