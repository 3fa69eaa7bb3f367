package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ledgermail/internal/common"
	"ledgermail/internal/model"
)

// Classifier implements the classify.Classifier interface on top of a
// provider client. Each call is independent and stateless; no conversation
// context is carried between items.
type Classifier struct {
	client     Client
	logger     *slog.Logger
	categories []string
	retryOpts  common.RetryOptions
}

// NewClassifier creates the LLM fallback classifier. The category names
// are the ledger's closed set, fetched once per run; the model may only
// answer from this list.
func NewClassifier(cfg Config, categories []string, logger *slog.Logger) (*Classifier, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Classifier{
		client:     client,
		categories: categories,
		logger:     logger,
		retryOpts:  retryOpts,
	}, nil
}

// Classify asks the model to categorize the text within the known category
// set. A declined answer (null category) is the explicit no-result, not an
// error; transport errors surface so the pipeline can degrade them.
func (c *Classifier) Classify(ctx context.Context, text string) (model.ClassificationResult, error) {
	if len(c.categories) == 0 {
		return model.NoResult(), nil
	}

	prompt := c.buildPrompt(text)

	var resp ClassificationResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = c.client.Classify(ctx, prompt)
		return callErr
	}, c.retryOpts)
	if err != nil {
		return model.NoResult(), fmt.Errorf("%w: %v", common.ErrClassificationFailed, err)
	}

	if resp.Category == "" {
		c.logger.Debug("llm declined to categorize", "text", text, "reasoning", resp.Reasoning)
		return model.NoResult(), nil
	}

	c.logger.Debug("llm classification",
		"text", text,
		"category", resp.Category,
		"confidence", resp.Confidence)

	return model.ClassificationResult{
		Category:   resp.Category,
		Confidence: resp.Confidence,
		Origin:     model.OriginLLM,
	}, nil
}

func (c *Classifier) buildPrompt(text string) string {
	names := make([]string, len(c.categories))
	copy(names, c.categories)
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Given a transaction description, classify it into one of the available budget categories.\n\n")
	fmt.Fprintf(&b, "Transaction description: %q\n\nAvailable categories:\n", text)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString(`
Consider the product type, the merchant type, and context clues in the description.

Respond ONLY with a JSON object in this exact format:
{
  "category": "category name from the list above",
  "confidence": 0.XX,
  "reasoning": "brief explanation"
}

If you cannot confidently categorize, respond with:
{
  "category": null,
  "confidence": 0.0,
  "reasoning": "why it's unclear"
}`)
	return b.String()
}
