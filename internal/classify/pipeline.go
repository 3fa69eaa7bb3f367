package classify

import (
	"context"
	"log/slog"
	"strings"

	"ledgermail/internal/model"
)

// Pipeline runs text through the rule engine and, when that produces no
// accepted result, the LLM fallback. Every failure path degrades to "no
// classification"; the pipeline never blocks the underlying ledger
// mutation.
type Pipeline struct {
	rules      Classifier
	llm        Classifier
	categories *model.CategorySet
	side       SideChannel
	logger     *slog.Logger
	forceLLM   map[string]bool
	ruleGate   Gate
	llmGate    Gate
}

// Options configures a Pipeline. Rules may be nil when the rule config
// failed to load; LLM may be nil when no credential is configured; Side
// may be nil to disable the uncertain log.
type Options struct {
	Rules         Classifier
	LLM           Classifier
	Categories    *model.CategorySet
	Side          SideChannel
	Logger        *slog.Logger
	ForceLLMFor   []string
	RuleThreshold float64
	LLMThreshold  float64
}

// NewPipeline creates a classification pipeline.
func NewPipeline(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	// Config entries may be cased however the user wrote them.
	force := make(map[string]bool, len(opts.ForceLLMFor))
	for _, s := range opts.ForceLLMFor {
		force[strings.ToLower(s)] = true
	}
	return &Pipeline{
		rules:      opts.Rules,
		llm:        opts.LLM,
		categories: opts.Categories,
		side:       opts.Side,
		logger:     opts.Logger,
		forceLLM:   force,
		ruleGate:   Gate{Threshold: opts.RuleThreshold},
		llmGate:    Gate{Threshold: opts.LLMThreshold},
	}
}

// Classify runs the full rule → gate → LLM → gate pipeline for one piece
// of text. Source names the integration ("amazon", "venmo") for the
// force-LLM routing. The result category, when present, is always a
// canonical ledger category name.
func (p *Pipeline) Classify(ctx context.Context, source, text string) model.ClassificationResult {
	text = CleanText(text)
	if text == "" {
		return model.NoResult()
	}

	if !p.forceLLM[strings.ToLower(source)] && p.rules != nil {
		candidate, err := p.rules.Classify(ctx, text)
		if err == nil {
			if accepted, ok := p.accept(ctx, text, candidate, p.ruleGate); ok {
				return accepted
			}
		}
	}

	if p.llm == nil {
		return model.NoResult()
	}

	candidate, err := p.llm.Classify(ctx, text)
	if err != nil {
		// Remote failures are identical to no-match.
		p.logger.Warn("llm classification failed", "error", err, "text", text)
		return model.NoResult()
	}
	if accepted, ok := p.accept(ctx, text, candidate, p.llmGate); ok {
		return accepted
	}
	return model.NoResult()
}

// accept gates a candidate and resolves its category against the ledger's
// known set. Rejected near-misses go to the side channel.
func (p *Pipeline) accept(ctx context.Context, text string, candidate model.ClassificationResult, gate Gate) (model.ClassificationResult, bool) {
	if candidate.IsNone() {
		return model.NoResult(), false
	}
	if !gate.Accept(candidate) {
		p.recordUncertain(ctx, text, candidate)
		return model.NoResult(), false
	}
	canonical, ok := p.categories.Resolve(candidate.Category)
	if !ok {
		p.logger.Warn("classifier produced unknown category",
			"category", candidate.Category,
			"origin", candidate.Origin)
		return model.NoResult(), false
	}
	candidate.Category = canonical
	return candidate, true
}

func (p *Pipeline) recordUncertain(ctx context.Context, text string, candidate model.ClassificationResult) {
	if p.side == nil {
		return
	}
	if err := p.side.RecordUncertain(ctx, text, candidate); err != nil {
		p.logger.Warn("failed to record uncertain classification", "error", err)
	}
}
