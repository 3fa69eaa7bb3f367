package rules

import (
	"context"
	"regexp"
	"strings"

	"ledgermail/internal/model"
)

// Engine evaluates text against the ordered rule set.
type Engine struct {
	rules    []Rule
	keywords [][]*regexp.Regexp
}

// NewEngine creates a rule engine with keyword patterns pre-compiled.
// Keywords match on word boundaries so "pet" does not match "Petite" and
// "mobil" does not match "Mobile".
func NewEngine(ruleSet []Rule) *Engine {
	e := &Engine{rules: ruleSet}
	for _, r := range ruleSet {
		patterns := make([]*regexp.Regexp, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			p, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(kw)) + `\b`)
			if err != nil {
				continue
			}
			patterns = append(patterns, p)
		}
		e.keywords = append(e.keywords, patterns)
	}
	return e
}

// Classify returns the best rule match for the text, or the explicit
// no-result value. Among matching rules the highest static confidence
// wins; ties go to the earliest-declared rule.
func (e *Engine) Classify(_ context.Context, text string) (model.ClassificationResult, error) {
	if text == "" || len(e.rules) == 0 {
		return model.NoResult(), nil
	}

	lower := strings.ToLower(text)
	best := model.NoResult()

	for i, r := range e.rules {
		if !e.matches(i, lower) {
			continue
		}
		// Strict > keeps the earliest-declared rule on ties.
		if best.IsNone() || r.Confidence > best.Confidence {
			best = model.ClassificationResult{
				Category:   r.Category,
				Confidence: r.Confidence,
				Origin:     model.OriginRule,
			}
		}
	}

	return best, nil
}

func (e *Engine) matches(rule int, lower string) bool {
	for _, p := range e.keywords[rule] {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
