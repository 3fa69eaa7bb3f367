package model

// Origin indicates which classifier produced a result.
type Origin string

// Classification origins.
const (
	OriginRule Origin = "rule"
	OriginLLM  Origin = "llm"
	OriginNone Origin = "none"
)

// ClassificationResult is the outcome of classifying one piece of
// transaction text. A true absence (no rule matched, LLM declined or
// failed) is OriginNone with an empty category, distinct from a rejected
// low-confidence match.
type ClassificationResult struct {
	Category   string
	Origin     Origin
	Confidence float64
}

// NoResult is the explicit "no classification" value.
func NoResult() ClassificationResult {
	return ClassificationResult{Origin: OriginNone}
}

// IsNone reports whether the result carries no usable category.
func (r ClassificationResult) IsNone() bool {
	return r.Origin == OriginNone || r.Category == ""
}
