package classify

import "ledgermail/internal/model"

// Gate is the conservative acceptance policy: a candidate passes only when
// its confidence clears the threshold. The gate never errors; a rejected
// candidate simply flows to the next stage.
type Gate struct {
	Threshold float64
}

// Accept reports whether the candidate clears the gate.
func (g Gate) Accept(r model.ClassificationResult) bool {
	return !r.IsNone() && r.Confidence >= g.Threshold
}
