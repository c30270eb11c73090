package verify

import (
	"fmt"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

// majorIssueCeiling splits rejected verdicts for messaging: below it the
// submission has substantive problems, at or above it the evidence is
// merely too thin. The state machine sees only approved/rejected.
const majorIssueCeiling = 50

// Evaluator maps a verdict to an approval decision. Pure; the threshold
// is injected configuration.
type Evaluator struct {
	threshold int
}

func NewEvaluator(threshold int) Evaluator {
	return Evaluator{threshold: threshold}
}

// Decision is the evaluated outcome of a verdict. Verdict is carried
// as-is with IsValid derived; Summary is display-only.
type Decision struct {
	Status  model.Status
	Verdict model.Verdict
	Summary string
}

func (e Evaluator) Evaluate(v model.Verdict) Decision {
	v.IsValid = v.Score >= e.threshold

	d := Decision{Verdict: v}
	switch {
	case v.IsValid:
		d.Status = model.StatusApproved
		d.Summary = fmt.Sprintf("Approved: the submission meets the verification bar (score %d/100).", v.Score)
	case v.Score < majorIssueCeiling:
		d.Status = model.StatusRejected
		d.Summary = fmt.Sprintf("Rejected: major factual or logical problems were found (score %d/100).", v.Score)
	default:
		d.Status = model.StatusRejected
		d.Summary = fmt.Sprintf("Rejected: the claims lack sufficient supporting evidence (score %d/100).", v.Score)
	}
	return d
}
