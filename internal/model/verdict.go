package model

// Verdict is the structured output of the fact-check oracle. IsValid is
// derived from the score against the configured approval threshold; the
// oracle's own opinion of validity is never trusted directly.
type Verdict struct {
	Score           int      `json:"score"`
	IsValid         bool     `json:"is_valid"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`

	// Free-form per-dimension commentary returned by the oracle
	// (factual_accuracy, logical_coherence, ...). Display only.
	Assessments map[string]string `json:"assessments,omitempty"`
}
