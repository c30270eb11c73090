package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/onlyfringe/onlyfringe/internal/llm"
	"github.com/onlyfringe/onlyfringe/internal/model"
)

// FactChecker is the oracle boundary the orchestrator depends on.
type FactChecker interface {
	CheckArgument(ctx context.Context, content, category string, sources []model.Source) (*model.Verdict, error)
	CheckRebuttal(ctx context.Context, content, originalArgument string, sources []model.Source) (*model.Verdict, error)
}

const oracleSystemPrompt = "You are an expert fact-checker and logical reasoning analyst. Provide thorough, unbiased analysis."

const argumentPromptTemplate = `You are a rigorous fact-checker for a debate platform. Analyze the following argument for:
1. Factual accuracy - Are the claims verifiable and true?
2. Logical coherence - Is the reasoning sound and well-structured?
3. Source quality - Are the sources credible and relevant?
4. Context completeness - Does the argument provide full context?
5. Evidence-based reasoning - Are claims supported by evidence?
%s
Argument:
%s

Sources provided:
%s

Provide your analysis in the following JSON format:
{
    "score": <integer 0-100>,
    "issues": ["list of any issues found"],
    "recommendations": ["list of recommendations for improvement"],
    "factual_accuracy": "assessment of factual claims",
    "logical_coherence": "assessment of logical structure",
    "source_quality": "assessment of sources",
    "context_completeness": "assessment of context provided"
}
`

const rebuttalPromptTemplate = `You are a rigorous fact-checker for a debate platform. Analyze the following rebuttal for:
1. Factual accuracy - Are the claims verifiable and true?
2. Logical response - Does it address the original argument effectively?
3. Evidence-based reasoning - Are counter-claims supported by evidence?
4. Source quality - Are the sources credible and relevant?
5. Avoidance of rhetoric - Does it focus on facts rather than emotional appeals?

Original Argument:
%s

Rebuttal:
%s

Sources provided for rebuttal:
%s

Provide your analysis in the following JSON format:
{
    "score": <integer 0-100>,
    "issues": ["list of any issues found"],
    "recommendations": ["list of recommendations for improvement"],
    "addresses_original": "does the rebuttal address the original argument",
    "factual_accuracy": "assessment of factual claims",
    "evidence_quality": "assessment of evidence provided"
}
`

// Oracle builds analysis requests, invokes the external model and parses
// its response into a Verdict. It performs no retries; retry policy
// belongs to the orchestrator.
type Oracle struct {
	client  llm.Client
	timeout time.Duration
}

func NewOracle(client llm.Client, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Oracle{
		client:  client,
		timeout: timeout,
	}
}

func (o *Oracle) CheckArgument(ctx context.Context, content, category string, sources []model.Source) (*model.Verdict, error) {
	var categoryLine string
	if category != "" {
		categoryLine = fmt.Sprintf("\nCategory: %s\n", category)
	}
	prompt := fmt.Sprintf(argumentPromptTemplate, categoryLine, content, formatSources(sources))
	return o.invoke(ctx, prompt)
}

func (o *Oracle) CheckRebuttal(ctx context.Context, content, originalArgument string, sources []model.Source) (*model.Verdict, error) {
	prompt := fmt.Sprintf(rebuttalPromptTemplate, originalArgument, content, formatSources(sources))
	return o.invoke(ctx, prompt)
}

func (o *Oracle) invoke(ctx context.Context, prompt string) (*model.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	response, err := o.client.Generate(ctx, oracleSystemPrompt, prompt)
	if err != nil {
		return nil, &PipelineError{
			Kind:    KindOracleUnavailable,
			Message: "fact-check oracle call failed",
			Cause:   err,
		}
	}

	verdict, err := parseVerdict(response)
	if err != nil {
		return nil, &PipelineError{
			Kind:    KindOracleResponseInvalid,
			Message: "fact-check oracle returned a malformed verdict",
			Cause:   err,
		}
	}
	return verdict, nil
}

func formatSources(sources []model.Source) string {
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, fmt.Sprintf("- %s: %s - %s", s.Title, s.URL, s.Description))
	}
	return strings.Join(lines, "\n")
}

// oracleResponse is the wire shape of the external verdict. Score is a
// pointer so a missing field is distinguishable from zero; a fractional
// or non-numeric score fails unmarshaling outright.
type oracleResponse struct {
	Score           *int     `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`

	FactualAccuracy     string `json:"factual_accuracy"`
	LogicalCoherence    string `json:"logical_coherence"`
	SourceQuality       string `json:"source_quality"`
	ContextCompleteness string `json:"context_completeness"`
	AddressesOriginal   string `json:"addresses_original"`
	EvidenceQuality     string `json:"evidence_quality"`
}

// parseVerdict validates the oracle response strictly: the pipeline
// never guesses a score from a response it cannot parse.
func parseVerdict(response string) (*model.Verdict, error) {
	raw, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var resp oracleResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}

	if resp.Score == nil {
		return nil, fmt.Errorf("verdict is missing a score")
	}
	if *resp.Score < 0 || *resp.Score > 100 {
		return nil, fmt.Errorf("verdict score %d is outside 0-100", *resp.Score)
	}

	v := &model.Verdict{
		Score:           *resp.Score,
		Issues:          resp.Issues,
		Recommendations: resp.Recommendations,
	}
	if v.Issues == nil {
		v.Issues = []string{}
	}
	if v.Recommendations == nil {
		v.Recommendations = []string{}
	}

	assessments := map[string]string{
		"factual_accuracy":     resp.FactualAccuracy,
		"logical_coherence":    resp.LogicalCoherence,
		"source_quality":       resp.SourceQuality,
		"context_completeness": resp.ContextCompleteness,
		"addresses_original":   resp.AddressesOriginal,
		"evidence_quality":     resp.EvidenceQuality,
	}
	for k, val := range assessments {
		if val == "" {
			delete(assessments, k)
		}
	}
	if len(assessments) > 0 {
		v.Assessments = assessments
	}

	return v, nil
}

// extractJSON trims surrounding markdown or prose from an LLM response,
// keeping the outermost JSON object.
func extractJSON(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || start >= end {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return response[start : end+1], nil
}
