package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onlyfringe/onlyfringe/internal/config"
	"github.com/onlyfringe/onlyfringe/internal/logger"
	"github.com/onlyfringe/onlyfringe/internal/model"
)

// Pipeline orchestrates one verification attempt: structural constraints,
// oracle invocation, verdict evaluation, state transition. Constraint
// failures never reach the oracle; oracle failures leave the submission
// pending and retryable.
type Pipeline struct {
	store   SubmissionStore
	oracle  FactChecker
	checker Constraints
	eval    Evaluator
	state   *StateMachine
	log     logger.Logger

	// Attempts for the same submission are serialized so concurrent
	// retries cannot race to two different terminal states.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPipeline(store SubmissionStore, oracle FactChecker, cfg config.VerificationConfig, log logger.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		oracle:  oracle,
		checker: NewConstraints(cfg),
		eval:    NewEvaluator(cfg.ApprovalThreshold),
		state:   NewStateMachine(store),
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}
}

// OracleTimeout converts the configured seconds into the duration the
// oracle adapter should be built with.
func OracleTimeout(cfg config.VerificationConfig) time.Duration {
	return time.Duration(cfg.OracleTimeoutSeconds) * time.Second
}

type ArgumentRequest struct {
	Title    string
	Content  string
	Category string
	AuthorID string
	Sources  []model.Source
}

type RebuttalRequest struct {
	ArgumentID string
	Content    string
	AuthorID   string
	Sources    []model.Source
}

// Outcome is the caller-facing result of a submission attempt. On
// constraint rejection the rejected record is persisted and the outcome
// is returned alongside the PipelineError carrying the violations.
type Outcome struct {
	Kind    model.Kind     `json:"kind"`
	ID      string         `json:"id"`
	Status  model.Status   `json:"verification_status"`
	Verdict *model.Verdict `json:"fact_check_result,omitempty"`
	Summary string         `json:"summary,omitempty"`
}

// SubmitArgument runs the full pipeline for a new argument.
func (p *Pipeline) SubmitArgument(ctx context.Context, req ArgumentRequest) (*Outcome, error) {
	markSourceValidity(req.Sources)

	arg := &model.Argument{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		AuthorID: req.AuthorID,
		Status:   model.StatusPending,
		Sources:  req.Sources,
	}

	violations := p.checker.Check(Input{
		Kind:    model.KindArgument,
		Content: req.Content,
		Sources: req.Sources,
	})
	if len(violations) > 0 {
		verdict := rejectionVerdict(violations)
		arg.Status = model.StatusRejected
		arg.Verdict = verdict
		if err := p.store.CreateArgument(ctx, arg); err != nil {
			return nil, fmt.Errorf("persist rejected argument: %w", err)
		}
		p.log.Info("argument rejected on structural constraints",
			logger.String("argument_id", arg.ID),
			logger.Int("violations", len(violations)),
		)
		return &Outcome{
			Kind:    model.KindArgument,
			ID:      arg.ID,
			Status:  model.StatusRejected,
			Verdict: verdict,
		}, newConstraintError(violations)
	}

	if err := p.store.CreateArgument(ctx, arg); err != nil {
		return nil, fmt.Errorf("persist argument: %w", err)
	}
	return p.verifyArgument(ctx, arg)
}

// SubmitRebuttal runs the full pipeline for a new rebuttal. A rebuttal
// against a missing or non-approved argument fails before any write:
// such a row may not exist at all.
func (p *Pipeline) SubmitRebuttal(ctx context.Context, req RebuttalRequest) (*Outcome, error) {
	markSourceValidity(req.Sources)

	parent, err := p.store.GetArgument(ctx, req.ArgumentID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("look up target argument: %w", err)
	}

	in := Input{
		Kind:        model.KindRebuttal,
		Content:     req.Content,
		Sources:     req.Sources,
		ParentFound: parent != nil,
	}
	if parent != nil {
		in.ParentStatus = parent.Status
	}
	violations := p.checker.Check(in)

	if v, ok := findViolation(violations, KindInvalidRebuttalTarget); ok {
		return nil, &PipelineError{
			Kind:       KindInvalidRebuttalTarget,
			Message:    v.Message,
			Violations: violations,
		}
	}

	reb := &model.Rebuttal{
		ArgumentID: req.ArgumentID,
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		Status:     model.StatusPending,
		Sources:    req.Sources,
	}

	if len(violations) > 0 {
		verdict := rejectionVerdict(violations)
		reb.Status = model.StatusRejected
		reb.Verdict = verdict
		if err := p.store.CreateRebuttal(ctx, reb); err != nil {
			return nil, fmt.Errorf("persist rejected rebuttal: %w", err)
		}
		p.log.Info("rebuttal rejected on structural constraints",
			logger.String("rebuttal_id", reb.ID),
			logger.Int("violations", len(violations)),
		)
		return &Outcome{
			Kind:    model.KindRebuttal,
			ID:      reb.ID,
			Status:  model.StatusRejected,
			Verdict: verdict,
		}, newConstraintError(violations)
	}

	if err := p.store.CreateRebuttal(ctx, reb); err != nil {
		return nil, fmt.Errorf("persist rebuttal: %w", err)
	}
	return p.verifyRebuttal(ctx, reb, parent.Content)
}

// Retry re-runs verification for a submission stuck in pending, for
// example after the oracle was unavailable. Retrying an already-terminal
// submission returns its recorded outcome unchanged.
func (p *Pipeline) Retry(ctx context.Context, kind model.Kind, id string) (*Outcome, error) {
	switch kind {
	case model.KindArgument:
		arg, err := p.store.GetArgument(ctx, id)
		if err != nil {
			return nil, err
		}
		if arg.Status.Terminal() {
			return &Outcome{Kind: kind, ID: arg.ID, Status: arg.Status, Verdict: arg.Verdict}, nil
		}
		return p.verifyArgument(ctx, arg)

	case model.KindRebuttal:
		reb, err := p.store.GetRebuttal(ctx, id)
		if err != nil {
			return nil, err
		}
		if reb.Status.Terminal() {
			return &Outcome{Kind: kind, ID: reb.ID, Status: reb.Status, Verdict: reb.Verdict}, nil
		}
		parent, err := p.store.GetArgument(ctx, reb.ArgumentID)
		if err != nil {
			return nil, fmt.Errorf("look up target argument: %w", err)
		}
		return p.verifyRebuttal(ctx, reb, parent.Content)

	default:
		return nil, fmt.Errorf("unknown submission kind %q", kind)
	}
}

func (p *Pipeline) verifyArgument(ctx context.Context, arg *model.Argument) (*Outcome, error) {
	lock := p.lockFor(model.KindArgument, arg.ID)
	lock.Lock()
	defer lock.Unlock()

	pending := &Outcome{Kind: model.KindArgument, ID: arg.ID, Status: model.StatusPending}

	verdict, err := p.oracle.CheckArgument(ctx, arg.Content, arg.Category, arg.Sources)
	if err != nil {
		p.log.Warn("oracle failure, argument stays pending",
			logger.String("argument_id", arg.ID),
			logger.String("error_kind", string(KindOf(err))),
			logger.Error(err),
		)
		return pending, err
	}

	decision := p.eval.Evaluate(*verdict)
	if err := p.state.Transition(ctx, model.KindArgument, arg.ID, decision.Status, &decision.Verdict); err != nil {
		return pending, err
	}

	p.log.Info("argument verified",
		logger.String("argument_id", arg.ID),
		logger.String("status", string(decision.Status)),
		logger.Int("score", decision.Verdict.Score),
	)
	return &Outcome{
		Kind:    model.KindArgument,
		ID:      arg.ID,
		Status:  decision.Status,
		Verdict: &decision.Verdict,
		Summary: decision.Summary,
	}, nil
}

func (p *Pipeline) verifyRebuttal(ctx context.Context, reb *model.Rebuttal, originalArgument string) (*Outcome, error) {
	lock := p.lockFor(model.KindRebuttal, reb.ID)
	lock.Lock()
	defer lock.Unlock()

	pending := &Outcome{Kind: model.KindRebuttal, ID: reb.ID, Status: model.StatusPending}

	verdict, err := p.oracle.CheckRebuttal(ctx, reb.Content, originalArgument, reb.Sources)
	if err != nil {
		p.log.Warn("oracle failure, rebuttal stays pending",
			logger.String("rebuttal_id", reb.ID),
			logger.String("error_kind", string(KindOf(err))),
			logger.Error(err),
		)
		return pending, err
	}

	decision := p.eval.Evaluate(*verdict)
	if err := p.state.Transition(ctx, model.KindRebuttal, reb.ID, decision.Status, &decision.Verdict); err != nil {
		return pending, err
	}

	p.log.Info("rebuttal verified",
		logger.String("rebuttal_id", reb.ID),
		logger.String("status", string(decision.Status)),
		logger.Int("score", decision.Verdict.Score),
	)
	return &Outcome{
		Kind:    model.KindRebuttal,
		ID:      reb.ID,
		Status:  decision.Status,
		Verdict: &decision.Verdict,
		Summary: decision.Summary,
	}, nil
}

func (p *Pipeline) lockFor(kind model.Kind, id string) *sync.Mutex {
	key := string(kind) + ":" + id
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}

func markSourceValidity(sources []model.Source) {
	for i := range sources {
		sources[i].IsValid = CheckSource(sources[i]).OK()
	}
}

// rejectionVerdict records structural violations in verdict form so a
// constraint-rejected submission stays queryable with its feedback.
func rejectionVerdict(violations []Violation) *model.Verdict {
	issues := make([]string, 0, len(violations))
	for _, v := range violations {
		issues = append(issues, v.Message)
	}
	return &model.Verdict{
		Score:           0,
		IsValid:         false,
		Issues:          issues,
		Recommendations: []string{"Fix the listed structural problems and submit again."},
	}
}

func findViolation(violations []Violation, kind ErrorKind) (Violation, bool) {
	for _, v := range violations {
		if v.Kind == kind {
			return v, true
		}
	}
	return Violation{}, false
}
