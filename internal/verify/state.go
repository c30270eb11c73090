package verify

import (
	"context"
	"fmt"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

// SubmissionStore is the persistence boundary of the pipeline.
type SubmissionStore interface {
	CreateArgument(ctx context.Context, a *model.Argument) error
	CreateRebuttal(ctx context.Context, r *model.Rebuttal) error
	GetArgument(ctx context.Context, id string) (*model.Argument, error)
	GetRebuttal(ctx context.Context, id string) (*model.Rebuttal, error)

	// CommitVerdict sets the terminal status and attaches the verdict in
	// one atomic write, only while the row is still pending. It reports
	// whether a row changed.
	CommitVerdict(ctx context.Context, kind model.Kind, id string, status model.Status, v *model.Verdict) (bool, error)
}

// StateMachine owns the submission lifecycle. Every terminal write goes
// through Transition, which refuses anything but pending -> terminal and
// surfaces lost races as ConcurrencyConflict.
type StateMachine struct {
	store SubmissionStore
}

func NewStateMachine(store SubmissionStore) *StateMachine {
	return &StateMachine{store: store}
}

func (m *StateMachine) Transition(ctx context.Context, kind model.Kind, id string, to model.Status, v *model.Verdict) error {
	if !model.StatusPending.CanTransitionTo(to) {
		return &PipelineError{
			Kind:    KindConcurrencyConflict,
			Message: fmt.Sprintf("illegal transition to %s", to),
		}
	}

	changed, err := m.store.CommitVerdict(ctx, kind, id, to, v)
	if err != nil {
		return fmt.Errorf("commit verdict: %w", err)
	}
	if !changed {
		return &PipelineError{
			Kind:    KindConcurrencyConflict,
			Message: fmt.Sprintf("%s %s is no longer pending", kind, id),
		}
	}
	return nil
}
