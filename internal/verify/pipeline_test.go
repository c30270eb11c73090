package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyfringe/onlyfringe/internal/config"
	"github.com/onlyfringe/onlyfringe/internal/logger"
	"github.com/onlyfringe/onlyfringe/internal/model"
)

func newTestPipeline(store SubmissionStore, oracle FactChecker) *Pipeline {
	return NewPipeline(store, oracle, config.Default().Verification, logger.NewNop())
}

func validArgumentRequest() ArgumentRequest {
	return ArgumentRequest{
		Title:    "Coffee consumption and productivity",
		Content:  strings.Repeat("a", 200),
		Category: "health",
		AuthorID: "user-1",
		Sources:  goodSources(),
	}
}

func TestSubmitArgumentApproved(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 85, Issues: []string{}, Recommendations: []string{}}}
	p := newTestPipeline(store, oracle)

	outcome, err := p.SubmitArgument(context.Background(), validArgumentRequest())

	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, outcome.Status)
	assert.Equal(t, 1, oracle.Calls)
	require.NotNil(t, outcome.Verdict)
	assert.True(t, outcome.Verdict.IsValid)
	assert.NotEmpty(t, outcome.Summary)

	stored, err := store.GetArgument(context.Background(), outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.True(t, stored.IsVerified)
	require.NotNil(t, stored.Verdict)
	assert.Equal(t, 85, stored.Verdict.Score)
}

func TestSubmitArgumentRejectedByScore(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 69}}
	p := newTestPipeline(store, oracle)

	outcome, err := p.SubmitArgument(context.Background(), validArgumentRequest())

	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, outcome.Status)

	stored, _ := store.GetArgument(context.Background(), outcome.ID)
	assert.Equal(t, model.StatusRejected, stored.Status)
	assert.False(t, stored.IsVerified)
}

func TestSubmitArgumentConstraintFailureSkipsOracle(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 100}}
	p := newTestPipeline(store, oracle)

	req := validArgumentRequest()
	req.Content = "too short"
	req.Sources = req.Sources[:1]

	outcome, err := p.SubmitArgument(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, 0, oracle.Calls, "constraint failures must never invoke the oracle")

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.ElementsMatch(t,
		[]ErrorKind{KindContentLengthInvalid, KindInsufficientSources},
		kinds(pe.Violations),
	)

	// Policy: the rejected record is persisted with the violations as
	// verdict issues, so it stays queryable.
	require.NotNil(t, outcome)
	assert.Equal(t, model.StatusRejected, outcome.Status)
	stored, getErr := store.GetArgument(context.Background(), outcome.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.StatusRejected, stored.Status)
	require.NotNil(t, stored.Verdict)
	assert.Len(t, stored.Verdict.Issues, 2)
	assert.Equal(t, 0, stored.Verdict.Score)
}

func TestSubmitArgumentOracleUnavailableLeavesPending(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Err: &PipelineError{Kind: KindOracleUnavailable, Message: "timeout", Cause: context.DeadlineExceeded}}
	p := newTestPipeline(store, oracle)

	outcome, err := p.SubmitArgument(context.Background(), validArgumentRequest())

	require.Error(t, err)
	assert.Equal(t, KindOracleUnavailable, KindOf(err))
	require.NotNil(t, outcome)
	assert.Equal(t, model.StatusPending, outcome.Status)

	stored, _ := store.GetArgument(context.Background(), outcome.ID)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Nil(t, stored.Verdict)
}

func TestSubmitArgumentMalformedVerdictLeavesPending(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Err: &PipelineError{Kind: KindOracleResponseInvalid, Message: "garbage"}}
	p := newTestPipeline(store, oracle)

	outcome, err := p.SubmitArgument(context.Background(), validArgumentRequest())

	require.Error(t, err)
	assert.Equal(t, KindOracleResponseInvalid, KindOf(err))

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.Retryable())

	stored, _ := store.GetArgument(context.Background(), outcome.ID)
	assert.Equal(t, model.StatusPending, stored.Status, "a malformed verdict is never treated as a rejection")
}

func TestRetryAfterOracleRecovery(t *testing.T) {
	store := NewMockStore()
	failing := &MockOracle{Err: &PipelineError{Kind: KindOracleUnavailable, Message: "down"}}
	p := newTestPipeline(store, failing)

	outcome, err := p.SubmitArgument(context.Background(), validArgumentRequest())
	require.Error(t, err)
	require.Equal(t, model.StatusPending, outcome.Status)

	// Oracle comes back; the same submission is retried in place.
	healthy := &MockOracle{Verdict: &model.Verdict{Score: 90}}
	p.oracle = healthy

	retried, err := p.Retry(context.Background(), model.KindArgument, outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, outcome.ID, retried.ID, "retry must not duplicate the entity")
	assert.Equal(t, model.StatusApproved, retried.Status)
	assert.Equal(t, 1, store.Commits)
}

func TestRetryOfTerminalSubmissionIsIdempotent(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 90}}
	p := newTestPipeline(store, oracle)

	outcome, err := p.SubmitArgument(context.Background(), validArgumentRequest())
	require.NoError(t, err)
	require.Equal(t, 1, oracle.Calls)

	retried, err := p.Retry(context.Background(), model.KindArgument, outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, retried.Status)
	assert.Equal(t, 1, oracle.Calls, "a terminal submission is never re-evaluated")
	assert.Equal(t, 1, store.Commits)
}

func TestRetryUnknownSubmission(t *testing.T) {
	p := newTestPipeline(NewMockStore(), &MockOracle{})

	_, err := p.Retry(context.Background(), model.KindArgument, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConcurrentRetriesSingleTerminalWrite(t *testing.T) {
	store := NewMockStore()
	store.SeedArgument("arg-race", model.StatusPending, strings.Repeat("a", 200))
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 90}}
	p := newTestPipeline(store, oracle)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Retry(context.Background(), model.KindArgument, "arg-race")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.Commits, "exactly one attempt may set the terminal state")

	stored, _ := store.GetArgument(context.Background(), "arg-race")
	assert.Equal(t, model.StatusApproved, stored.Status)

	// Every attempt either succeeded idempotently or observed the conflict.
	for _, err := range errs {
		if err != nil {
			assert.Equal(t, KindConcurrencyConflict, KindOf(err))
		}
	}
}

func TestSubmitRebuttalAgainstApprovedArgument(t *testing.T) {
	store := NewMockStore()
	store.SeedArgument("arg-1", model.StatusApproved, "the original claim")
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 80}}
	p := newTestPipeline(store, oracle)

	outcome, err := p.SubmitRebuttal(context.Background(), RebuttalRequest{
		ArgumentID: "arg-1",
		Content:    strings.Repeat("b", 200),
		AuthorID:   "user-2",
		Sources:    goodSources(),
	})

	require.NoError(t, err)
	assert.Equal(t, model.KindRebuttal, outcome.Kind)
	assert.Equal(t, model.StatusApproved, outcome.Status)

	stored, err := store.GetRebuttal(context.Background(), outcome.ID)
	require.NoError(t, err)
	assert.Equal(t, "arg-1", stored.ArgumentID)
}

func TestSubmitRebuttalAgainstNonApprovedArgument(t *testing.T) {
	for _, status := range []model.Status{model.StatusPending, model.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			store := NewMockStore()
			store.SeedArgument("arg-1", status, "the original claim")
			oracle := &MockOracle{Verdict: &model.Verdict{Score: 100}}
			p := newTestPipeline(store, oracle)

			outcome, err := p.SubmitRebuttal(context.Background(), RebuttalRequest{
				ArgumentID: "arg-1",
				Content:    strings.Repeat("b", 200),
				AuthorID:   "user-2",
				Sources:    goodSources(),
			})

			assert.Nil(t, outcome, "no rebuttal row may exist under a non-approved argument")
			assert.Equal(t, KindInvalidRebuttalTarget, KindOf(err))
			assert.Equal(t, 0, oracle.Calls)
			assert.Empty(t, store.rebuttals)
		})
	}
}

func TestSubmitRebuttalAgainstMissingArgument(t *testing.T) {
	p := newTestPipeline(NewMockStore(), &MockOracle{})

	outcome, err := p.SubmitRebuttal(context.Background(), RebuttalRequest{
		ArgumentID: "missing",
		Content:    strings.Repeat("b", 200),
		AuthorID:   "user-2",
		Sources:    goodSources(),
	})

	assert.Nil(t, outcome)
	assert.Equal(t, KindInvalidRebuttalTarget, KindOf(err))
}

func TestSubmitMarksSourceValidity(t *testing.T) {
	store := NewMockStore()
	oracle := &MockOracle{Verdict: &model.Verdict{Score: 90}}
	p := newTestPipeline(store, oracle)

	req := validArgumentRequest()
	outcome, err := p.SubmitArgument(context.Background(), req)
	require.NoError(t, err)

	stored, _ := store.GetArgument(context.Background(), outcome.ID)
	for _, src := range stored.Sources {
		assert.True(t, src.IsValid)
	}
}

func TestPipelineErrorUnwrapping(t *testing.T) {
	cause := errors.New("boom")
	err := &PipelineError{Kind: KindOracleUnavailable, Message: "oracle down", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "OracleUnavailable")
	assert.Contains(t, err.Error(), "boom")
}
