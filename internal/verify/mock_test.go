package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

type MockLLM struct {
	Response   string
	Err        error
	LastSystem string
	LastPrompt string
}

func (m *MockLLM) Generate(ctx context.Context, system string, prompt string) (string, error) {
	m.LastSystem = system
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// BlockingLLM never answers; it waits for the context to expire.
type BlockingLLM struct{}

func (b *BlockingLLM) Generate(ctx context.Context, system string, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// MockOracle stubs the FactChecker boundary for orchestrator tests.
type MockOracle struct {
	mu      sync.Mutex
	Verdict *model.Verdict
	Err     error
	Calls   int
}

func (m *MockOracle) check() (*model.Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	v := *m.Verdict
	return &v, nil
}

func (m *MockOracle) CheckArgument(ctx context.Context, content, category string, sources []model.Source) (*model.Verdict, error) {
	return m.check()
}

func (m *MockOracle) CheckRebuttal(ctx context.Context, content, originalArgument string, sources []model.Source) (*model.Verdict, error) {
	return m.check()
}

// MockStore is an in-memory SubmissionStore. CommitVerdict is atomic
// under the mutex, matching the conditional-update semantics of the
// real store.
type MockStore struct {
	mu        sync.Mutex
	arguments map[string]*model.Argument
	rebuttals map[string]*model.Rebuttal
	nextID    int
	Commits   int
}

func NewMockStore() *MockStore {
	return &MockStore{
		arguments: make(map[string]*model.Argument),
		rebuttals: make(map[string]*model.Rebuttal),
	}
}

func (m *MockStore) CreateArgument(ctx context.Context, a *model.Argument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = fmt.Sprintf("arg-%d", m.nextID)
	cp := *a
	m.arguments[a.ID] = &cp
	return nil
}

func (m *MockStore) CreateRebuttal(ctx context.Context, r *model.Rebuttal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = fmt.Sprintf("reb-%d", m.nextID)
	cp := *r
	m.rebuttals[r.ID] = &cp
	return nil
}

func (m *MockStore) GetArgument(ctx context.Context, id string) (*model.Argument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.arguments[id]
	if !ok {
		return nil, fmt.Errorf("argument %s: %w", id, model.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *MockStore) GetRebuttal(ctx context.Context, id string) (*model.Rebuttal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rebuttals[id]
	if !ok {
		return nil, fmt.Errorf("rebuttal %s: %w", id, model.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *MockStore) CommitVerdict(ctx context.Context, kind model.Kind, id string, status model.Status, v *model.Verdict) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch kind {
	case model.KindArgument:
		a, ok := m.arguments[id]
		if !ok || a.Status != model.StatusPending {
			return false, nil
		}
		a.Status = status
		a.IsVerified = status == model.StatusApproved
		a.Verdict = v
	case model.KindRebuttal:
		r, ok := m.rebuttals[id]
		if !ok || r.Status != model.StatusPending {
			return false, nil
		}
		r.Status = status
		r.IsVerified = status == model.StatusApproved
		r.Verdict = v
	default:
		return false, fmt.Errorf("unknown kind %q", kind)
	}
	m.Commits++
	return true, nil
}

// SeedArgument inserts an argument with a fixed id and status.
func (m *MockStore) SeedArgument(id string, status model.Status, content string) *model.Argument {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &model.Argument{ID: id, Content: content, Status: status}
	m.arguments[id] = a
	return a
}
