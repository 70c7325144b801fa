package usecase

import (
	"context"
	"sync"
	"time"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

type fakeItems struct {
	items map[string]domain.Item
	err   error
}

func (f *fakeItems) Item(_ context.Context, ref domain.ItemRef) (*domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[ref.ID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

type fakeWorkflow struct {
	state *domain.WorkflowState
}

func (f fakeWorkflow) State(context.Context, domain.Item) (*domain.WorkflowState, error) {
	return f.state, nil
}

type fakeOracle struct {
	workflow ports.Workflow
	calls    int
}

func (f *fakeOracle) Workflow(context.Context, domain.Item) (ports.Workflow, error) {
	f.calls++
	return f.workflow, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	jobs  []ports.PublishJob
	err   error
	delay time.Duration
}

func (f *fakePublisher) Publish(_ context.Context, job ports.PublishJob) error {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return f.err
}

type fakeTargets []domain.Database

func (f fakeTargets) Targets(context.Context) ([]domain.Database, error) { return f, nil }

type fakeLanguages []domain.Language

func (f fakeLanguages) Languages(context.Context) ([]domain.Language, error) { return f, nil }

type fakeIndex struct {
	mu   sync.Mutex
	refs []domain.ItemRef
}

func (f *fakeIndex) Refresh(_ context.Context, ref domain.ItemRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs = append(f.refs, ref)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

type fakeBaseRule domain.CommandState

func (f fakeBaseRule) QueryState(context.Context, domain.Item, domain.Actor) domain.CommandState {
	return domain.CommandState(f)
}

func languages(codes ...string) fakeLanguages {
	out := make(fakeLanguages, 0, len(codes))
	for _, code := range codes {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			panic(err)
		}
		out = append(out, lang)
	}
	return out
}
