package ports

import (
	"context"
	"time"

	"SavePublish/internal/domain"
)

// ItemRepository resolves host items; a nil item means it no longer exists.
type ItemRepository interface {
	Item(ctx context.Context, ref domain.ItemRef) (*domain.Item, error)
}

// WorkflowOracle reports the workflow attached to an item.
// A nil Workflow covers a missing engine, an engine without workflows and an
// unattached item.
type WorkflowOracle interface {
	Workflow(ctx context.Context, item domain.Item) (Workflow, error)
}

// Workflow reports the current state of an item; nil state is allowed.
type Workflow interface {
	State(ctx context.Context, item domain.Item) (*domain.WorkflowState, error)
}

// PublishJob is the full argument set handed to the publish engine.
type PublishJob struct {
	Item            domain.Item
	Targets         []domain.Database
	Languages       []domain.Language
	IncrementalOnly bool
	Synchronous     bool
}

// PublishExecutor performs the publish on the host.
type PublishExecutor interface {
	Publish(ctx context.Context, job PublishJob) error
}

// TargetResolver lists configured publishing-target databases.
type TargetResolver interface {
	Targets(ctx context.Context) ([]domain.Database, error)
}

// LanguageResolver lists all content languages.
type LanguageResolver interface {
	Languages(ctx context.Context) ([]domain.Language, error)
}

// IndexNotifier refreshes the item in the matching search index, if any.
type IndexNotifier interface {
	Refresh(ctx context.Context, ref domain.ItemRef) error
}

// SessionStore keeps round-trip state between a prompt and its answer.
type SessionStore interface {
	Save(ctx context.Context, state *domain.RoundTripState) error
	// Load returns domain.ErrSessionNotFound for unknown sessions.
	Load(ctx context.Context, sessionID string) (*domain.RoundTripState, error)
	Delete(ctx context.Context, sessionID string) error
	// Claim moves a session from the given awaiting phase to executing.
	// It reports false when another caller got there first.
	Claim(ctx context.Context, sessionID string, from domain.Phase) (bool, error)
}

// SessionExpirer drops sessions last touched before the cutoff.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context, before time.Time) (int, error)
}

// Scheduler runs a job on a recurring trigger.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// AuditLog receives publish audit records.
type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// AuditReader lists stored audit records, newest first.
type AuditReader interface {
	ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// Translator localizes user-facing texts; keys are the English originals.
type Translator interface {
	Text(lang, key string, args ...any) string
}

// BaseRule is the host's default enablement for an applicable command.
type BaseRule interface {
	QueryState(ctx context.Context, item domain.Item, actor domain.Actor) domain.CommandState
}
