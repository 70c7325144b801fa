package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"SavePublish/internal/domain"
	"SavePublish/internal/i18n"
	"SavePublish/internal/ports"
)

// VisibilityPolicy holds the host settings the visibility predicate reads.
type VisibilityPolicy struct {
	RequireLockBeforeEditing bool
	TemplateDefinitionID     string
}

// CommandDeps wires driven adapters into the save & publish command.
type CommandDeps struct {
	Items        ports.ItemRepository
	Sessions     ports.SessionStore
	Index        ports.IndexNotifier
	Gate         *PublishGate
	BaseRule     ports.BaseRule
	Translator   ports.Translator
	Policy       VisibilityPolicy
	NewSessionID func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// SavePublishCommand is the dispatch entry of the save & publish menu action.
type SavePublishCommand struct {
	items        ports.ItemRepository
	sessions     ports.SessionStore
	index        ports.IndexNotifier
	gate         *PublishGate
	baseRule     ports.BaseRule
	translator   ports.Translator
	policy       VisibilityPolicy
	newSessionID func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewSavePublishCommand constructs the command.
func NewSavePublishCommand(deps CommandDeps) *SavePublishCommand {
	c := &SavePublishCommand{
		items:        deps.Items,
		sessions:     deps.Sessions,
		index:        deps.Index,
		gate:         deps.Gate,
		baseRule:     deps.BaseRule,
		translator:   deps.Translator,
		policy:       deps.Policy,
		newSessionID: deps.NewSessionID,
		now:          deps.Now,
		logger:       deps.Logger,
	}
	if c.newSessionID == nil {
		c.newSessionID = uuid.NewString
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Execute starts a publish round trip for the single selected item and then
// refreshes the item in the web search index, whatever the gate decided.
func (c *SavePublishCommand) Execute(ctx context.Context, selection []domain.ItemRef, inv Invocation) (domain.Decision, error) {
	if len(selection) != 1 || c.gate == nil {
		return domain.Decision{Outcome: domain.OutcomeSkipped}, nil
	}
	ref := selection[0]

	st := domain.NewRoundTripState(c.newSessionID(), domain.NewPublishRequest(ref), c.now())
	inv.Resumed = false
	inv.Answer = ""
	c.debug("execute", "session", st.SessionID, "item", ref.ID)

	dec, err := c.run(ctx, st, &inv, false)
	c.refreshIndex(ctx, ref)
	return dec, err
}

// Resume feeds the user's answer into a suspended round trip.
func (c *SavePublishCommand) Resume(ctx context.Context, sessionID string, inv Invocation) (domain.Decision, error) {
	if c.sessions == nil || c.gate == nil {
		return domain.Decision{}, domain.ErrSessionNotFound
	}
	st, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.Decision{}, err
	}
	if !st.Phase.Awaiting() {
		return domain.Decision{}, domain.ErrSessionNotFound
	}
	claimed, err := c.sessions.Claim(ctx, sessionID, st.Phase)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("claim session %s: %w", sessionID, err)
	}
	if !claimed {
		c.debug("session already answered", "session", sessionID)
		return domain.Decision{}, domain.ErrSessionNotFound
	}

	inv.Resumed = true
	c.debug("resume", "session", sessionID, "phase", st.Phase)
	return c.run(ctx, st, &inv, true)
}

// Session returns the stored state of a suspended round trip.
func (c *SavePublishCommand) Session(ctx context.Context, sessionID string) (*domain.RoundTripState, error) {
	if c.sessions == nil {
		return nil, domain.ErrSessionNotFound
	}
	return c.sessions.Load(ctx, sessionID)
}

func (c *SavePublishCommand) run(ctx context.Context, st *domain.RoundTripState, inv *Invocation, stored bool) (domain.Decision, error) {
	item, err := c.resolveItem(ctx, st.Request.Ref())
	if err != nil {
		st.Phase = domain.PhaseAborted
		c.persist(ctx, st, stored)
		return domain.Decision{}, err
	}
	if item == nil {
		st.Phase = domain.PhaseAborted
		c.persist(ctx, st, stored)
		return domain.Decision{
			SessionID: st.SessionID,
			Phase:     st.Phase,
			Outcome:   domain.OutcomeItemNotFound,
			Alert:     c.text(inv, msgItemNotFound),
			Modified:  inv.Modified,
		}, nil
	}

	dec, err := c.gate.Decide(ctx, st, *item, inv)
	if err != nil {
		st.Phase = domain.PhaseAborted
		c.persist(ctx, st, stored)
		return domain.Decision{}, err
	}

	if err := c.save(ctx, st, stored); err != nil {
		return domain.Decision{}, err
	}
	return dec, nil
}

func (c *SavePublishCommand) resolveItem(ctx context.Context, ref domain.ItemRef) (*domain.Item, error) {
	if c.items == nil {
		return nil, nil
	}
	item, err := c.items.Item(ctx, ref)
	if errors.Is(err, domain.ErrItemNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve item %s: %w", ref.ID, err)
	}
	return item, nil
}

// save keeps awaiting states and drops terminal ones.
func (c *SavePublishCommand) save(ctx context.Context, st *domain.RoundTripState, stored bool) error {
	if c.sessions == nil {
		return nil
	}
	if st.Phase.Awaiting() {
		if err := c.sessions.Save(ctx, st); err != nil {
			return fmt.Errorf("save session %s: %w", st.SessionID, err)
		}
		return nil
	}
	if !stored {
		return nil
	}
	if err := c.sessions.Delete(ctx, st.SessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", st.SessionID, err)
	}
	return nil
}

// persist is save for paths that already carry an error to report.
func (c *SavePublishCommand) persist(ctx context.Context, st *domain.RoundTripState, stored bool) {
	if err := c.save(ctx, st, stored); err != nil && c.logger != nil {
		c.logger.Warn("drop session", "error", err, "session", st.SessionID)
	}
}

func (c *SavePublishCommand) refreshIndex(ctx context.Context, ref domain.ItemRef) {
	if c.index == nil {
		return
	}
	if err := c.index.Refresh(ctx, ref); err != nil && c.logger != nil {
		c.logger.Warn("search index refresh failed", "error", err, "item", ref.ID)
	}
}

func (c *SavePublishCommand) text(inv *Invocation, key string, args ...any) string {
	if c.translator == nil {
		return i18n.Format(key, args...)
	}
	return c.translator.Text(inv.UILanguage, key, args...)
}

func (c *SavePublishCommand) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
