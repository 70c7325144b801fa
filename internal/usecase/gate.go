package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SavePublish/internal/domain"
	"SavePublish/internal/i18n"
	"SavePublish/internal/ports"
)

// Invocation carries what the dispatcher knows about one call.
type Invocation struct {
	// Resumed is set when the call answers a previously shown prompt.
	Resumed bool
	// Answer is the raw user answer of a resumed call.
	Answer string
	// Modified reports unsaved edits in the client UI.
	Modified   bool
	UILanguage string
	Actor      domain.Actor
}

// GateDeps wires collaborators into the publish gate.
type GateDeps struct {
	Workflows   ports.WorkflowOracle
	Publisher   ports.PublishExecutor
	Targets     ports.TargetResolver
	Languages   ports.LanguageResolver
	Audit       []ports.AuditLog
	Translator  ports.Translator
	Affirmative string
	Logger      *slog.Logger
	Now         func() time.Time
}

// PublishGate decides whether a publish proceeds, waits for the user or aborts.
type PublishGate struct {
	workflows   ports.WorkflowOracle
	publisher   ports.PublishExecutor
	targets     ports.TargetResolver
	languages   ports.LanguageResolver
	audit       []ports.AuditLog
	translator  ports.Translator
	affirmative string
	logger      *slog.Logger
	now         func() time.Time
}

// NewPublishGate constructs the gate.
func NewPublishGate(deps GateDeps) *PublishGate {
	g := &PublishGate{
		workflows:   deps.Workflows,
		publisher:   deps.Publisher,
		targets:     deps.Targets,
		languages:   deps.Languages,
		audit:       deps.Audit,
		translator:  deps.Translator,
		affirmative: deps.Affirmative,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if g.affirmative == "" {
		g.affirmative = defaultAffirmative
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Decide advances the round trip by one invocation. The state is mutated in
// place; the caller persists it while its phase is awaiting an answer.
func (g *PublishGate) Decide(ctx context.Context, st *domain.RoundTripState, item domain.Item, inv *Invocation) (domain.Decision, error) {
	if st == nil || inv == nil {
		return domain.Decision{Outcome: domain.OutcomeSkipped}, nil
	}
	defer func() { st.UpdatedAt = g.now() }()

	proceed, dec, err := g.checkWorkflow(ctx, st, item, inv)
	if err != nil || !proceed {
		return dec, err
	}

	if !inv.Resumed {
		if inv.Modified {
			st.Phase = domain.PhaseAborted
			g.debug("unsaved changes, publish skipped", "session", st.SessionID)
			return g.decision(st, inv, domain.OutcomeUnsavedChanges, "", ""), nil
		}
		st.Phase = domain.PhaseAwaitingPublishConfirm
		prompt := g.text(inv, msgPublishConfirm, item.DisplayName)
		g.debug("awaiting publish confirmation", "session", st.SessionID, "item", item.Ref.ID)
		return g.decision(st, inv, domain.OutcomeSuspended, prompt, ""), nil
	}

	if inv.Answer != g.affirmative {
		st.Phase = domain.PhaseAborted
		g.debug("publish declined", "session", st.SessionID)
		return g.decision(st, inv, domain.OutcomeDeclined, "", ""), nil
	}

	return g.execute(ctx, st, item, inv)
}

// checkWorkflow reports whether the publish confirmation phase may run.
func (g *PublishGate) checkWorkflow(ctx context.Context, st *domain.RoundTripState, item domain.Item, inv *Invocation) (bool, domain.Decision, error) {
	if st.Workflow == domain.WorkflowChecked {
		return true, domain.Decision{}, nil
	}

	st.Workflow = domain.WorkflowChecked
	if inv.Modified {
		st.Modified = domain.PageModified
	}

	if inv.Resumed {
		if st.Modified == domain.PageModified {
			inv.Modified = true
		}
		if inv.Answer != g.affirmative {
			st.Phase = domain.PhaseAborted
			g.debug("workflow confirmation declined", "session", st.SessionID)
			return false, g.decision(st, inv, domain.OutcomeDeclined, "", ""), nil
		}
		inv.Resumed = false
		return true, domain.Decision{}, nil
	}

	state, err := g.workflowState(ctx, item)
	if err != nil {
		return false, domain.Decision{}, err
	}
	if state == nil || state.Final {
		return true, domain.Decision{}, nil
	}

	st.Workflow = domain.WorkflowNotChecked
	st.Phase = domain.PhaseAwaitingWorkflowConfirm
	prompt := g.text(inv, msgWorkflowConfirm, item.DisplayName, state.DisplayName)
	g.debug("awaiting workflow confirmation", "session", st.SessionID, "state", state.DisplayName)
	return false, g.decision(st, inv, domain.OutcomeSuspended, prompt, ""), nil
}

func (g *PublishGate) workflowState(ctx context.Context, item domain.Item) (*domain.WorkflowState, error) {
	if g.workflows == nil {
		return nil, nil
	}
	wf, err := g.workflows.Workflow(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("resolve workflow for %s: %w", item.Ref.ID, err)
	}
	if wf == nil {
		return nil, nil
	}
	state, err := wf.State(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("resolve workflow state for %s: %w", item.Ref.ID, err)
	}
	return state, nil
}

func (g *PublishGate) execute(ctx context.Context, st *domain.RoundTripState, item domain.Item, inv *Invocation) (domain.Decision, error) {
	st.Phase = domain.PhaseExecuting

	var targets []domain.Database
	if g.targets != nil {
		var err error
		if targets, err = g.targets.Targets(ctx); err != nil {
			return domain.Decision{}, fmt.Errorf("resolve publishing targets: %w", err)
		}
	}
	if len(targets) == 0 {
		st.Phase = domain.PhaseAborted
		return g.decision(st, inv, domain.OutcomeNoTargets, "", g.text(inv, msgNoTargets)), nil
	}

	var languages []domain.Language
	if g.languages != nil {
		var err error
		if languages, err = g.languages.Languages(ctx); err != nil {
			return domain.Decision{}, fmt.Errorf("resolve languages: %w", err)
		}
	}
	if len(languages) == 0 {
		st.Phase = domain.PhaseAborted
		return g.decision(st, inv, domain.OutcomeNoLanguages, "", g.text(inv, msgNoLanguages)), nil
	}

	g.recordAudit(ctx, st, item, inv.Actor)

	if g.publisher == nil {
		return domain.Decision{}, fmt.Errorf("publish executor is not configured")
	}
	err := g.publisher.Publish(ctx, ports.PublishJob{
		Item:            item,
		Targets:         targets,
		Languages:       languages,
		IncrementalOnly: false,
		Synchronous:     true,
	})
	if err != nil {
		return domain.Decision{}, fmt.Errorf("publish %s: %w", item.Ref.ID, err)
	}

	st.Phase = domain.PhaseDone
	return g.decision(st, inv, domain.OutcomePublished, "", g.text(inv, msgPublishing)), nil
}

func (g *PublishGate) recordAudit(ctx context.Context, st *domain.RoundTripState, item domain.Item, actor domain.Actor) {
	message := i18n.Format(msgAuditPublish, item.AuditName())
	if g.logger != nil {
		g.logger.Info(message, "audit", true, "actor", actor.Name, "session", st.SessionID)
	}

	entry := domain.AuditEntry{
		SessionID: st.SessionID,
		Item:      item.Ref,
		Actor:     actor.Name,
		Message:   message,
		CreatedAt: g.now(),
	}
	for _, sink := range g.audit {
		if err := sink.Record(ctx, entry); err != nil && g.logger != nil {
			g.logger.Warn("audit sink failed", "error", err, "session", st.SessionID)
		}
	}
}

func (g *PublishGate) decision(st *domain.RoundTripState, inv *Invocation, outcome domain.Outcome, prompt, alert string) domain.Decision {
	return domain.Decision{
		SessionID: st.SessionID,
		Phase:     st.Phase,
		Outcome:   outcome,
		Prompt:    prompt,
		Alert:     alert,
		Modified:  inv.Modified,
	}
}

func (g *PublishGate) text(inv *Invocation, key string, args ...any) string {
	if g.translator == nil {
		return i18n.Format(key, args...)
	}
	return g.translator.Text(inv.UILanguage, key, args...)
}

func (g *PublishGate) debug(msg string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
