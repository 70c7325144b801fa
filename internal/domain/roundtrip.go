package domain

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned for unknown or already finished round trips.
	ErrSessionNotFound = errors.New("publish session not found")
	// ErrItemNotFound marks an item that no longer exists on the host.
	ErrItemNotFound = errors.New("item not found")
)

// WorkflowCheck tells a resumed call which confirmation phase it resumes.
type WorkflowCheck string

const (
	WorkflowNotChecked WorkflowCheck = "not_checked"
	WorkflowChecked    WorkflowCheck = "checked"
)

// ModifiedFlag remembers unsaved UI edits across a suspension.
type ModifiedFlag string

const (
	PageClean    ModifiedFlag = "clean"
	PageModified ModifiedFlag = "modified"
)

// Phase enumerates the round-trip milestones.
type Phase string

const (
	PhaseInit                    Phase = "init"
	PhaseAwaitingWorkflowConfirm Phase = "awaiting_workflow_confirm"
	PhaseAwaitingPublishConfirm  Phase = "awaiting_publish_confirm"
	PhaseExecuting               Phase = "executing"
	PhaseDone                    Phase = "done"
	PhaseAborted                 Phase = "aborted"
)

// Awaiting reports whether the phase is a suspension point.
func (p Phase) Awaiting() bool {
	return p == PhaseAwaitingWorkflowConfirm || p == PhaseAwaitingPublishConfirm
}

// Terminal reports whether no further resumption is possible.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAborted
}

// PublishRequest identifies the item a round trip publishes.
type PublishRequest struct {
	ItemID   string
	Language string
	Version  int
}

// Ref converts the request back to an item reference.
func (r PublishRequest) Ref() ItemRef {
	return ItemRef{ID: r.ItemID, Language: r.Language, Version: r.Version}
}

// NewPublishRequest captures the selected item at invocation time.
func NewPublishRequest(ref ItemRef) PublishRequest {
	return PublishRequest{ItemID: ref.ID, Language: ref.Language, Version: ref.Version}
}

// RoundTripState is carried across the request, confirm, resume cycle.
// It belongs to exactly one session and one PublishRequest.
type RoundTripState struct {
	SessionID string
	Request   PublishRequest
	Workflow  WorkflowCheck
	Modified  ModifiedFlag
	Phase     Phase
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoundTripState seeds a state for a fresh invocation.
func NewRoundTripState(sessionID string, req PublishRequest, now time.Time) *RoundTripState {
	return &RoundTripState{
		SessionID: sessionID,
		Request:   req,
		Workflow:  WorkflowNotChecked,
		Modified:  PageClean,
		Phase:     PhaseInit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Outcome classifies how an invocation ended.
type Outcome string

const (
	OutcomeSuspended      Outcome = "suspended"
	OutcomePublished      Outcome = "published"
	OutcomeDeclined       Outcome = "declined"
	OutcomeUnsavedChanges Outcome = "unsaved_changes"
	OutcomeNoTargets      Outcome = "no_targets"
	OutcomeNoLanguages    Outcome = "no_languages"
	OutcomeItemNotFound   Outcome = "item_not_found"
	OutcomeSkipped        Outcome = "skipped"
)

// Decision is what the dispatcher shows the user after an invocation.
type Decision struct {
	SessionID string  `json:"sessionId,omitempty"`
	Phase     Phase   `json:"phase"`
	Outcome   Outcome `json:"outcome"`
	Prompt    string  `json:"prompt,omitempty"`
	Alert     string  `json:"alert,omitempty"`
	// Modified echoes the page modified flag, restored after a round trip.
	Modified bool `json:"modified"`
}

// AuditEntry is one persisted audit record.
type AuditEntry struct {
	SessionID string
	Item      ItemRef
	Actor     string
	Message   string
	CreatedAt time.Time
}
