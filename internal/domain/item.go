package domain

import (
	"fmt"

	"golang.org/x/text/language"
)

// ItemRef addresses a single version of a content item in one language.
type ItemRef struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Version  int    `json:"version"`
}

// String renders the ref the way the host audit formatter prints items.
func (r ItemRef) String() string {
	return fmt.Sprintf("%s, %s, %d", r.ID, r.Language, r.Version)
}

// Item is the host snapshot of a content item used by the gate and the
// visibility predicate. It is never cached between invocations.
type Item struct {
	Ref          ItemRef `json:"ref"`
	Path         string  `json:"path"`
	DisplayName  string  `json:"displayName"`
	TemplateID   string  `json:"templateId"`
	ReadOnly     bool    `json:"readOnly"`
	CanWrite     bool    `json:"canWrite"`
	HasLockField bool    `json:"hasLockField"`
	HasLock      bool    `json:"hasLock"`
}

// AuditName formats the item for audit records: path (id, language, version).
func (i Item) AuditName() string {
	name := i.Path
	if name == "" {
		name = i.DisplayName
	}
	return fmt.Sprintf("%s (%s)", name, i.Ref)
}

// Actor is the user invoking the command.
type Actor struct {
	Name            string `json:"name"`
	IsAdministrator bool   `json:"isAdministrator"`
}

// Database is a publishing target destination.
type Database struct {
	Name string `json:"name"`
}

// Language is a content language configured on the host.
type Language struct {
	Code string       `json:"code"`
	Tag  language.Tag `json:"-"`
}

// ParseLanguage validates a host language code as a BCP 47 tag.
func ParseLanguage(code string) (Language, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, fmt.Errorf("parse language %q: %w", code, err)
	}
	return Language{Code: code, Tag: tag}, nil
}

// WorkflowState is a read-only snapshot reported by the workflow engine.
type WorkflowState struct {
	DisplayName string `json:"displayName"`
	Final       bool   `json:"final"`
}

// CommandState is the outcome of the visibility predicate.
type CommandState string

const (
	CommandHidden   CommandState = "hidden"
	CommandDisabled CommandState = "disabled"
	CommandEnabled  CommandState = "enabled"
)
