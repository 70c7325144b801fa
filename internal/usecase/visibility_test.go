package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SavePublish/internal/domain"
)

const templateDefinitionID = "{AB86861A-6030-46C5-B394-E8F99E8B87DB}"

func TestQueryState(t *testing.T) {
	t.Parallel()

	writable := domain.Item{Ref: homeRef, TemplateID: "{76036F5E-CBCE-46D1-AF0A-4143F9B557AA}", CanWrite: true, HasLockField: true}
	editor := domain.Actor{Name: "sitecore\\editor"}
	admin := domain.Actor{Name: "sitecore\\admin", IsAdministrator: true}

	cases := []struct {
		name     string
		item     domain.Item
		actor    domain.Actor
		lock     bool
		baseRule fakeBaseRule
		want     domain.CommandState
	}{
		{name: "enabled", item: writable, actor: editor, want: domain.CommandEnabled},
		{name: "read only", item: withItem(writable, func(i *domain.Item) { i.ReadOnly = true }), actor: admin, want: domain.CommandDisabled},
		{name: "no write access", item: withItem(writable, func(i *domain.Item) { i.CanWrite = false }), actor: admin, want: domain.CommandDisabled},
		{name: "lock required", item: writable, actor: editor, lock: true, want: domain.CommandDisabled},
		{name: "lock required but admin", item: writable, actor: admin, lock: true, want: domain.CommandEnabled},
		{name: "lock held", item: withItem(writable, func(i *domain.Item) { i.HasLock = true }), actor: editor, lock: true, want: domain.CommandEnabled},
		{name: "no lock field", item: withItem(writable, func(i *domain.Item) { i.HasLockField = false }), actor: editor, lock: true, want: domain.CommandEnabled},
		{name: "template definition", item: withItem(writable, func(i *domain.Item) { i.TemplateID = templateDefinitionID }), actor: editor, lock: true, want: domain.CommandEnabled},
		{name: "base rule decides", item: writable, actor: editor, baseRule: fakeBaseRule(domain.CommandDisabled), want: domain.CommandDisabled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps := CommandDeps{
				Items:  &fakeItems{items: map[string]domain.Item{homeRef.ID: tc.item}},
				Policy: VisibilityPolicy{RequireLockBeforeEditing: tc.lock, TemplateDefinitionID: templateDefinitionID},
			}
			if tc.baseRule != "" {
				deps.BaseRule = tc.baseRule
			}
			cmd := NewSavePublishCommand(deps)

			got, err := cmd.QueryState(context.Background(), []domain.ItemRef{homeRef}, tc.actor)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestQueryStateHiddenForSelection(t *testing.T) {
	t.Parallel()

	cmd := NewSavePublishCommand(CommandDeps{Items: &fakeItems{}})

	for _, selection := range [][]domain.ItemRef{nil, {homeRef, homeRef}, {homeRef}} {
		got, err := cmd.QueryState(context.Background(), selection, domain.Actor{})
		require.NoError(t, err)
		assert.Equal(t, domain.CommandHidden, got)
	}
}

func withItem(item domain.Item, mutate func(*domain.Item)) domain.Item {
	mutate(&item)
	return item
}
