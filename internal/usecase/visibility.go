package usecase

import (
	"context"

	"SavePublish/internal/domain"
)

// QueryState computes whether the menu action is hidden, disabled or enabled.
// It has no side effects.
func (c *SavePublishCommand) QueryState(ctx context.Context, selection []domain.ItemRef, actor domain.Actor) (domain.CommandState, error) {
	if len(selection) != 1 {
		return domain.CommandHidden, nil
	}
	item, err := c.resolveItem(ctx, selection[0])
	if err != nil {
		return domain.CommandHidden, err
	}
	if item == nil {
		return domain.CommandHidden, nil
	}
	return c.itemState(ctx, *item, actor), nil
}

func (c *SavePublishCommand) itemState(ctx context.Context, item domain.Item, actor domain.Actor) domain.CommandState {
	if item.ReadOnly || !item.CanWrite {
		return domain.CommandDisabled
	}
	if c.lockRequired(item, actor) {
		return domain.CommandDisabled
	}
	if c.baseRule == nil {
		return domain.CommandEnabled
	}
	return c.baseRule.QueryState(ctx, item, actor)
}

// lockRequired applies the lock-before-edit policy.
func (c *SavePublishCommand) lockRequired(item domain.Item, actor domain.Actor) bool {
	return !actor.IsAdministrator &&
		c.policy.RequireLockBeforeEditing &&
		item.HasLockField &&
		!item.HasLock &&
		item.TemplateID != c.policy.TemplateDefinitionID
}
