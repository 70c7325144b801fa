package host

import (
	"context"
	"fmt"
	"net/url"

	"SavePublish/internal/domain"
	"SavePublish/internal/ports"
)

type workflowResponse struct {
	EngineConfigured bool `json:"engineConfigured"`
	WorkflowCount    int  `json:"workflowCount"`
	Workflow         *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"workflow"`
}

type stateResponse struct {
	State *domain.WorkflowState `json:"state"`
}

// Workflow returns the workflow attached to the item, or nil when the host
// has no workflow engine, no workflows, or the item has none attached.
func (c *Client) Workflow(ctx context.Context, item domain.Item) (ports.Workflow, error) {
	var resp workflowResponse
	found, err := c.get(ctx, "/api/items/"+url.PathEscape(item.Ref.ID)+"/workflow", refQuery(item.Ref), &resp)
	if err != nil {
		return nil, fmt.Errorf("get workflow of %s: %w", item.Ref.ID, err)
	}
	if !found || !resp.EngineConfigured || resp.WorkflowCount <= 0 || resp.Workflow == nil {
		return nil, nil
	}
	c.debug("item workflow", "item", item.Ref.ID, "workflow", resp.Workflow.Name)
	return &workflow{client: c, id: resp.Workflow.ID, name: resp.Workflow.Name}, nil
}

type workflow struct {
	client *Client
	id     string
	name   string
}

// State reports the item's state in this workflow; nil when unresolvable.
func (w *workflow) State(ctx context.Context, item domain.Item) (*domain.WorkflowState, error) {
	q := refQuery(item.Ref)
	q.Set("item", item.Ref.ID)

	var resp stateResponse
	found, err := w.client.get(ctx, "/api/workflows/"+url.PathEscape(w.id)+"/state", q, &resp)
	if err != nil {
		return nil, fmt.Errorf("get state in workflow %s: %w", w.name, err)
	}
	if !found {
		return nil, nil
	}
	return resp.State, nil
}
