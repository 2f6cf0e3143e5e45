package workflows

import (
	"context"
	"fmt"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
)

// VoyageMapHandler runs voyage map requests as workflows on taskQueue and
// passes every other request to next. The handler waits for the workflow
// to finish.
func VoyageMapHandler(c client.Client, taskQueue string, next ports.MapRequestHandler) ports.MapRequestHandler {
	return func(ctx context.Context, req *domain.MapRequest) (*domain.MapResult, error) {
		if req.Type != domain.MessageVoyageMap || req.Voyage == nil {
			return next(ctx, req)
		}

		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:                    VoyageMapWorkflowID(req.ID),
			TaskQueue:             taskQueue,
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		}, VoyageMapWorkflow, VoyageMapInput{RequestID: req.ID, Request: *req.Voyage})
		if err != nil {
			return nil, fmt.Errorf("start voyage map workflow: %w", err)
		}

		res := &domain.MapResult{RequestID: req.ID, Type: req.Type}
		var out *VoyageMapOutput
		if err := run.Get(ctx, &out); err != nil {
			if IsInvalidRequest(err) {
				res.Error = err.Error()
				return res, nil
			}
			return nil, fmt.Errorf("voyage map workflow %s: %w", run.GetID(), err)
		}
		res.Map = out.Map
		return res, nil
	}
}
