package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// VoyageMapInput is the input for the voyage map workflow.
type VoyageMapInput struct {
	RequestID string
	Request   domain.VoyageMapRequest
}

// VoyageMapOutput is the finished map and where it was exported, if anywhere.
type VoyageMapOutput struct {
	Map        *domain.MapDocument
	ExportPath string
}

// VoyageMapWorkflowID names the workflow run for a request, so a redelivered
// request joins the run already in progress.
func VoyageMapWorkflowID(requestID string) string {
	return "voyage-map-" + requestID
}

// VoyageMapWorkflow creates a map, imports the voyage track, frames it,
// exports it and announces it. Export failures are logged and do not fail
// the map.
func VoyageMapWorkflow(ctx workflow.Context, input VoyageMapInput) (*VoyageMapOutput, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting voyage map workflow", "requestID", input.RequestID, "details", len(input.Request.Details))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidRequest},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Create the map document
	var doc *domain.MapDocument
	if err := workflow.ExecuteActivity(ctx, "CreateMap", input.Request).Get(ctx, &doc); err != nil {
		return nil, err
	}

	// Step 2: Draw the track
	if err := workflow.ExecuteActivity(ctx, "ImportTrack", doc.ID, input.Request).Get(ctx, nil); err != nil {
		return nil, err
	}

	// Step 3: Center and frame
	if err := workflow.ExecuteActivity(ctx, "PrepareMap", doc.ID).Get(ctx, &doc); err != nil {
		return nil, err
	}

	// Step 4: Export
	out := &VoyageMapOutput{Map: doc}
	if err := workflow.ExecuteActivity(ctx, "ExportMap", doc.ID).Get(ctx, &out.ExportPath); err != nil {
		logger.Warn("export failed", "mapID", doc.ID, "error", err)
	}

	// Step 5: Announce
	_ = workflow.ExecuteActivity(ctx, "AnnounceMap", doc).Get(ctx, nil)

	logger.Info("Voyage map ready", "mapID", doc.ID)
	return out, nil
}

// IsInvalidRequest reports whether a workflow failed because of its input.
func IsInvalidRequest(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == ErrTypeInvalidRequest
}
