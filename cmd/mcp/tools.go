package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
	"github.com/studyflow/studyflow/internal/errors"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
	"github.com/studyflow/studyflow/internal/services"
)

var (
	listDueReviewsTool = mcp.NewTool("list_due_reviews",
		mcp.WithDescription("List the review items that are due now for a user, oldest first."),
		mcp.WithNumber("user_id",
			mcp.Required(),
			mcp.Description("ID of the user whose reviews to list"),
		),
	)

	completeReviewTool = mcp.NewTool("complete_review",
		mcp.WithDescription("Record a review of a topic and reschedule it with SM-2. "+
			"Quality goes from 1 (forgot) to 5 (perfect recall); 3 or more counts as a pass."),
		mcp.WithNumber("user_id",
			mcp.Required(),
			mcp.Description("ID of the user who owns the review item"),
		),
		mcp.WithNumber("review_id",
			mcp.Required(),
			mcp.Description("ID of the review item"),
		),
		mcp.WithNumber("quality",
			mcp.Required(),
			mcp.Description("Recall quality from 1 to 5"),
		),
	)
)

type dueReviewsResponse struct {
	UserID  int64               `json:"user_id"`
	Count   int                 `json:"count"`
	Reviews []models.ReviewItem `json:"reviews"`
}

type completeReviewResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Review  *models.ReviewItem `json:"review"`
}

// toolHandlers exposes ReviewService operations as MCP tools.
type toolHandlers struct {
	reviews services.ReviewService
	now     func() time.Time
}

func (h *toolHandlers) listDueReviews(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := intArg(request, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := h.reviews.ListReviews(ctx, models.ReviewFilter{
		UserID: userID,
		Status: models.ReviewStatusPending,
		Now:    h.now(),
	})
	if err != nil {
		return toolError(ctx, err), nil
	}
	if items == nil {
		items = []models.ReviewItem{}
	}
	return jsonResult(dueReviewsResponse{UserID: userID, Count: len(items), Reviews: items})
}

func (h *toolHandlers) completeReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := intArg(request, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reviewID, err := intArg(request, "review_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	quality, err := intArg(request, "quality")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	item, err := h.reviews.CompleteReview(ctx, userID, reviewID, int(quality), h.now())
	if err != nil {
		return toolError(ctx, err), nil
	}
	return jsonResult(completeReviewResponse{
		Success: true,
		Message: fmt.Sprintf("Review %d recorded, next due %s", item.ID, item.NextDueAt.Format(time.RFC3339)),
		Review:  item,
	})
}

// intArg reads a whole-number argument. Clients send numbers as float64 or text.
func intArg(request mcp.CallToolRequest, name string) (int64, error) {
	raw, ok := request.Params.Arguments[name]
	if !ok || raw == nil {
		return 0, fmt.Errorf("missing required parameter: %s", name)
	}
	if _, isBool := raw.(bool); isBool {
		return 0, fmt.Errorf("parameter %s must be an integer", name)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("parameter %s must be an integer", name)
	}
	return int64(f), nil
}

func toolError(ctx context.Context, err error) *mcp.CallToolResult {
	appErr := errors.As(err)
	if appErr.Status >= 500 {
		logger.FromContext(ctx).Error("tool call failed: %v", appErr)
	}
	return mcp.NewToolResultError(appErr.Message)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
