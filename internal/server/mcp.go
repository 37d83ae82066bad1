package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/me/sheetsync/internal/scheduler"
	"github.com/me/sheetsync/pkg/model"
)

// StatusInput is the input schema for the sync_status tool.
type StatusInput struct{}

// HistoryInput is the input schema for the sync_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return, newest first (default 20)"`
}

// HistoryOutput is the output schema for the sync_history tool.
type HistoryOutput struct {
	Runs  []model.RunRecord `json:"runs"`
	Count int               `json:"count"`
}

// StopInput is the input schema for the stop_auto_sync tool.
type StopInput struct{}

// mcpTools exposes the auto-sync controls to MCP clients.
type mcpTools struct {
	autoSync scheduler.AutoSync
}

func newMCPServer(autoSync scheduler.AutoSync) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "sheetsync", Version: Version}, nil)
	t := &mcpTools{autoSync: autoSync}

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report whether auto-sync is running and the outcome of the latest sync cycle",
	}, t.handleStatus)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sync_history",
		Description: "List recent sync cycles, newest first",
	}, t.handleHistory)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "stop_auto_sync",
		Description: "Stop the recurring sync job if one is running",
	}, t.handleStop)

	return srv
}

func newMCPHandler(s *Server) http.Handler {
	srv := newMCPServer(s.autoSync)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return srv
	}, nil)
}

func (t *mcpTools) handleStatus(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, model.StatusResponse, error) {
	return nil, t.autoSync.Status(), nil
}

func (t *mcpTools) handleHistory(_ context.Context, _ *mcp.CallToolRequest, in HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	runs := t.autoSync.History(limit)
	if runs == nil {
		runs = []model.RunRecord{}
	}
	return nil, HistoryOutput{Runs: runs, Count: len(runs)}, nil
}

func (t *mcpTools) handleStop(ctx context.Context, _ *mcp.CallToolRequest, _ StopInput) (*mcp.CallToolResult, model.StopResponse, error) {
	res, err := t.autoSync.Stop(ctx)
	if err != nil && !errors.Is(err, model.ErrShutdownTimeout) {
		return nil, model.StopResponse{}, err
	}
	return nil, stopResponse(res), nil
}
