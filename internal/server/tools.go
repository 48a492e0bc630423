package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/prothought/internal/journal"
)

// ─── LogTool ─────────────────────────────────────────────────────────────────

// LogTool handles the thought_log MCP tool.
type LogTool struct {
	store *journal.Store
	log   *zap.Logger
}

// NewLogTool creates a LogTool with the given journal store.
func NewLogTool(store *journal.Store, log *zap.Logger) *LogTool {
	return &LogTool{store: store, log: log}
}

// Definition returns the MCP tool definition for thought_log.
func (t *LogTool) Definition() mcp.Tool {
	return mcp.NewTool("thought_log",
		mcp.WithDescription(
			"Record a new thought in the journal. Inline hashtags like #work or #personal "+
				"are extracted and indexed as markers for later filtering.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The thought text, hashtags included (e.g. 'Fixed the login bug #work #bugfix')"),
		),
	)
}

// Handle processes the thought_log tool call.
func (t *LogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := strings.TrimSpace(req.GetString("text", ""))
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	th, err := t.store.Append(text)
	if err != nil {
		t.log.Error("thought_log failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to log thought: %v", err)), nil
	}

	t.log.Info("thought logged", zap.Int64("id", th.ID), zap.Int("markers", len(th.Markers)))

	response := fmt.Sprintf("Saved thought at %s", th.Timestamp)
	if len(th.Markers) > 0 {
		response += " with markers: #" + strings.Join(th.Markers, ", #")
	}
	return mcp.NewToolResultText(response), nil
}

// ─── ListTool ────────────────────────────────────────────────────────────────

// ListTool handles the thought_list MCP tool.
type ListTool struct {
	store *journal.Store
	log   *zap.Logger
}

// NewListTool creates a ListTool with the given journal store.
func NewListTool(store *journal.Store, log *zap.Logger) *ListTool {
	return &ListTool{store: store, log: log}
}

// Definition returns the MCP tool definition for thought_list.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("thought_list",
		mcp.WithDescription(
			"List journal thoughts for a period, optionally filtered by a hashtag marker. "+
				"Thoughts wrapped in ~~ were retracted by the user.",
		),
		mcp.WithString("period",
			mcp.Description("today (default), yesterday, lastweek, lastmonth, or an ISO date YYYY-MM-DD"),
		),
		mcp.WithString("marker",
			mcp.Description("Hashtag to filter by, with or without the leading # (e.g. 'work')"),
		),
	)
}

// Handle processes the thought_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var periodArgs []string
	if period := req.GetString("period", ""); period != "" {
		periodArgs = []string{period}
	}
	marker := strings.TrimPrefix(req.GetString("marker", ""), "#")

	thoughts, err := t.store.ListForPeriod(periodArgs, marker)
	if err != nil {
		t.log.Error("thought_list failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list thoughts: %v", err)), nil
	}

	if len(thoughts) == 0 {
		msg := "No thoughts found for that period"
		if marker != "" {
			msg += fmt.Sprintf(" with marker #%s", marker)
		}
		return mcp.NewToolResultText(msg + "."), nil
	}

	var b strings.Builder
	for _, th := range thoughts {
		fmt.Fprintf(&b, "[%s] %s\n", th.Timestamp, th.Text)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

// ─── RetractTool ─────────────────────────────────────────────────────────────

// RetractTool handles the thought_retract MCP tool.
type RetractTool struct {
	store *journal.Store
	log   *zap.Logger
}

// NewRetractTool creates a RetractTool with the given journal store.
func NewRetractTool(store *journal.Store, log *zap.Logger) *RetractTool {
	return &RetractTool{store: store, log: log}
}

// Definition returns the MCP tool definition for thought_retract.
func (t *RetractTool) Definition() mcp.Tool {
	return mcp.NewTool("thought_retract",
		mcp.WithDescription(
			"Strike through the most recent thought without deleting it ('nvm'). "+
				"Retracting an already-retracted thought is a no-op.",
		),
	)
}

// Handle processes the thought_retract tool call.
func (t *RetractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.store.RetractLast()
	if err != nil {
		t.log.Error("thought_retract failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to retract thought: %v", err)), nil
	}

	switch res.Status {
	case journal.NoThoughts:
		return mcp.NewToolResultText("No thoughts to retract."), nil
	case journal.AlreadyRetracted:
		return mcp.NewToolResultText("Last thought is already retracted."), nil
	default:
		return mcp.NewToolResultText(fmt.Sprintf("Retracted last thought from %s.", res.Timestamp)), nil
	}
}
