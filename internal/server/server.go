// Package server wires the journal into an MCP server over stdio.
//
// This is the composition root: it opens the store, registers the thought
// tools, and hands the configured server back to main. No journal logic
// lives here.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/prothought/internal/config"
	"github.com/HendryAvila/prothought/internal/journal"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with the thought tools registered against a
// journal store opened at cfg.DBPath.
//
// The returned cleanup function closes the store's database connection and
// must be called on shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	store, err := journal.New(journal.Config{DBPath: cfg.DBPath})
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening journal store: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("journal store close", zap.Error(err))
		}
	}

	s := server.NewMCPServer(
		"prothought",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	logTool := NewLogTool(store, log)
	s.AddTool(logTool.Definition(), logTool.Handle)

	listTool := NewListTool(store, log)
	s.AddTool(listTool.Definition(), listTool.Handle)

	retractTool := NewRetractTool(store, log)
	s.AddTool(retractTool.Definition(), retractTool.Handle)

	return s, cleanup, nil
}

func serverInstructions() string {
	return `prothought is a personal journal of timestamped thoughts tagged by inline hashtags.

Use thought_log to record something on the user's behalf, thought_list to read
back a period (today, yesterday, lastweek, lastmonth, or an ISO date) with an
optional hashtag filter, and thought_retract to strike through the most recent
entry when the user changes their mind.`
}
