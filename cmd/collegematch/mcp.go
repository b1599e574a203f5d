package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/sbvh/collegematch/internal/appctx"
	"github.com/sbvh/collegematch/internal/logctx"
)

// mcpServer exposes the matching core over Model Context Protocol so an
// agent can drive match/cache/reindex without shelling out to the CLI.
type mcpServer struct {
	app    *appctx.Context
	server *server.MCPServer
}

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "expose match/cache/reindex as MCP tools over stdio",
	Long: `serve-mcp starts an MCP server (stdio transport) wrapping the same
appctx.Context the CLI subcommands use, so an MCP client can run the
pipeline, inspect cache state, and trigger a reindex as tool calls.

Example:
  collegematch serve-mcp`,
	RunE: runServeMCP,
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	app, err := appctx.New(appctx.Options{ConfigPath: configPath, DBPath: dbPath}, logctx.Logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &mcpServer{app: app}
	srv.server = server.NewMCPServer(
		"collegematch",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	srv.registerTools()

	return server.ServeStdio(srv.server)
}

func (s *mcpServer) registerTools() {
	matchTool := mcp.NewTool("collegematch_match",
		mcp.WithDescription("Run the five-pass matching pipeline over unmatched seat rows"),
		mcp.WithNumber("workers",
			mcp.Description("number of concurrent group workers (default 4)"),
		),
		mcp.WithString("llm",
			mcp.Description("llm.enabled mode: only config (the default) is accepted; on and off return an error"),
		),
	)
	s.server.AddTool(matchTool, s.handleMatch)

	cacheStatusTool := mcp.NewTool("collegematch_cache_status",
		mcp.WithDescription("Report the current master_version_hash"),
	)
	s.server.AddTool(cacheStatusTool, s.handleCacheStatus)

	cacheCheckTool := mcp.NewTool("collegematch_cache_check",
		mcp.WithDescription("Check for a master_version_hash change and invalidate derived caches if found"),
	)
	s.server.AddTool(cacheCheckTool, s.handleCacheCheck)

	cacheClearTool := mcp.NewTool("collegematch_cache_clear",
		mcp.WithDescription("Unconditionally clear every derived cache (LLM verdict cache, review queue)"),
	)
	s.server.AddTool(cacheClearTool, s.handleCacheClear)

	reindexTool := mcp.NewTool("collegematch_reindex",
		mcp.WithDescription("Clear every derived cache and report the size of the MasterIndex built at server startup; the in-memory index is not rebuilt"),
	)
	s.server.AddTool(reindexTool, s.handleReindex)
}

func (s *mcpServer) handleMatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workers := request.GetInt("workers", 4)
	if workers <= 0 {
		return mcp.NewToolResultError("workers must be > 0"), nil
	}

	llmMode := request.GetString("llm", "config")
	switch llmMode {
	case "on", "off", "config":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("llm must be one of on, off, config; got %q", llmMode)), nil
	}
	if llmMode != "config" {
		// The Verifier's consensus engine is wired once at server startup
		// from llm.enabled in config; unlike the `match --llm` CLI flag
		// this long-lived server can't rebuild it per call.
		return mcp.NewToolResultError("llm override is not supported on a running serve-mcp server; restart with the desired llm.enabled instead"), nil
	}

	stats, err := s.app.Orchestrator.Run(ctx, int(workers))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pipeline run failed: %v", err)), nil
	}

	snap := stats.Snapshot()
	result := fmt.Sprintf("committed=%d queued_for_review=%d\n", snap.Committed, snap.QueuedForReview)
	for pass, count := range snap.PassHits {
		result += fmt.Sprintf("  %s: %d\n", pass, count)
	}
	return mcp.NewToolResultText(result), nil
}

func (s *mcpServer) handleCacheStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hash, err := s.app.Master.VersionHash()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read master_version_hash: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("master_version_hash: %s", hash)), nil
}

func (s *mcpServer) handleCacheCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.app.Cache.CheckAndInvalidate()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cache check failed: %v", err)), nil
	}
	if result.Changed {
		return mcp.NewToolResultText(fmt.Sprintf("master_version_hash changed (%s -> %s); derived caches invalidated", result.OldHash, result.NewHash)), nil
	}
	return mcp.NewToolResultText("master_version_hash unchanged"), nil
}

func (s *mcpServer) handleCacheClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.app.Cache.Clear(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cache clear failed: %v", err)), nil
	}
	return mcp.NewToolResultText("derived caches cleared"), nil
}

func (s *mcpServer) handleReindex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.app.Cache.Clear(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reindex failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("derived caches cleared; MasterIndex from server startup (not rebuilt): %d colleges indexed", s.app.Index.CollegeCount())), nil
}
