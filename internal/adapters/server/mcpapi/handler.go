// Package mcpapi provides a stateless MCP streamable-HTTP adapter exposing
// the read-side analytics queries as tools.
package mcpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/sikte/internal/analytics"
	"github.com/hylla/sikte/internal/timeutil"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one MCP adapter with the four read-only analytics tools.
func NewHandler(cfg Config, store *analytics.Store) (*Handler, error) {
	if store == nil {
		return nil, fmt.Errorf("analytics store is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerHistoryTool(mcpSrv, store)
	registerStatsTool(mcpSrv, store)
	registerCategoriesTool(mcpSrv, store)
	registerReportTool(mcpSrv, store)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "sikte"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerHistoryTool registers the `sikte.goal_progress_history` tool.
func registerHistoryTool(srv *mcpserver.MCPServer, store *analytics.Store) {
	srv.AddTool(
		mcp.NewTool(
			"sikte.goal_progress_history",
			mcp.WithDescription("Return a goal's progress entries within a trailing window, oldest first."),
			mcp.WithString("goal_id", mcp.Required(), mcp.Description("Goal identifier")),
			mcp.WithNumber("days", mcp.Description("Trailing window in days (default 30)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			goalID, err := req.RequireString("goal_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			days := int(req.GetFloat("days", float64(analytics.DefaultHistoryWindowDays)))
			result, err := mcp.NewToolResultJSON(store.GoalProgressHistory(goalID, days))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return result, nil
		},
	)
}

// registerStatsTool registers the `sikte.productivity_stats` tool.
func registerStatsTool(srv *mcpserver.MCPServer, store *analytics.Store) {
	srv.AddTool(
		mcp.NewTool(
			"sikte.productivity_stats",
			mcp.WithDescription("Return rolling work/break statistics for a trailing window."),
			mcp.WithNumber("days", mcp.Description("Trailing window in days (default 7)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			days := int(req.GetFloat("days", float64(analytics.DefaultStatsWindowDays)))
			result, err := mcp.NewToolResultJSON(store.ProductivityStats(days))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return result, nil
		},
	)
}

// registerCategoriesTool registers the `sikte.category_analytics` tool.
func registerCategoriesTool(srv *mcpserver.MCPServer, store *analytics.Store) {
	srv.AddTool(
		mcp.NewTool(
			"sikte.category_analytics",
			mcp.WithDescription("Return per-category goal and time rollups over the whole log."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := mcp.NewToolResultJSON(store.CategoryAnalytics())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return result, nil
		},
	)
}

// registerReportTool registers the `sikte.generate_report` tool.
func registerReportTool(srv *mcpserver.MCPServer, store *analytics.Store) {
	srv.AddTool(
		mcp.NewTool(
			"sikte.generate_report",
			mcp.WithDescription("Build a date-range report with summary, daily buckets, and per-goal breakdown."),
			mcp.WithString("start", mcp.Required(), mcp.Description("Range start (YYYY-MM-DD)")),
			mcp.WithString("end", mcp.Required(), mcp.Description("Range end (YYYY-MM-DD, inclusive)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start, err := parseDay(req, "start", false)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			end, err := parseDay(req, "end", true)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			report, err := store.GenerateReport(start, end)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := mcp.NewToolResultJSON(report)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return result, nil
		},
	)
}

// parseDay reads one required day argument, expanding an end day to cover
// its final second so the inclusive range holds.
func parseDay(req mcp.CallToolRequest, key string, endOfDay bool) (time.Time, error) {
	raw, err := req.RequireString(key)
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.ParseInLocation(timeutil.DayFormat, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", key, err)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Second), nil
	}
	return day, nil
}
