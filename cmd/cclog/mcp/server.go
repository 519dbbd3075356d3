package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cclog/internal/core/config"
	"cclog/internal/core/db"
	"cclog/internal/core/importer"
	"cclog/internal/core/search"
)

// SearchLogsArgs defines arguments for the search_logs tool
type SearchLogsArgs struct {
	Query      string `json:"query" jsonschema:"description=Search term to match against content block text,required"`
	Limit      int    `json:"limit,omitempty" jsonschema:"description=Max number of matches to return (default: 20)"`
	Project    string `json:"project,omitempty" jsonschema:"description=Filter by project path"`
	Code       bool   `json:"code,omitempty" jsonschema:"description=Search the code-optimized index (no stemming)"`
	AfterDate  string `json:"after_date,omitempty" jsonschema:"description=Only matches after this date (ISO 8601 format, e.g. 2025-01-01)"`
	BeforeDate string `json:"before_date,omitempty" jsonschema:"description=Only matches before this date (ISO 8601 format)"`
}

// GetSessionDetailArgs defines arguments for the get_session_detail tool
type GetSessionDetailArgs struct {
	SessionUUID string `json:"session_uuid" jsonschema:"description=Session UUID to retrieve,required"`
	SearchQuery string `json:"search_query,omitempty" jsonschema:"description=Optional search term to find matching messages"`
}

// ListRecentSessionsArgs defines arguments for the list_recent_sessions tool
type ListRecentSessionsArgs struct {
	Limit   int    `json:"limit,omitempty" jsonschema:"description=Max sessions to return (default: 20)"`
	Project string `json:"project,omitempty" jsonschema:"description=Filter by project path"`
}

// LogMatch represents a single content block search hit
type LogMatch struct {
	SessionUUID string `json:"session_uuid"`
	Summary     string `json:"summary"`
	Project     string `json:"project"`
	Timestamp   string `json:"timestamp"`
	MessageType string `json:"message_type"`
	BlockType   string `json:"block_type"`
	Snippet     string `json:"snippet"`
}

// SessionDetail represents a session with key messages (not full conversation)
type SessionDetail struct {
	SessionUUID       string          `json:"session_uuid"`
	Summary           string          `json:"summary"`
	Project           string          `json:"project"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
	MessageCount      int             `json:"message_count"`
	TotalInputTokens  int             `json:"total_input_tokens"`
	TotalOutputTokens int             `json:"total_output_tokens"`
	FirstMessage      *MessageDetail  `json:"first_message,omitempty"`
	LastMessage       *MessageDetail  `json:"last_message,omitempty"`
	MatchingMessages  []MessageDetail `json:"matching_messages,omitempty"`
}

// MessageDetail represents a single message in a session
type MessageDetail struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Sequence  int    `json:"sequence"`
}

// SessionSummary represents a session in the list view
type SessionSummary struct {
	SessionUUID  string `json:"session_uuid"`
	Summary      string `json:"summary"`
	Project      string `json:"project"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// StartServer starts the MCP server
func StartServer(dbPath string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			log.Printf("Error closing database: %v", closeErr)
		}
	}()

	s := server.NewMCPServer(
		"cclog",
		"1.0.0",
	)

	searchTool := mcp.NewTool("search_logs",
		mcp.WithDescription("Search Claude Code session logs for a query string across all content block text. Supports date and project filtering, plus a code-optimized index that preserves identifiers."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term to match against content block text")),
		mcp.WithNumber("limit",
			mcp.Description("Max number of matches to return (default: 20)")),
		mcp.WithString("project",
			mcp.Description("Filter by project path")),
		mcp.WithBoolean("code",
			mcp.Description("If true, searches the code-optimized index (no stemming), so identifiers like getUserById match exactly")),
		mcp.WithString("after_date",
			mcp.Description("Only matches after this date (ISO 8601 format, e.g. '2025-01-01' or '2025-01-08T10:00:00Z')")),
		mcp.WithString("before_date",
			mcp.Description("Only matches before this date (ISO 8601 format)")),
	)
	s.AddTool(searchTool, makeSearchLogsHandler(database))

	detailTool := mcp.NewTool("get_session_detail",
		mcp.WithDescription("Retrieve session info with first message, last message, and optionally matching messages for a specific Claude Code session"),
		mcp.WithString("session_uuid",
			mcp.Required(),
			mcp.Description("Session UUID to retrieve")),
		mcp.WithString("search_query",
			mcp.Description("Optional search term to find matching messages in the session")),
	)
	s.AddTool(detailTool, makeGetSessionDetailHandler(database))

	listTool := mcp.NewTool("list_recent_sessions",
		mcp.WithDescription("Get recent Claude Code sessions, optionally filtered by project"),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions to return (default: 20)")),
		mcp.WithString("project",
			mcp.Description("Filter by project path")),
	)
	s.AddTool(listTool, makeListRecentSessionsHandler(database))

	return server.ServeStdio(s)
}

// syncDatabase ensures the database is up-to-date before running tool queries
func syncDatabase(ctx context.Context, database *db.DB) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Silent incremental import, no progress output over stdio
	imp := importer.New(database)
	if _, err := imp.ImportDirectory(cfg.ProjectsDir, nil); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	return nil
}

func makeSearchLogsHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := syncDatabase(ctx, database); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
		}

		var args SearchLogsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		var coreResults []search.Result
		var err error
		if args.Code {
			coreResults, err = search.SearchCode(database, args.Query, limit)
		} else {
			filters := search.ParseQuery(args.Query)
			filters.Project = args.Project
			applyDateArg(&filters.AfterDate, &filters.HasAfter, args.AfterDate)
			applyDateArg(&filters.BeforeDate, &filters.HasBefore, args.BeforeDate)
			coreResults, err = search.SearchWithFilters(database, filters, limit)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		var results []LogMatch
		for _, r := range coreResults {
			results = append(results, LogMatch{
				SessionUUID: r.SessionUUID,
				Summary:     r.SessionSummary,
				Project:     r.ProjectPath,
				Timestamp:   r.Timestamp,
				MessageType: r.MessageType,
				BlockType:   r.BlockType,
				Snippet:     r.Snippet,
			})
		}

		resultJSON, err := json.Marshal(map[string]interface{}{
			"matches": results,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeGetSessionDetailHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := syncDatabase(ctx, database); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
		}

		var args GetSessionDetailArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		coreDetail, err := database.GetSessionDetail(args.SessionUUID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("session not found: %v", err)), nil
		}

		session := SessionDetail{
			SessionUUID:       coreDetail.SessionUUID,
			Summary:           coreDetail.Summary,
			Project:           coreDetail.ProjectPath,
			CreatedAt:         coreDetail.CreatedAt.Format("2006-01-02 15:04:05"),
			UpdatedAt:         coreDetail.UpdatedAt.Format("2006-01-02 15:04:05"),
			MessageCount:      len(coreDetail.Messages),
			TotalInputTokens:  coreDetail.TotalInputTokens,
			TotalOutputTokens: coreDetail.TotalOutputTokens,
		}

		if len(coreDetail.Messages) > 0 {
			session.FirstMessage = messageDetail(coreDetail.Messages[0], 0)
			last := len(coreDetail.Messages) - 1
			session.LastMessage = messageDetail(coreDetail.Messages[last], last)
		}

		if args.SearchQuery != "" {
			session.MatchingMessages = []MessageDetail{}
			queryLower := strings.ToLower(args.SearchQuery)
			for i, msg := range coreDetail.Messages {
				if strings.Contains(strings.ToLower(messageText(msg)), queryLower) {
					session.MatchingMessages = append(session.MatchingMessages, *messageDetail(msg, i))
					if len(session.MatchingMessages) >= 5 {
						break
					}
				}
			}
		}

		resultJSON, err := json.Marshal(session)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeListRecentSessionsHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := syncDatabase(ctx, database); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
		}

		var args ListRecentSessionsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		coreSessions, err := database.ListSessions(args.Project, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		var sessions []SessionSummary
		for _, cs := range coreSessions {
			sessions = append(sessions, SessionSummary{
				SessionUUID:  cs.SessionUUID,
				Summary:      cs.Summary,
				Project:      cs.ProjectPath,
				UpdatedAt:    cs.UpdatedAt.Format("2006-01-02 15:04:05"),
				MessageCount: cs.MessageCount,
			})
		}

		resultJSON, err := json.Marshal(map[string]interface{}{
			"sessions": sessions,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

// applyDateArg parses an ISO 8601 date argument into a filter field,
// ignoring values that don't parse
func applyDateArg(dst *time.Time, set *bool, value string) {
	if value == "" {
		return
	}
	for _, format := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(format, value); err == nil {
			*dst = t
			*set = true
			return
		}
	}
}

// messageText concatenates a message's text-bearing blocks for matching
// and display
func messageText(msg db.MessageDetail) string {
	var parts []string
	for _, b := range msg.Blocks {
		if b.TextContent != "" {
			parts = append(parts, b.TextContent)
		}
	}
	return strings.Join(parts, "\n")
}

func messageDetail(msg db.MessageDetail, sequence int) *MessageDetail {
	content := messageText(msg)
	if len(content) > 2000 {
		content = content[:2000] + "..."
	}
	timestamp := ""
	if !msg.Timestamp.IsZero() {
		timestamp = msg.Timestamp.Format("2006-01-02 15:04:05")
	}
	return &MessageDetail{
		Type:      msg.Type,
		Content:   content,
		Timestamp: timestamp,
		Sequence:  sequence,
	}
}
