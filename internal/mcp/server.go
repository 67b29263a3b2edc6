// Package mcp provides a Model Context Protocol server for answerbank.
//
// It exposes the matcher (match, rank, explain), the answer engine, and
// repository statistics as MCP tools over stdio transport. All tools are
// read-only: the repository never changes at serve time, and the match
// cache synchronizes itself, so handlers run without extra locking.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/answerbank/answerbank/internal/answer"
	"github.com/answerbank/answerbank/internal/match"
	"github.com/answerbank/answerbank/internal/repo"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Repository *repo.Repository
	Matcher    *match.Matcher
	Engine     *answer.Engine // optional, nil disables answerbank_answer's LLM fallback
	Version    string
}

// NewServer creates a configured MCP server with all answerbank tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"AnswerBank",
		ver,
		server.WithToolCapabilities(false),
	)

	registerMatchTool(s, cfg.Matcher)
	registerRankTool(s, cfg.Matcher)
	registerExplainTool(s, cfg.Matcher)
	registerAnswerTool(s, cfg.Matcher, cfg.Engine)
	registerStatsTool(s, cfg.Repository)

	return s
}

// --- Tools ---

func registerMatchTool(s *server.MCPServer, m *match.Matcher) {
	tool := mcp.NewTool("answerbank_match",
		mcp.WithDescription("Match a question against the repository of previously answered questions. Returns the stored answer when a record clears its score threshold, or matched=false."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question text to match"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError("question is required"), nil
		}

		matched, ans := m.Match(question)
		result := map[string]any{
			"matched": matched,
		}
		if matched {
			result["answer"] = ans
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerRankTool(s *server.MCPServer, m *match.Matcher) {
	tool := mcp.NewTool("answerbank_rank",
		mcp.WithDescription("Rank repository records against a question by descending match score. Includes records below their match threshold, for corpus inspection."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question text to rank against"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 5, max: 25)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError("question is required"), nil
		}

		limit := 5
		if limitVal, err := req.RequireFloat("limit"); err == nil && int(limitVal) > 0 {
			limit = int(limitVal)
			if limit > 25 {
				limit = 25
			}
		}

		ranked := m.Rank(question, limit)
		data, _ := json.MarshalIndent(ranked, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerExplainTool(s *server.MCPServer, m *match.Matcher) {
	tool := mcp.NewTool("answerbank_explain",
		mcp.WithDescription("Explain how a question scores against the repository: extracted terms, commands, context flags, and per-record scoring diagnostics."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question text to explain"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError("question is required"), nil
		}

		ex := m.Explain(question)
		data, _ := json.MarshalIndent(ex, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerAnswerTool(s *server.MCPServer, m *match.Matcher, engine *answer.Engine) {
	tool := mcp.NewTool("answerbank_answer",
		mcp.WithDescription("Answer a question: repository match first, completion API fallback when no record clears its threshold. Degrades gracefully when no provider is configured."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError("question is required"), nil
		}

		eng := engine
		if eng == nil {
			eng = answer.NewEngine(m, nil, "")
		}
		res, err := eng.Respond(ctx, answer.Options{Question: question})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(res, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerStatsTool(s *server.MCPServer, repository *repo.Repository) {
	tool := mcp.NewTool("answerbank_stats",
		mcp.WithDescription("Get repository statistics: record count, per-assignment breakdown, keyword totals, and the corpus source."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, _ := json.MarshalIndent(repository.Stats(), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}
