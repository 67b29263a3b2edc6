package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/answerbank/answerbank/internal/match"
	"github.com/answerbank/answerbank/internal/repo"
)

func setupTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	repository := repo.NewRepository([]repo.Record{
		{
			GroupID: 1, ItemID: 1,
			QuestionText: "What command shows hidden files in the terminal? Use `ls -a` to list all files.",
			AnswerText:   "ls -a",
			Keywords:     []string{"command", "shows", "hidden", "files", "terminal", "list"},
		},
		{
			GroupID: 4, ItemID: 1,
			QuestionText: "Scrape the IMDB rating for the top movies and output JSON.",
			AnswerText:   "fetch the IMDB page and parse the rating span",
			Keywords:     []string{"scrape", "imdb", "rating", "movies", "json"},
		},
	})
	return NewServer(ServerConfig{
		Repository: repository,
		Matcher:    match.New(repository, match.Config{}),
		Version:    "test",
	})
}

// callTool invokes an MCP tool through the server's JSON-RPC entry point.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}

	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestNewServer(t *testing.T) {
	if setupTestServer(t) == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestMatchTool(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_match", map[string]interface{}{
		"question": "What command shows hidden files? Use `ls -a`",
	})

	var parsed struct {
		Matched bool   `json:"matched"`
		Answer  string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &parsed); err != nil {
		t.Fatalf("parsing match result: %v", err)
	}
	if !parsed.Matched || parsed.Answer != "ls -a" {
		t.Fatalf("expected matched answer, got %+v", parsed)
	}
}

func TestMatchToolMiss(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_match", map[string]interface{}{
		"question": "name the capital of France",
	})

	var parsed struct {
		Matched bool `json:"matched"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &parsed); err != nil {
		t.Fatalf("parsing match result: %v", err)
	}
	if parsed.Matched {
		t.Fatal("expected a miss for a no-overlap question")
	}
}

func TestMatchToolMissingQuestion(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_match", map[string]interface{}{})
	if !result.IsError {
		t.Fatal("expected tool error for missing question")
	}
}

func TestRankTool(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_rank", map[string]interface{}{
		"question": "scrape the imdb rating and parse the json output",
		"limit":    float64(3),
	})

	var ranked []match.Ranked
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &ranked); err != nil {
		t.Fatalf("parsing rank result: %v", err)
	}
	if len(ranked) == 0 {
		t.Fatal("expected ranked results")
	}
	if ranked[0].GroupID != 4 {
		t.Fatalf("expected the scraping record first, got group %d", ranked[0].GroupID)
	}
}

func TestExplainTool(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_explain", map[string]interface{}{
		"question": "What command shows hidden files? Use `ls -a`",
	})

	text := getTextContent(t, result)
	if !strings.Contains(text, "commands_detected") {
		t.Fatalf("explain output missing diagnostics: %s", text)
	}
}

func TestAnswerToolRepositoryHit(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_answer", map[string]interface{}{
		"question": "What command shows hidden files? Use `ls -a`",
	})

	var parsed struct {
		Answer string `json:"answer"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &parsed); err != nil {
		t.Fatalf("parsing answer result: %v", err)
	}
	if parsed.Source != "repository" || parsed.Answer != "ls -a" {
		t.Fatalf("expected repository answer, got %+v", parsed)
	}
}

func TestStatsTool(t *testing.T) {
	srv := setupTestServer(t)

	result := callTool(t, srv, "answerbank_stats", map[string]interface{}{})

	var stats repo.Stats
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &stats); err != nil {
		t.Fatalf("parsing stats result: %v", err)
	}
	if stats.Records != 2 || len(stats.Groups) != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
