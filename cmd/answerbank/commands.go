package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/answerbank/answerbank/internal/answer"
	"github.com/answerbank/answerbank/internal/config"
	"github.com/answerbank/answerbank/internal/corpus"
	"github.com/answerbank/answerbank/internal/ingest"
	"github.com/answerbank/answerbank/internal/match"
	"github.com/answerbank/answerbank/internal/mcp"
	"github.com/answerbank/answerbank/internal/repo"
)

// cliFlags holds the flags shared across commands. Positional arguments
// are joined into the question text.
type cliFlags struct {
	corpus     string
	db         string
	llm        string
	file       string
	out        string
	limit      int
	jsonOut    bool
	verbose    bool
	positional []string
}

func parseFlags(args []string) (cliFlags, error) {
	f := cliFlags{limit: 5}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		needsValue := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		switch {
		case arg == "--json":
			f.jsonOut = true
		case arg == "--verbose":
			f.verbose = true
		case arg == "--corpus":
			v, err := needsValue()
			if err != nil {
				return f, err
			}
			f.corpus = v
		case arg == "--db":
			v, err := needsValue()
			if err != nil {
				return f, err
			}
			f.db = v
		case arg == "--llm":
			v, err := needsValue()
			if err != nil {
				return f, err
			}
			f.llm = v
		case arg == "--file":
			v, err := needsValue()
			if err != nil {
				return f, err
			}
			f.file = v
		case arg == "--out":
			v, err := needsValue()
			if err != nil {
				return f, err
			}
			f.out = v
		case arg == "--limit":
			v, err := needsValue()
			if err != nil {
				return f, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return f, fmt.Errorf("invalid --limit value %q", v)
			}
			f.limit = n
		case strings.HasPrefix(arg, "-"):
			return f, fmt.Errorf("unknown flag: %s", arg)
		default:
			f.positional = append(f.positional, arg)
		}
	}
	return f, nil
}

func (f cliFlags) question() string {
	return strings.TrimSpace(strings.Join(f.positional, " "))
}

// loadMatcher resolves configuration and loads the repository, preferring
// the SQLite corpus when one is configured.
func loadMatcher(f cliFlags) (*repo.Repository, *match.Matcher, error) {
	resolved, err := config.ResolveConfig(config.ResolveOptions{
		CLICorpus:   f.corpus,
		CLICorpusDB: f.db,
		CLILLM:      f.llm,
	})
	if err != nil {
		return nil, nil, err
	}

	var repository *repo.Repository
	if resolved.CorpusDB.Value != "" {
		repository, err = repo.LoadSQLite(context.Background(), resolved.CorpusDB.Value)
	} else {
		repository, err = repo.LoadJSON(resolved.CorpusPath.Value)
	}
	if err != nil {
		return nil, nil, err
	}
	if repository.Len() == 0 {
		fmt.Fprintf(os.Stderr, "Warning: corpus %s is empty or missing; matching will always miss\n", repository.Source())
	}

	m := match.New(repository, match.Config{
		CacheSize: resolved.EffectiveCacheSize(0),
		Verbose:   f.verbose,
	})
	return repository, m, nil
}

func runMatch(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	question := f.question()
	if question == "" {
		return fmt.Errorf("usage: answerbank match <question> [--corpus path] [--db path] [--json]")
	}

	_, m, err := loadMatcher(f)
	if err != nil {
		return err
	}

	matched, ans := m.Match(question)
	if f.jsonOut {
		out := map[string]any{"matched": matched}
		if matched {
			out["answer"] = ans
		}
		return printJSON(out)
	}
	if !matched {
		fmt.Println("No match.")
		return nil
	}
	fmt.Println(ans)
	return nil
}

func runRank(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	question := f.question()
	if question == "" {
		return fmt.Errorf("usage: answerbank rank <question> [--limit n] [--json]")
	}

	_, m, err := loadMatcher(f)
	if err != nil {
		return err
	}

	ranked := m.Rank(question, f.limit)
	if f.jsonOut {
		return printJSON(ranked)
	}
	if len(ranked) == 0 {
		fmt.Println("No candidates cleared their gates.")
		return nil
	}
	for i, r := range ranked {
		fmt.Printf("%d. [%d.%d] %.3f %s\n", i+1, r.GroupID, r.ItemID, r.Score, firstLine(r.QuestionText))
	}
	return nil
}

func runExplain(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	question := f.question()
	if question == "" {
		return fmt.Errorf("usage: answerbank explain <question>")
	}

	_, m, err := loadMatcher(f)
	if err != nil {
		return err
	}
	return printJSON(m.Explain(question))
}

func runAnswer(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	question := f.question()
	if question == "" {
		return fmt.Errorf("usage: answerbank answer <question> [--file attachment] [--llm provider/model] [--json]")
	}

	_, m, err := loadMatcher(f)
	if err != nil {
		return err
	}

	var fileInfo *ingest.FileInfo
	if f.file != "" {
		info, err := ingest.ExtractFile(context.Background(), f.file)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.file, err)
		}
		fileInfo = &info
	}

	provider, model, reason, err := answer.ResolveProvider(f.llm)
	if err != nil {
		return err
	}
	if provider == nil && f.verbose {
		fmt.Fprintf(os.Stderr, "[answer] no completion provider (%s); repository only\n", reason)
	}

	engine := answer.NewEngine(m, provider, model)
	res, err := engine.Respond(context.Background(), answer.Options{Question: question, File: fileInfo})
	if err != nil {
		return err
	}

	if f.jsonOut {
		return printJSON(res)
	}
	fmt.Println(res.Answer)
	if res.Degraded {
		fmt.Fprintf(os.Stderr, "(degraded: %s)\n", res.Reason)
	}
	return nil
}

func runBuild(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(f.positional) == 0 {
		return fmt.Errorf("usage: answerbank build <markdown files...> [--out corpus.json] [--db corpus.db]")
	}

	records, warnings, err := corpus.Build(f.positional)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	out := f.out
	if out == "" && f.db == "" {
		resolved, err := config.ResolveConfig(config.ResolveOptions{CLICorpus: f.corpus})
		if err != nil {
			return err
		}
		out = resolved.CorpusPath.Value
	}

	if out != "" {
		if err := corpus.WriteJSON(out, records); err != nil {
			return err
		}
		fmt.Printf("Exported %d questions to %s\n", len(records), out)
	}
	if f.db != "" {
		if err := corpus.WriteSQLite(context.Background(), f.db, records); err != nil {
			return err
		}
		fmt.Printf("Exported %d questions to %s\n", len(records), f.db)
	}
	return nil
}

func runStats(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	repository, _, err := loadMatcher(f)
	if err != nil {
		return err
	}

	stats := repository.Stats()
	if f.jsonOut {
		return printJSON(stats)
	}
	fmt.Printf("Records:  %d\n", stats.Records)
	fmt.Printf("Keywords: %d\n", stats.Keywords)
	fmt.Printf("Source:   %s\n", stats.Source)
	for _, g := range stats.Groups {
		fmt.Printf("  assignment %d: %d questions\n", g.GroupID, g.Records)
	}
	return nil
}

func runMCP(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	repository, m, err := loadMatcher(f)
	if err != nil {
		return err
	}

	provider, model, reason, err := answer.ResolveProvider(f.llm)
	if err != nil {
		return err
	}
	if provider == nil {
		fmt.Fprintf(os.Stderr, "answerbank mcp: no completion provider (%s); answer tool is repository-only\n", reason)
	}

	srv := mcp.NewServer(mcp.ServerConfig{
		Repository: repository,
		Matcher:    m,
		Engine:     answer.NewEngine(m, provider, model),
		Version:    version,
	})
	return server.ServeStdio(srv)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}
