package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "match":
		err = runMatch(os.Args[2:])
	case "rank":
		err = runRank(os.Args[2:])
	case "explain":
		err = runExplain(os.Args[2:])
	case "answer":
		err = runAnswer(os.Args[2:])
	case "build":
		err = runBuild(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("answerbank %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`answerbank — question matching over a curated answer corpus

Usage:
  answerbank <command> [arguments]

Commands:
  match    <question>         Match a question against the repository
  rank     <question>         Rank repository records by match score
  explain  <question>         Show extraction and scoring diagnostics
  answer   <question>         Answer via repository, then LLM fallback
  build    <markdown files>   Build the corpus from assignment markdown
  stats                       Show repository statistics
  mcp                         Serve the MCP tools over stdio
  version                     Print the version

Common flags:
  --corpus <path>   JSON corpus path (env ANSWERBANK_CORPUS)
  --db <path>       SQLite corpus path (env ANSWERBANK_CORPUS_DB)
  --llm <p/m>       Completion provider/model (env ANSWERBANK_LLM)
  --json            JSON output
  --verbose         Log matching decisions to stderr

Run 'answerbank <command>' with no arguments for command usage.`)
}
