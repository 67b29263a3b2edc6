package main

import (
	"testing"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"what", "command", "--json", "--limit", "3", "--corpus", "q.json", "shows"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !f.jsonOut {
		t.Fatal("expected --json set")
	}
	if f.limit != 3 {
		t.Fatalf("expected limit 3, got %d", f.limit)
	}
	if f.corpus != "q.json" {
		t.Fatalf("expected corpus q.json, got %q", f.corpus)
	}
	if got := f.question(); got != "what command shows" {
		t.Fatalf("positional args must join into the question, got %q", got)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	if _, err := parseFlags([]string{"--limit"}); err == nil {
		t.Fatal("expected error for missing flag value")
	}
	if _, err := parseFlags([]string{"--limit", "zero"}); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
	if _, err := parseFlags([]string{"--bogus"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
