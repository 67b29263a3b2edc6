package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfig_Precedence_ConfigEnvCLI(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yaml := `corpus_path: from-config.json
corpus_db: from-config.db
cache:
  size: 50
llm:
  model: openai/gpt-4o-mini
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ANSWERBANK_CORPUS", "from-env.json")
	t.Setenv("ANSWERBANK_LLM", "openrouter/meta-llama/llama-3.3-70b")
	t.Setenv("ANSWERBANK_CORPUS_DB", "")
	t.Setenv("ANSWERBANK_CACHE_SIZE", "")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: cfgPath,
		CLICorpus:  "from-cli.json",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if resolved.CorpusPath.Source != SourceCLI || resolved.CorpusPath.Value != "from-cli.json" {
		t.Fatalf("expected corpus path from cli, got %s=%q", resolved.CorpusPath.Source, resolved.CorpusPath.Value)
	}
	if resolved.LLMModel.Source != SourceEnv {
		t.Fatalf("expected llm model from env, got %s", resolved.LLMModel.Source)
	}
	if resolved.CorpusDB.Source != SourceConfig || resolved.CorpusDB.Value != "from-config.db" {
		t.Fatalf("expected corpus db from config, got %s=%q", resolved.CorpusDB.Source, resolved.CorpusDB.Value)
	}
	if resolved.CacheSize.Source != SourceConfig || resolved.EffectiveCacheSize(200) != 50 {
		t.Fatalf("expected cache size 50 from config, got %s=%q", resolved.CacheSize.Source, resolved.CacheSize.Value)
	}
}

func TestResolveConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ANSWERBANK_CORPUS", "")
	t.Setenv("ANSWERBANK_CORPUS_DB", "")
	t.Setenv("ANSWERBANK_LLM", "")
	t.Setenv("ANSWERBANK_CACHE_SIZE", "")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err != nil {
		t.Fatalf("missing config file must not error: %v", err)
	}
	if resolved.CorpusPath.Source != SourceDefault || resolved.CorpusPath.Value != DefaultCorpusPath {
		t.Fatalf("expected built-in default corpus path, got %s=%q", resolved.CorpusPath.Source, resolved.CorpusPath.Value)
	}
}

func TestAPIKeyForProvider(t *testing.T) {
	resolved := ResolvedConfig{
		LLMKeys: map[string]ResolvedValue{
			"openai":     {Value: "sk-test", Source: SourceEnv, From: "OPENAI_API_KEY"},
			"openrouter": {Value: "or-test", Source: SourceEnv, From: "OPENROUTER_API_KEY"},
		},
	}

	if k := resolved.APIKeyForProvider("openai/gpt-4o-mini"); k.Value != "sk-test" {
		t.Fatalf("expected openai key, got %q", k.Value)
	}
	if k := resolved.APIKeyForProvider("openrouter"); k.Value != "or-test" {
		t.Fatalf("expected openrouter key, got %q", k.Value)
	}
	if k := resolved.APIKeyForProvider("anthropic/claude"); k.Value != "" {
		t.Fatalf("expected no key for unconfigured provider, got %q", k.Value)
	}
}

func TestEffectiveCacheSize_Fallback(t *testing.T) {
	for _, bad := range []string{"", "abc", "0", "-3"} {
		r := ResolvedConfig{CacheSize: ResolvedValue{Value: bad}}
		if got := r.EffectiveCacheSize(200); got != 200 {
			t.Fatalf("value %q must fall back, got %d", bad, got)
		}
	}
}
