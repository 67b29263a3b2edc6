// Package config resolves answerbank configuration from, in increasing
// precedence: the YAML config file, environment variables, and CLI flags.
// Every resolved value records where it came from, so config debugging
// stays honest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI flag overrides into resolution.
type ResolveOptions struct {
	ConfigPath  string
	CLICorpus   string
	CLICorpusDB string
	CLILLM      string
}

// ResolvedConfig is the final layered configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	CorpusPath ResolvedValue `json:"corpus_path"`
	CorpusDB   ResolvedValue `json:"corpus_db"`
	LLMModel   ResolvedValue `json:"llm_model"`
	CacheSize  ResolvedValue `json:"cache_size"`

	LLMKeys map[string]ResolvedValue `json:"llm_keys,omitempty"`
}

type fileConfig struct {
	CorpusPath string `yaml:"corpus_path"`
	CorpusDB   string `yaml:"corpus_db"`
	Cache      struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	LLM struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"api_key"`
	} `yaml:"llm"`
}

// DefaultCorpusPath is where the corpus builder writes by default.
const DefaultCorpusPath = "data/questions.json"

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".answerbank", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.CorpusPath, cfg.CorpusPath, SourceConfig, path)
		apply(&out.CorpusDB, cfg.CorpusDB, SourceConfig, path)
		apply(&out.LLMModel, cfg.LLM.Model, SourceConfig, path)
		if cfg.Cache.Size > 0 {
			out.CacheSize = ResolvedValue{Value: strconv.Itoa(cfg.Cache.Size), Source: SourceConfig, From: path}
		}
		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			provider := providerOf(cfg.LLM.Model)
			if provider == "" {
				provider = "default"
			}
			out.LLMKeys[provider] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.CorpusPath, "ANSWERBANK_CORPUS")
	applyEnv(&out.CorpusDB, "ANSWERBANK_CORPUS_DB")
	applyEnv(&out.LLMModel, "ANSWERBANK_LLM")
	applyEnv(&out.CacheSize, "ANSWERBANK_CACHE_SIZE")

	for env, provider := range map[string]string{
		"OPENAI_API_KEY":     "openai",
		"OPENROUTER_API_KEY": "openrouter",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out.LLMKeys[provider] = ResolvedValue{Value: v, Source: SourceEnv, From: env}
		}
	}

	apply(&out.CorpusPath, opts.CLICorpus, SourceCLI, "--corpus")
	apply(&out.CorpusDB, opts.CLICorpusDB, SourceCLI, "--db")
	apply(&out.LLMModel, opts.CLILLM, SourceCLI, "--llm")

	if out.CorpusPath.Value == "" {
		out.CorpusPath = ResolvedValue{Value: DefaultCorpusPath, Source: SourceDefault, From: "built-in default"}
	}
	out.CorpusPath.Value = expandUserPath(out.CorpusPath.Value)
	if out.CorpusDB.Value != "" {
		out.CorpusDB.Value = expandUserPath(out.CorpusDB.Value)
	}

	return out, nil
}

// EffectiveCacheSize parses the cache-size setting, falling back when the
// value is unset or malformed.
func (r ResolvedConfig) EffectiveCacheSize(fallback int) int {
	v := strings.TrimSpace(r.CacheSize.Value)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// APIKeyForProvider returns the key for a "provider/model" string or bare
// provider name.
func (r ResolvedConfig) APIKeyForProvider(providerOrModel string) ResolvedValue {
	provider := providerOf(providerOrModel)
	if provider == "" {
		return ResolvedValue{}
	}
	if v, ok := r.LLMKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	if v, ok := r.LLMKeys["default"]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func providerOf(providerOrModel string) string {
	v := strings.ToLower(strings.TrimSpace(providerOrModel))
	if v == "" {
		return ""
	}
	if idx := strings.Index(v, "/"); idx > 0 {
		return v[:idx]
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
