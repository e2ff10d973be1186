package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for lintmend.
type Config struct {
	// Index settings control project scanning and extraction
	Index IndexConfig `koanf:"index" toml:"index"`

	// Analysis settings control classification heuristics
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Linter subprocess settings
	Linter LinterConfig `koanf:"linter" toml:"linter"`

	// Oracle settings for AI-assisted classification
	Oracle OracleConfig `koanf:"oracle" toml:"oracle"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Audit history persistence
	Audit AuditConfig `koanf:"audit" toml:"audit"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// IndexConfig controls how the project index is built.
type IndexConfig struct {
	// Extensions is the tracked-extension set.
	Extensions []string `koanf:"extensions" toml:"extensions"`

	// Parallel enables the extraction fan-out for large projects.
	Parallel bool `koanf:"parallel" toml:"parallel"`

	// ParallelThreshold is the file count above which the fan-out
	// engages.
	ParallelThreshold int `koanf:"parallel_threshold" toml:"parallel_threshold"`

	// Workers overrides the computed worker count. 0 means auto:
	// half the cores on CI, three quarters locally.
	Workers int `koanf:"workers" toml:"workers"`

	// Aliases maps import-path prefixes to directories, mirroring
	// tsconfig path aliases, e.g. "@/" -> "src/".
	Aliases map[string]string `koanf:"aliases" toml:"aliases"`
}

// AnalysisConfig controls the variable classifier.
type AnalysisConfig struct {
	// SimilarityThreshold is the minimum score FindSimilar keeps.
	SimilarityThreshold float64 `koanf:"similarity_threshold" toml:"similarity_threshold"`

	// IntentionalPrefix marks identifiers deliberately left unused.
	IntentionalPrefix string `koanf:"intentional_prefix" toml:"intentional_prefix"`

	// CrossFile includes dependency and dependent file contents in
	// oracle prompts.
	CrossFile bool `koanf:"cross_file" toml:"cross_file"`

	// UseAI lets the oracle override confident heuristic results.
	UseAI bool `koanf:"use_ai" toml:"use_ai"`

	// HistoryCommits is how many recent commits feed the history
	// signals per file.
	HistoryCommits int `koanf:"history_commits" toml:"history_commits"`
}

// LinterConfig describes the external linter invocation.
type LinterConfig struct {
	Command string   `koanf:"command" toml:"command"`
	Args    []string `koanf:"args" toml:"args"`
}

// OracleConfig describes the AI oracle endpoint and retry policy.
type OracleConfig struct {
	Model       string  `koanf:"model" toml:"model"`
	BaseURL     string  `koanf:"base_url" toml:"base_url"`
	APIKeyEnv   string  `koanf:"api_key_env" toml:"api_key_env"`
	MaxRetries  int     `koanf:"max_retries" toml:"max_retries"`
	Temperature float64 `koanf:"temperature" toml:"temperature"`
	MaxTokens   int     `koanf:"max_tokens" toml:"max_tokens"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls oracle reply caching.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// AuditConfig controls where fix and decision histories land.
type AuditConfig struct {
	Dir string `koanf:"dir" toml:"dir"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Extensions:        []string{".ts", ".tsx", ".js", ".jsx"},
			Parallel:          true,
			ParallelThreshold: 50,
			Workers:           0,
		},
		Analysis: AnalysisConfig{
			SimilarityThreshold: 0.7,
			IntentionalPrefix:   "_",
			CrossFile:           true,
			UseAI:               false,
			HistoryCommits:      10,
		},
		Linter: LinterConfig{
			Command: "eslint",
		},
		Oracle: OracleConfig{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxRetries:  3,
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.d.ts",
				"*.bundle.js",
			},
			Dirs: []string{
				"node_modules",
				".git",
				"dist",
				"build",
				"coverage",
				".next",
				"out",
				".lintmend",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".lintmend/cache",
			TTL:     24,
		},
		Audit: AuditConfig{
			Dir: ".lintmend/history",
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations under the
// current directory or returns defaults.
func LoadOrDefault() *Config {
	return LoadOrDefaultFrom(".")
}

// LoadOrDefaultFrom tries to load config from standard locations under
// root or returns defaults.
func LoadOrDefaultFrom(root string) *Config {
	configNames := []string{
		"lintmend.toml",
		"lintmend.yaml",
		"lintmend.yml",
		"lintmend.json",
		".lintmend.toml",
		".lintmend.yaml",
		".lintmend.yml",
		".lintmend.json",
	}

	searchDirs := []string{".", ".lintmend"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(root, dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ConfigFileName is the canonical config file written by init.
const ConfigFileName = "lintmend.toml"

// TracksExtension reports whether ext is in the tracked-extension set.
func (c *Config) TracksExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, tracked := range c.Index.Extensions {
		if ext == tracked {
			return true
		}
	}
	return false
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
