package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check index defaults
	if !cfg.Index.Parallel {
		t.Error("Index.Parallel should be true by default")
	}
	if cfg.Index.ParallelThreshold != 50 {
		t.Errorf("Index.ParallelThreshold = %d, want 50", cfg.Index.ParallelThreshold)
	}
	if cfg.Index.Workers != 0 {
		t.Errorf("Index.Workers = %d, want 0 (auto)", cfg.Index.Workers)
	}
	if len(cfg.Index.Extensions) == 0 {
		t.Error("Index.Extensions should have default values")
	}

	// Check analysis defaults
	if cfg.Analysis.SimilarityThreshold != 0.7 {
		t.Errorf("Analysis.SimilarityThreshold = %f, want 0.7", cfg.Analysis.SimilarityThreshold)
	}
	if cfg.Analysis.IntentionalPrefix != "_" {
		t.Errorf("Analysis.IntentionalPrefix = %q, want _", cfg.Analysis.IntentionalPrefix)
	}
	if cfg.Analysis.UseAI {
		t.Error("Analysis.UseAI should be false by default")
	}
	if cfg.Analysis.HistoryCommits != 10 {
		t.Errorf("Analysis.HistoryCommits = %d, want 10", cfg.Analysis.HistoryCommits)
	}

	// Check oracle defaults
	if cfg.Oracle.MaxRetries != 3 {
		t.Errorf("Oracle.MaxRetries = %d, want 3", cfg.Oracle.MaxRetries)
	}
	if cfg.Oracle.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("Oracle.APIKeyEnv = %q, want OPENAI_API_KEY", cfg.Oracle.APIKeyEnv)
	}

	// Check exclude defaults
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}

	// Check cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lintmend.toml")

	content := `
[index]
parallel = false
workers = 4

[analysis]
similarity_threshold = 0.8
use_ai = true

[exclude]
dirs = ["node_modules", "custom_exclude"]
patterns = ["*_generated.ts"]

[cache]
enabled = false

[output]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Index.Parallel {
		t.Error("Index.Parallel should be false")
	}
	if cfg.Index.Workers != 4 {
		t.Errorf("Index.Workers = %d, want 4", cfg.Index.Workers)
	}
	if cfg.Analysis.SimilarityThreshold != 0.8 {
		t.Errorf("Analysis.SimilarityThreshold = %f, want 0.8", cfg.Analysis.SimilarityThreshold)
	}
	if !cfg.Analysis.UseAI {
		t.Error("Analysis.UseAI should be true")
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lintmend.yaml")

	content := `
analysis:
  similarity_threshold: 0.75
  intentional_prefix: "ignore_"

oracle:
  model: gpt-4o
  max_retries: 5

output:
  format: markdown
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.SimilarityThreshold != 0.75 {
		t.Errorf("Analysis.SimilarityThreshold = %f, want 0.75", cfg.Analysis.SimilarityThreshold)
	}
	if cfg.Analysis.IntentionalPrefix != "ignore_" {
		t.Errorf("Analysis.IntentionalPrefix = %q, want ignore_", cfg.Analysis.IntentionalPrefix)
	}
	if cfg.Oracle.Model != "gpt-4o" {
		t.Errorf("Oracle.Model = %q, want gpt-4o", cfg.Oracle.Model)
	}
	if cfg.Oracle.MaxRetries != 5 {
		t.Errorf("Oracle.MaxRetries = %d, want 5", cfg.Oracle.MaxRetries)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lintmend.json")

	content := `{
  "index": {
    "parallel_threshold": 100
  },
  "linter": {
    "command": "npx",
    "args": ["eslint"]
  },
  "output": {
    "format": "json"
  }
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Index.ParallelThreshold != 100 {
		t.Errorf("Index.ParallelThreshold = %d, want 100", cfg.Index.ParallelThreshold)
	}
	if cfg.Linter.Command != "npx" {
		t.Errorf("Linter.Command = %q, want npx", cfg.Linter.Command)
	}
	if len(cfg.Linter.Args) != 1 || cfg.Linter.Args[0] != "eslint" {
		t.Errorf("Linter.Args = %v, want [eslint]", cfg.Linter.Args)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/lintmend.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lintmend.toml")

	// Invalid TOML
	content := `[analysis
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// In a directory without config files, should return defaults
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}

	if cfg.Analysis.SimilarityThreshold != 0.7 {
		t.Errorf("LoadOrDefault() returned non-default SimilarityThreshold: %f", cfg.Analysis.SimilarityThreshold)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	content := `
[analysis]
history_commits = 25
`
	if err := os.WriteFile(filepath.Join(tmpDir, "lintmend.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg.Analysis.HistoryCommits != 25 {
		t.Errorf("LoadOrDefault() should load from file, got HistoryCommits=%d", cfg.Analysis.HistoryCommits)
	}
}

func TestLoadOrDefaultFrom(t *testing.T) {
	// No chdir needed: the root is passed explicitly.
	tmpDir := t.TempDir()

	content := `
[analysis]
history_commits = 40
`
	if err := os.WriteFile(filepath.Join(tmpDir, "lintmend.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := LoadOrDefaultFrom(tmpDir)
	if cfg.Analysis.HistoryCommits != 40 {
		t.Errorf("LoadOrDefaultFrom() should load from root, got HistoryCommits=%d", cfg.Analysis.HistoryCommits)
	}
}

func TestLoadOrDefaultFrom_Missing(t *testing.T) {
	cfg := LoadOrDefaultFrom(t.TempDir())
	if cfg == nil {
		t.Fatal("LoadOrDefaultFrom() returned nil")
	}
	if cfg.Analysis.SimilarityThreshold != 0.7 {
		t.Errorf("LoadOrDefaultFrom() returned non-default SimilarityThreshold: %f", cfg.Analysis.SimilarityThreshold)
	}
}

func TestTracksExtension(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		ext  string
		want bool
	}{
		{".ts", true},
		{".tsx", true},
		{".js", true},
		{".jsx", true},
		{".TS", true},
		{".go", false},
		{".md", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := cfg.TracksExtension(tt.ext); got != tt.want {
			t.Errorf("TracksExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{"node_modules/pkg/index.js", true},
		{".git/objects/file", true},
		{"dist/bundle.js", true},
		{"coverage/lcov.info", true},

		// Excluded patterns
		{"app.min.js", true},
		{"types.d.ts", true},

		// Not excluded
		{"src/main.ts", false},
		{"src/components/App.tsx", false},
		{"app.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludeCustomPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*_generated.ts", "*.stories.tsx")
	cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, "custom_exclude")

	tests := []struct {
		path string
		want bool
	}{
		{"model_generated.ts", true},
		{"Button.stories.tsx", true},
		{"custom_exclude/file.ts", true},
		{"main.ts", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldExcludePathsWithSeparators(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("src", "node_modules", "pkg", "file.js"), true},
		{filepath.Join("node_modules", "file.js"), true},
		{filepath.Join("src", "main.ts"), false},
		{filepath.Join("pkg", "dist_utils.ts"), false}, // "dist" in name, not directory
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
