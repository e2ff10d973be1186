package models

// IndexStats summarizes a built project index.
type IndexStats struct {
	TotalFiles        int            `json:"total_files"`
	TotalIdentifiers  int            `json:"total_identifiers"`
	TotalImports      int            `json:"total_imports"`
	TotalExports      int            `json:"total_exports"`
	GraphEdges        int            `json:"graph_edges"`
	FilesByLanguage   map[string]int `json:"files_by_language,omitempty"`
	FilesWithHistory  int            `json:"files_with_history"`
	BuildDurationMS   int64          `json:"build_duration_ms"`
	ParallelWorkers   int            `json:"parallel_workers"`
	UsedParallelScan  bool           `json:"used_parallel_scan"`
	SkippedFiles      int            `json:"skipped_files"`
	ChangedSinceBuild int            `json:"changed_since_build,omitempty"`
}
