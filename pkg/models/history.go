package models

// CommitInfo is one commit touching a file, newest first in a record.
type CommitInfo struct {
	Hash      string `json:"hash"`
	Author    string `json:"author"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// HistoryRecord carries the version-control signals for one file that
// feed classification: who touched it, how often, and how strongly the
// recent commit stream smells of refactoring.
type HistoryRecord struct {
	Commits          []CommitInfo   `json:"commits"`
	AuthorLineCounts map[string]int `json:"author_line_counts,omitempty"`

	// RefactorProbability blends refactor-keyword frequency in commit
	// subjects with exponentially decaying recency. 0 when no history.
	RefactorProbability float64 `json:"refactor_probability"`

	// ChangeFrequency saturates toward 1 as the mean gap between
	// commits drops below about three days. 0 with fewer than two
	// commits.
	ChangeFrequency float64 `json:"change_frequency"`
}

// HasHistory reports whether any commits were collected.
func (h HistoryRecord) HasHistory() bool {
	return len(h.Commits) > 0
}
