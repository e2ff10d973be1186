// Package history collects per-file git history and derives the refactoring
// signals used during classification: how often a file changes and how likely
// its recent commits were refactoring work.
package history

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/panbanda/lintmend/internal/fileproc"
	"github.com/panbanda/lintmend/internal/progress"
	"github.com/panbanda/lintmend/internal/vcs"
	"github.com/panbanda/lintmend/pkg/models"
)

const (
	// DefaultCommitLimit is the recent-commit window examined per file.
	DefaultCommitLimit = 10

	// defaultMaxWorkers bounds concurrent git operations. Blame is
	// expensive, so this stays well below the CPU-derived scan width.
	defaultMaxWorkers = 8

	// DefaultGitTimeout caps a full history collection run.
	DefaultGitTimeout = 5 * time.Minute

	keywordWeight = 0.7
	recencyWeight = 0.3
	recencyDecay  = 0.1
)

// refactorKeywords flag commit subjects that suggest restructuring work.
var refactorKeywords = []string{
	"refactor", "rename", "restructure", "rewrite", "clean", "improve",
}

// Collector gathers file histories from a git repository.
type Collector struct {
	commitLimit int
	maxWorkers  int
	useNative   bool
	opener      vcs.Opener
	spinner     *progress.Tracker
	now         func() time.Time
}

// Option is a functional option for configuring a Collector.
type Option func(*Collector)

// WithCommitLimit sets how many recent commits are examined per file.
func WithCommitLimit(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.commitLimit = n
		}
	}
}

// WithMaxWorkers bounds concurrent per-file git operations.
func WithMaxWorkers(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithNativeGit controls whether the git binary is preferred over go-git.
// Native git is considerably faster for blame on large repositories.
func WithNativeGit(enabled bool) Option {
	return func(c *Collector) {
		c.useNative = enabled
	}
}

// WithOpener sets the VCS opener (useful for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(c *Collector) {
		c.opener = opener
	}
}

// WithSpinner sets a progress tracker ticked once per file.
func WithSpinner(spinner *progress.Tracker) Option {
	return func(c *Collector) {
		c.spinner = spinner
	}
}

// withClock fixes the collector's clock for deterministic scoring in tests.
func withClock(now func() time.Time) Option {
	return func(c *Collector) {
		c.now = now
	}
}

// NewCollector creates a history collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		commitLimit: DefaultCommitLimit,
		maxWorkers:  defaultMaxWorkers,
		useNative:   true,
		opener:      vcs.NewGitOpener(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectRepo gathers history for files under repoPath. Collection is best
// effort: a missing repository or git binary yields an empty map, and files
// without history are simply absent from the result.
func (c *Collector) CollectRepo(ctx context.Context, repoPath string, files []string) (map[string]*models.HistoryRecord, error) {
	if c.useNative && gitAvailable() {
		return c.collectRepoNative(ctx, repoPath, files)
	}
	return c.collectRepoGoGit(ctx, repoPath, files)
}

// CollectFile gathers history for a single file.
func (c *Collector) CollectFile(ctx context.Context, repoPath, file string) (*models.HistoryRecord, error) {
	records, err := c.CollectRepo(ctx, repoPath, []string{file})
	if err != nil {
		return nil, err
	}
	if record, ok := records[file]; ok {
		return record, nil
	}
	return &models.HistoryRecord{}, nil
}

// fileHistory pairs a file path with its collected record for the parallel
// fan-out.
type fileHistory struct {
	path   string
	record *models.HistoryRecord
}

func (c *Collector) collectRepoNative(ctx context.Context, repoPath string, files []string) (map[string]*models.HistoryRecord, error) {
	root, err := resolveRepoRoot(ctx, repoPath)
	if err != nil {
		// Not a repository: no history to collect.
		return map[string]*models.HistoryRecord{}, nil
	}

	results := fileproc.ForEachFileN(files, c.maxWorkers, func(path string) (fileHistory, error) {
		record := c.collectFileNative(ctx, root, path)
		return fileHistory{path: path, record: record}, nil
	}, c.tick, nil)

	return collate(results), nil
}

func (c *Collector) collectRepoGoGit(ctx context.Context, repoPath string, files []string) (map[string]*models.HistoryRecord, error) {
	probe, err := c.opener.PlainOpenWithDetect(repoPath)
	if err != nil {
		return map[string]*models.HistoryRecord{}, nil
	}
	root := probe.RepoPath()
	if root == "" {
		root = repoPath
	}

	results := fileproc.ForEachFileWithResource(files, c.maxWorkers,
		func() (vcs.Repository, error) {
			return c.opener.PlainOpenWithDetect(repoPath)
		},
		nil,
		func(repo vcs.Repository, path string) (fileHistory, error) {
			if err := ctx.Err(); err != nil {
				return fileHistory{}, err
			}
			record := c.collectFileGoGit(repo, root, path)
			return fileHistory{path: path, record: record}, nil
		},
		c.tick,
	)

	return collate(results), nil
}

func (c *Collector) collectFileGoGit(repo vcs.Repository, root, path string) *models.HistoryRecord {
	rel := relativeTo(root, path)

	var commits []models.CommitInfo
	iter, err := repo.Log(&vcs.LogOptions{FileName: &rel})
	if err == nil {
		defer iter.Close()
		_ = iter.ForEach(func(commit vcs.Commit) error {
			commits = append(commits, models.CommitInfo{
				Hash:      commit.Hash().String(),
				Author:    commit.Author().Name,
				Timestamp: commit.Author().When.Unix(),
				Message:   subjectLine(commit.Message()),
			})
			if len(commits) >= c.commitLimit {
				return vcs.ErrStopIteration
			}
			return nil
		})
	}

	counts := make(map[string]int)
	if blame, err := repo.BlameAtHead(rel); err == nil {
		for _, line := range blame.Lines {
			if line.AuthorName != "" {
				counts[line.AuthorName]++
			}
		}
	}

	return c.buildRecord(commits, counts)
}

// buildRecord assembles a record and scores it.
func (c *Collector) buildRecord(commits []models.CommitInfo, counts map[string]int) *models.HistoryRecord {
	record := &models.HistoryRecord{
		Commits:          commits,
		AuthorLineCounts: counts,
	}
	record.RefactorProbability = RefactorProbability(commits, c.now())
	record.ChangeFrequency = ChangeFrequency(commits)
	return record
}

func (c *Collector) tick() {
	if c.spinner != nil {
		c.spinner.Tick()
	}
}

func collate(results []fileHistory) map[string]*models.HistoryRecord {
	records := make(map[string]*models.HistoryRecord, len(results))
	for _, r := range results {
		if r.record != nil && r.record.HasHistory() {
			records[r.path] = r.record
		}
	}
	return records
}

// relativeTo converts path to be relative to root for git commands.
func relativeTo(root, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	// Resolve symlinks so paths under symlinked temp dirs still land
	// inside the repository root git reports.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// subjectLine returns the first line of a commit message.
func subjectLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}

// RefactorProbability estimates how likely the recent commits represent
// refactoring work. It blends the fraction of commit subjects mentioning a
// refactoring keyword (weight 0.7) with an exponential recency signal
// (weight 0.3) that decays with commit age in days.
func RefactorProbability(commits []models.CommitInfo, now time.Time) float64 {
	if len(commits) == 0 {
		return 0
	}

	var keywordHits int
	var recencySum float64
	for _, commit := range commits {
		subject := strings.ToLower(commit.Message)
		for _, keyword := range refactorKeywords {
			if strings.Contains(subject, keyword) {
				keywordHits++
				break
			}
		}

		ageDays := now.Sub(time.Unix(commit.Timestamp, 0)).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		recencySum += math.Exp(-recencyDecay * ageDays)
	}

	n := float64(len(commits))
	return keywordWeight*(float64(keywordHits)/n) + recencyWeight*(recencySum/n)
}

// ChangeFrequency scores how often a file changes on a 0..1 scale. Files with
// fewer than two commits score 0; otherwise the score grows as the mean gap
// between consecutive commits shrinks, saturating at 1 for files touched
// every few days.
func ChangeFrequency(commits []models.CommitInfo) float64 {
	if len(commits) < 2 {
		return 0
	}

	var totalGapDays float64
	for i := 0; i < len(commits)-1; i++ {
		gap := float64(commits[i].Timestamp-commits[i+1].Timestamp) / 86400
		totalGapDays += math.Abs(gap)
	}
	meanGap := totalGapDays / float64(len(commits)-1)

	frequency := 3.0 / (meanGap + 0.1)
	if frequency > 1 {
		frequency = 1
	}
	return frequency
}
