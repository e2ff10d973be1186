package history

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/panbanda/lintmend/pkg/models"
)

var (
	gitOnce  sync.Once
	gitFound bool
)

// gitAvailable reports whether the git binary is on PATH. Checked once per
// process.
func gitAvailable() bool {
	gitOnce.Do(func() {
		_, err := exec.LookPath("git")
		gitFound = err == nil
	})
	return gitFound
}

// resolveRepoRoot asks git for the worktree root containing path.
func resolveRepoRoot(ctx context.Context, path string) (string, error) {
	out, err := runGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", fmt.Errorf("empty repository root for %s", path)
	}
	return root, nil
}

// collectFileNative gathers a single file's history using the git binary.
// Either half may fail independently; a file with commits but no blame still
// gets a record.
func (c *Collector) collectFileNative(ctx context.Context, root, path string) *models.HistoryRecord {
	rel := relativeTo(root, path)

	commits := c.nativeLog(ctx, root, rel)
	counts := nativeBlame(ctx, root, rel)

	return c.buildRecord(commits, counts)
}

// nativeLog returns recent commits touching rel, newest first.
func (c *Collector) nativeLog(ctx context.Context, root, rel string) []models.CommitInfo {
	out, err := runGit(ctx, root, "log",
		fmt.Sprintf("--max-count=%d", c.commitLimit),
		"--format=%H|%aN|%at|%s",
		"--", rel)
	if err != nil {
		return nil
	}
	return parseLogOutput(out)
}

// parseLogOutput parses `git log --format=%H|%aN|%at|%s` output. Malformed
// lines are skipped.
func parseLogOutput(out []byte) []models.CommitInfo {
	var commits []models.CommitInfo
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		timestamp, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		commits = append(commits, models.CommitInfo{
			Hash:      parts[0],
			Author:    parts[1],
			Timestamp: timestamp,
			Message:   strings.TrimSpace(parts[3]),
		})
	}
	return commits
}

// nativeBlame returns per-author line counts for rel at HEAD.
func nativeBlame(ctx context.Context, root, rel string) map[string]int {
	out, err := runGit(ctx, root, "blame", "--line-porcelain", "HEAD", "--", rel)
	if err != nil {
		return map[string]int{}
	}
	return parseBlamePorcelain(out)
}

// parseBlamePorcelain counts "author " header lines from
// `git blame --line-porcelain` output. The trailing space in the prefix
// matters: it excludes author-mail, author-time, and author-tz headers.
func parseBlamePorcelain(out []byte) map[string]int {
	counts := make(map[string]int)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "author "); ok {
			counts[name]++
		}
	}
	return counts
}

// runGit executes a git subcommand rooted at dir.
func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}
