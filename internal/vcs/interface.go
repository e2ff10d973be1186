// Package vcs abstracts git repository access so history collection can be
// tested without shelling out to a real repository.
package vcs

import (
	"errors"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrStopIteration signals early termination of a commit walk. ForEach
// implementations treat it as a clean stop rather than a failure.
var ErrStopIteration = errors.New("stop iteration")

// Opener opens git repositories from the filesystem.
type Opener interface {
	// PlainOpen opens a repository rooted exactly at path.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a repository containing path, walking
	// parent directories until a .git directory is found.
	PlainOpenWithDetect(path string) (Repository, error)
}

// Repository provides the read operations history collection needs: commit
// log walks and line-level blame.
type Repository interface {
	// Head returns the reference the repository HEAD points at.
	Head() (Reference, error)
	// Log returns an iterator over commits reachable from HEAD, newest
	// first. A nil options value walks the full history.
	Log(opts *LogOptions) (CommitIterator, error)
	// BlameAtHead computes line ownership for the file at path relative
	// to the repository root, as of the current HEAD commit.
	BlameAtHead(path string) (*BlameResult, error)
	// RepoPath returns the worktree root, or "" for bare repositories.
	RepoPath() string
}

// Reference is a named pointer to a commit.
type Reference interface {
	Hash() plumbing.Hash
}

// LogOptions filters a commit walk.
type LogOptions struct {
	// FileName restricts the walk to commits touching this path,
	// relative to the repository root.
	FileName *string
	// Since excludes commits older than this time.
	Since *time.Time
}

// CommitIterator walks commits. Callers must Close it when done.
type CommitIterator interface {
	// ForEach invokes fn for each commit. Returning ErrStopIteration
	// from fn stops the walk without error.
	ForEach(fn func(Commit) error) error
	Close()
}

// Commit exposes the commit fields history collection reads.
type Commit interface {
	Hash() plumbing.Hash
	Author() object.Signature
	Message() string
}

// BlameResult holds per-line ownership for a single file.
type BlameResult struct {
	Lines []BlameLine
}

// BlameLine attributes one line of a file to its last author.
type BlameLine struct {
	// AuthorName is the name of the last author that modified the line.
	AuthorName string
	Text       string
}
