// Package audit persists fix and decision histories as JSON arrays under the
// project's .lintmend directory. The index appends a decision for every
// classification and a fix for every applied remediation, so a reviewer can
// reconstruct what the assistant did and why.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/panbanda/lintmend/pkg/models"
)

const (
	fixesFile     = "fixes.json"
	decisionsFile = "decisions.json"
)

// Store appends to and loads the on-disk histories. Appends are serialized;
// the arrays stay small enough that rewrite-on-append is cheaper than a
// framed log format.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the history directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// AppendFix adds one applied-fix entry to the fix history.
func (s *Store) AppendFix(rec models.FixRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.appendRaw(fixesFile, raw)
}

// AppendDecision adds one classification entry to the decision history.
func (s *Store) AppendDecision(rec models.DecisionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.appendRaw(decisionsFile, raw)
}

// Fixes loads the fix history, oldest first. A missing file is an empty
// history, not an error.
func (s *Store) Fixes() ([]models.FixRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.FixRecord
	if err := s.load(fixesFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decisions loads the decision history, oldest first.
func (s *Store) Decisions() ([]models.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.DecisionRecord
	if err := s.load(decisionsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) appendRaw(name string, rec json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)

	var entries []json.RawMessage
	if data, err := os.ReadFile(path); err == nil {
		// A corrupt history resets rather than wedging every future
		// append behind the same parse error.
		_ = json.Unmarshal(data, &entries)
	}

	entries = append(entries, rec)

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}

func (s *Store) load(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}
