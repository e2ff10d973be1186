// Package index builds and queries the project-wide picture the triage
// pipeline runs on: per-file lexical records, a global identifier
// reference map, forward and reverse import graphs, content
// fingerprints for change detection, and best-effort commit history.
// The maps are written once during Initialize and read-only afterward.
package index

import (
	"errors"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/lintmend/internal/progress"
	"github.com/panbanda/lintmend/internal/scanner"
	"github.com/panbanda/lintmend/pkg/analyzer/classify"
	"github.com/panbanda/lintmend/pkg/analyzer/history"
	"github.com/panbanda/lintmend/pkg/analyzer/impact"
	"github.com/panbanda/lintmend/pkg/config"
	"github.com/panbanda/lintmend/pkg/lexical"
	"github.com/panbanda/lintmend/pkg/models"
)

// ErrNotInitialized is returned by queries that ran before Initialize.
var ErrNotInitialized = errors.New("index not initialized")

// AuditSink receives audit entries. Appends are best-effort: the index
// reports failures to the caller but never lets them interrupt a run.
type AuditSink interface {
	AppendFix(rec models.FixRecord) error
	AppendDecision(rec models.DecisionRecord) error
}

// fileRecord is everything the index holds for one tracked file.
type fileRecord struct {
	id          uint32
	path        string // root-relative, slash-separated
	absPath     string
	language    lexical.Language
	fingerprint string
	identifiers []lexical.Occurrence
	imports     []lexical.ImportEdge
	exports     []lexical.ExportEntry
}

// identifierEntry is the global bucket for one identifier name.
type identifierEntry struct {
	files *roaring.Bitmap
	refs  []models.Reference
}

// Index is the project index. Construct with New, populate with
// Initialize, then query. Initialization is the single writer; queries
// assume the maps no longer change, matching the coordinator-driven
// pipeline this serves.
type Index struct {
	cfg  *config.Config
	root string

	mu          sync.RWMutex
	initialized bool

	absRoot     string
	files       map[string]*fileRecord
	byID        []*fileRecord
	identifiers map[string]*identifierEntry
	names       []string // sorted identifier names, the similarity pool
	forward     map[uint32]*roaring.Bitmap
	reverse     map[uint32]*roaring.Bitmap
	histories   map[string]*models.HistoryRecord
	stats       models.IndexStats

	scanner    *scanner.Scanner
	collector  *history.Collector
	impact     *impact.Analyzer
	classifier *classify.Classifier
	oracle     classify.Oracle
	audit      AuditSink
	tracker    *progress.Tracker
}

// Option is a functional option for configuring Index.
type Option func(*Index)

// WithOracle wires the AI oracle into the classifier.
func WithOracle(oracle classify.Oracle) Option {
	return func(idx *Index) {
		idx.oracle = oracle
	}
}

// WithAuditSink wires the audit trail for fixes and decisions.
func WithAuditSink(sink AuditSink) Option {
	return func(idx *Index) {
		idx.audit = sink
	}
}

// WithHistoryCollector replaces the default commit-history collector.
func WithHistoryCollector(collector *history.Collector) Option {
	return func(idx *Index) {
		idx.collector = collector
	}
}

// WithProgress reports per-file extraction progress to tracker.
func WithProgress(tracker *progress.Tracker) Option {
	return func(idx *Index) {
		idx.tracker = tracker
	}
}

// New creates an index rooted at root. The configuration decides
// tracked extensions, exclusions, parallelism, and analysis thresholds;
// nil falls back to defaults.
func New(root string, cfg *config.Config, opts ...Option) *Index {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	idx := &Index{
		cfg:  cfg,
		root: root,
	}
	for _, opt := range opts {
		opt(idx)
	}

	idx.scanner = scanner.NewScanner(cfg)
	if idx.collector == nil {
		idx.collector = history.NewCollector(
			history.WithCommitLimit(cfg.Analysis.HistoryCommits),
		)
	}

	idx.impact = impact.New(idx)

	classifierOpts := []classify.Option{
		classify.WithIntentionalPrefix(cfg.Analysis.IntentionalPrefix),
		classify.WithCrossFile(cfg.Analysis.CrossFile),
	}
	if idx.oracle != nil {
		classifierOpts = append(classifierOpts, classify.WithOracle(idx.oracle))
	}
	idx.classifier = classify.New(idx, classifierOpts...)

	return idx
}

// Root returns the directory the index was created for.
func (idx *Index) Root() string {
	return idx.root
}

// Initialized reports whether the index has been built.
func (idx *Index) Initialized() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized
}

// Stats returns the aggregate counts recorded at build time. Zero value
// before Initialize.
func (idx *Index) Stats() models.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.stats
}

// Files returns the tracked file paths, sorted, relative to the root.
func (idx *Index) Files() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	paths := make([]string, len(idx.byID))
	for i, rec := range idx.byID {
		paths[i] = rec.path
	}
	return paths
}

// ensureReady fails queries issued before initialization completed.
func (idx *Index) ensureReady() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if !idx.initialized {
		return ErrNotInitialized
	}
	return nil
}

// Compile-time checks: the index feeds both analyzers.
var (
	_ impact.Graph            = (*Index)(nil)
	_ classify.ProjectContext = (*Index)(nil)
)
