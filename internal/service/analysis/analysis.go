// Package analysis orchestrates the project index and the triage
// operations the CLI commands and the MCP server share. The service
// owns one index per root, builds it lazily, and wires the audit trail
// and the optional AI oracle into it.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/panbanda/lintmend/internal/audit"
	"github.com/panbanda/lintmend/internal/cache"
	"github.com/panbanda/lintmend/internal/oracle"
	"github.com/panbanda/lintmend/internal/progress"
	"github.com/panbanda/lintmend/pkg/analyzer/classify"
	"github.com/panbanda/lintmend/pkg/analyzer/depgraph"
	"github.com/panbanda/lintmend/pkg/config"
	"github.com/panbanda/lintmend/pkg/index"
	"github.com/panbanda/lintmend/pkg/models"
)

// Service orchestrates triage operations over a single project root.
type Service struct {
	config  *config.Config
	root    string
	useAI   bool
	oracle  classify.Oracle
	sink    index.AuditSink
	tracker *progress.Tracker

	mu  sync.Mutex
	idx *index.Index
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithRoot sets the project root directory.
func WithRoot(root string) Option {
	return func(s *Service) {
		s.root = root
	}
}

// WithAI enables AI-assisted classification. The oracle client is
// constructed during New, so a missing API key fails fast instead of
// surfacing mid-run.
func WithAI(enabled bool) Option {
	return func(s *Service) {
		s.useAI = enabled
	}
}

// WithOracle sets the oracle (for testing).
func WithOracle(o classify.Oracle) Option {
	return func(s *Service) {
		s.oracle = o
	}
}

// WithAuditSink sets the audit sink (for testing).
func WithAuditSink(sink index.AuditSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithProgress reports index-build progress to tracker.
func WithProgress(tracker *progress.Tracker) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// New creates a new analysis service.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		root: ".",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefaultFrom(s.root)
	}

	if s.sink == nil {
		store, err := audit.NewStore(filepath.Join(s.root, s.config.Audit.Dir))
		if err != nil {
			return nil, fmt.Errorf("opening audit store: %w", err)
		}
		s.sink = store
	}

	if s.useAI && s.oracle == nil {
		replies, err := cache.New(
			filepath.Join(s.root, s.config.Cache.Dir),
			s.config.Cache.TTL,
			s.config.Cache.Enabled,
		)
		if err != nil {
			return nil, fmt.Errorf("opening reply cache: %w", err)
		}
		client, err := oracle.New(s.config, oracle.WithReplyCache(replies))
		if err != nil {
			return nil, err
		}
		s.oracle = client
	}

	return s, nil
}

// Root returns the project root the service analyzes.
func (s *Service) Root() string {
	return s.root
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// ensure builds the index on first use. Concurrent callers (the MCP
// server runs tool calls in parallel) serialize on the construction.
func (s *Service) ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil && s.idx.Initialized() {
		return nil
	}
	if s.idx == nil {
		indexOpts := []index.Option{index.WithAuditSink(s.sink)}
		if s.oracle != nil {
			indexOpts = append(indexOpts, index.WithOracle(s.oracle))
		}
		if s.tracker != nil {
			indexOpts = append(indexOpts, index.WithProgress(s.tracker))
		}
		s.idx = index.New(s.root, s.config, indexOpts...)
	}
	return s.idx.Initialize(ctx)
}

// BuildIndex builds the project index and returns its statistics.
func (s *Service) BuildIndex(ctx context.Context) (models.IndexStats, error) {
	if err := s.ensure(ctx); err != nil {
		return models.IndexStats{}, err
	}
	return s.idx.Stats(), nil
}

// Rebuild rescans the project from scratch and returns fresh
// statistics.
func (s *Service) Rebuild(ctx context.Context) (models.IndexStats, error) {
	if err := s.ensure(ctx); err != nil {
		return models.IndexStats{}, err
	}
	if err := s.idx.Rebuild(ctx); err != nil {
		return models.IndexStats{}, err
	}
	return s.idx.Stats(), nil
}

// Stats returns index statistics, building the index if needed.
func (s *Service) Stats(ctx context.Context) (models.IndexStats, error) {
	return s.BuildIndex(ctx)
}

// ClassifyVariable classifies one unused variable. useAI consults the
// oracle when one was wired at construction; without one the
// heuristics answer alone.
func (s *Service) ClassifyVariable(ctx context.Context, name, file, diagnostic string, useAI bool) (*models.ClassificationResult, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.idx.AnalyzeVariable(ctx, name, file, diagnostic, useAI)
}

// AnalyzeImpact ranks the files affected by changing the given file.
func (s *Service) AnalyzeImpact(ctx context.Context, file string) (*models.ImpactAnalysis, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.idx.AffectedFiles(file)
}

// FindSimilar returns identifiers similar to name elsewhere in the
// project.
func (s *Service) FindSimilar(ctx context.Context, name string) ([]models.SimilarIdentifier, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.idx.FindSimilarIdentifiers(name)
}

// FileHistory returns commit-history signals for a file, or nil when
// the project has no usable repository.
func (s *Service) FileHistory(ctx context.Context, file string) (*models.HistoryRecord, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.idx.FileHistory(file), nil
}

// ChangedFiles lists indexed files whose content changed since the
// index was built.
func (s *Service) ChangedFiles(ctx context.Context) ([]string, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.idx.ChangedFiles()
}

// GraphOptions configures dependency graph analysis.
type GraphOptions struct {
	IncludeMetrics bool
}

// AnalyzeGraph projects the import graph, with PageRank and cycle
// metrics when requested.
func (s *Service) AnalyzeGraph(ctx context.Context, opts GraphOptions) (*models.DependencyGraph, *models.GraphMetrics, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, nil, err
	}

	graph, err := s.idx.Graph()
	if err != nil {
		return nil, nil, err
	}

	var metrics *models.GraphMetrics
	if opts.IncludeMetrics {
		metrics = depgraph.New().CalculateMetrics(graph)
	}

	return graph, metrics, nil
}

// RecordFix appends a fix record to the audit trail.
func (s *Service) RecordFix(ctx context.Context, rec models.FixRecord) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.idx.RecordFix(rec)
}
