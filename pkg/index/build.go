package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/lintmend/internal/cache"
	"github.com/panbanda/lintmend/internal/fileproc"
	"github.com/panbanda/lintmend/pkg/analyzer/classify"
	"github.com/panbanda/lintmend/pkg/lexical"
	"github.com/panbanda/lintmend/pkg/models"
)

// Initialize scans the root and builds every map the queries read. A
// second call on an already-initialized index is a no-op success; use
// Rebuild to force a re-scan.
func (idx *Index) Initialize(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.initialized {
		return nil
	}
	return idx.build(ctx)
}

// Rebuild discards the current maps and scans again.
func (idx *Index) Rebuild(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.initialized = false
	return idx.build(ctx)
}

// extraction is one file's result from the fan-out, merged by value.
type extraction struct {
	path        string // as enumerated by the scanner
	fingerprint string
	language    lexical.Language
	result      lexical.Extraction
}

// build runs the pipeline: enumerate, fingerprint + extract, merge
// deterministically, resolve the import graph, collect history. Caller
// holds the write lock.
func (idx *Index) build(ctx context.Context) error {
	start := time.Now()

	absRoot, err := filepath.Abs(idx.root)
	if err != nil {
		return fmt.Errorf("resolving index root: %w", err)
	}

	scanned, err := idx.scanner.ScanDir(idx.root)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", idx.root, err)
	}
	sort.Strings(scanned)

	workers := fileproc.WorkerCount(idx.cfg.Index.Workers)
	parallel := idx.cfg.Index.Parallel && len(scanned) >= idx.cfg.Index.ParallelThreshold

	var extractions []extraction
	skipped := 0

	if parallel {
		results, procErrs := fileproc.ForEachFileWithContextN(ctx, scanned, workers, idx.extractFile, idx.tick)
		if procErrs != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Unreadable files are skipped, never fatal.
			skipped = len(procErrs.Errors)
		}
		extractions = results
	} else {
		for _, path := range scanned {
			if err := ctx.Err(); err != nil {
				return err
			}
			ex, err := idx.extractFile(path)
			idx.tick()
			if err != nil {
				skipped++
				continue
			}
			extractions = append(extractions, ex)
		}
	}

	// The parallel path completes in arbitrary order; sorting by path
	// makes both paths produce identical indexes for identical input.
	sort.Slice(extractions, func(i, j int) bool {
		return extractions[i].path < extractions[j].path
	})

	idx.resetMaps()
	idx.absRoot = absRoot

	for _, ex := range extractions {
		idx.addFile(ex)
	}
	idx.finishReferences()
	edges := idx.buildGraph()
	idx.collectHistories(ctx, scanned)

	idx.stats = models.IndexStats{
		TotalFiles:       len(idx.byID),
		TotalIdentifiers: len(idx.identifiers),
		GraphEdges:       edges,
		FilesByLanguage:  make(map[string]int),
		FilesWithHistory: len(idx.histories),
		BuildDurationMS:  time.Since(start).Milliseconds(),
		ParallelWorkers:  workers,
		UsedParallelScan: parallel,
		SkippedFiles:     skipped,
	}
	for _, rec := range idx.byID {
		idx.stats.TotalImports += len(rec.imports)
		idx.stats.TotalExports += len(rec.exports)
		idx.stats.FilesByLanguage[rec.language.String()]++
	}

	idx.initialized = true
	return nil
}

// extractFile reads, fingerprints, and lexes one file.
func (idx *Index) extractFile(path string) (extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extraction{}, err
	}
	return extraction{
		path:        path,
		fingerprint: cache.HashBytes(data),
		language:    lexical.DetectLanguage(path),
		result:      lexical.Extract(string(data)),
	}, nil
}

// resetMaps clears every derived structure before a build. The
// classifier is replaced too: its memoized verdicts describe the
// previous index.
func (idx *Index) resetMaps() {
	idx.files = make(map[string]*fileRecord)
	idx.byID = nil
	idx.identifiers = make(map[string]*identifierEntry)
	idx.names = nil
	idx.forward = make(map[uint32]*roaring.Bitmap)
	idx.reverse = make(map[uint32]*roaring.Bitmap)
	idx.histories = make(map[string]*models.HistoryRecord)
	idx.stats = models.IndexStats{}

	classifierOpts := []classify.Option{
		classify.WithIntentionalPrefix(idx.cfg.Analysis.IntentionalPrefix),
		classify.WithCrossFile(idx.cfg.Analysis.CrossFile),
	}
	if idx.oracle != nil {
		classifierOpts = append(classifierOpts, classify.WithOracle(idx.oracle))
	}
	idx.classifier = classify.New(idx, classifierOpts...)
}

// addFile registers one extraction under the next file ID. Extractions
// arrive sorted by path, so IDs ascend in path order and bitmap
// iteration yields paths already sorted.
func (idx *Index) addFile(ex extraction) {
	rel := idx.relativeKey(ex.path)
	if _, exists := idx.files[rel]; exists {
		return
	}

	rec := &fileRecord{
		id:          uint32(len(idx.byID)),
		path:        rel,
		absPath:     filepath.Join(idx.absRoot, filepath.FromSlash(rel)),
		language:    ex.language,
		fingerprint: ex.fingerprint,
		identifiers: ex.result.Identifiers,
		imports:     ex.result.Imports,
		exports:     ex.result.Exports,
	}
	idx.files[rel] = rec
	idx.byID = append(idx.byID, rec)

	for _, occ := range rec.identifiers {
		entry, ok := idx.identifiers[occ.Name]
		if !ok {
			entry = &identifierEntry{files: roaring.New()}
			idx.identifiers[occ.Name] = entry
		}
		entry.files.Add(rec.id)
		entry.refs = append(entry.refs, models.Reference{
			FilePath:      rec.path,
			Line:          occ.Line,
			IsDeclaration: occ.IsDeclaration,
			IsUsage:       !occ.IsDeclaration,
		})
	}
}

// finishReferences freezes the similarity pool.
func (idx *Index) finishReferences() {
	idx.names = make([]string, 0, len(idx.identifiers))
	for name := range idx.identifiers {
		idx.names = append(idx.names, name)
	}
	sort.Strings(idx.names)
}

// collectHistories attaches commit signals. History is strictly
// best-effort: no repository, no binary, or a collection failure all
// leave files without records and the build proceeds.
func (idx *Index) collectHistories(ctx context.Context, scanned []string) {
	if idx.cfg.Analysis.HistoryCommits <= 0 || len(scanned) == 0 {
		return
	}

	records, err := idx.collector.CollectRepo(ctx, idx.root, scanned)
	if err != nil {
		return
	}
	for path, record := range records {
		idx.histories[idx.relativeKey(path)] = record
	}
}

// relativeKey normalizes any path form the caller might use into the
// root-relative slash-separated form the maps are keyed by.
func (idx *Index) relativeKey(path string) string {
	base := idx.root
	if filepath.IsAbs(path) {
		base = idx.absRoot
	}
	if rel, err := filepath.Rel(base, path); err == nil && rel != ".." && !isParentPath(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func isParentPath(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func (idx *Index) tick() {
	if idx.tracker != nil {
		idx.tracker.Tick()
	}
}
