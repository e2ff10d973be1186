package index

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/lintmend/internal/cache"
	"github.com/panbanda/lintmend/pkg/analyzer/classify"
	"github.com/panbanda/lintmend/pkg/models"
	"github.com/panbanda/lintmend/pkg/textsim"
)

// ChangedFiles re-fingerprints every tracked file and returns the paths
// whose content no longer matches the fingerprint recorded at build
// time. Files that have disappeared or become unreadable count as
// changed. Results come out sorted because file IDs ascend in path
// order.
func (idx *Index) ChangedFiles() ([]string, error) {
	if err := idx.ensureReady(); err != nil {
		return nil, err
	}

	var changed []string
	for _, rec := range idx.byID {
		data, err := os.ReadFile(rec.absPath)
		if err != nil || cache.HashBytes(data) != rec.fingerprint {
			changed = append(changed, rec.path)
		}
	}
	return changed, nil
}

// AffectedFiles ranks the files impacted by a change to path.
func (idx *Index) AffectedFiles(path string) (*models.ImpactAnalysis, error) {
	if err := idx.ensureReady(); err != nil {
		return nil, err
	}
	return idx.impact.AffectedFiles(idx.relativeKey(path)), nil
}

// FindSimilarIdentifiers scores name against the global identifier set.
func (idx *Index) FindSimilarIdentifiers(name string) ([]models.SimilarIdentifier, error) {
	if err := idx.ensureReady(); err != nil {
		return nil, err
	}
	return idx.similarIdentifiers(name), nil
}

// AnalyzeVariable classifies an unused-identifier diagnostic. Verdicts
// are memoized per build by name, path, and diagnostic content. Each
// fresh verdict leaves a decision entry on the audit trail when a sink
// is wired.
func (idx *Index) AnalyzeVariable(ctx context.Context, name, path, diagnostic string, useAI bool) (*models.ClassificationResult, error) {
	if err := idx.ensureReady(); err != nil {
		return nil, err
	}

	result := idx.classifier.Analyze(ctx, classify.Request{
		VariableName: name,
		FilePath:     idx.relativeKey(path),
		Diagnostic:   diagnostic,
		UseAI:        useAI,
	})

	if idx.audit != nil {
		// Best-effort trail; a full disk must not fail the diagnosis.
		_ = idx.audit.AppendDecision(models.DecisionRecord{
			Timestamp:    time.Now(),
			Key:          name + "|" + result.FilePath + "|" + diagnostic,
			Variable:     name,
			FilePath:     result.FilePath,
			AnalysisType: result.AnalysisType,
			Confidence:   result.Confidence,
			FromOracle:   result.FromOracle,
		})
	}

	return result, nil
}

// RecordFix appends an applied-fix entry to the audit trail. A missing
// sink makes this a no-op.
func (idx *Index) RecordFix(rec models.FixRecord) error {
	if idx.audit == nil {
		return nil
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.FilePath = idx.relativeKey(rec.FilePath)
	return idx.audit.AppendFix(rec)
}

// Dependents returns the files importing path directly, sorted.
func (idx *Index) Dependents(path string) []string {
	rec := idx.files[idx.relativeKey(path)]
	if rec == nil {
		return nil
	}
	return idx.bitmapPaths(idx.reverse[rec.id])
}

// Dependencies returns the files path imports, sorted.
func (idx *Index) Dependencies(path string) []string {
	rec := idx.files[idx.relativeKey(path)]
	if rec == nil {
		return nil
	}
	return idx.bitmapPaths(idx.forward[rec.id])
}

// DeclaredIdentifiers returns the names declared in path in first-seen
// order, without duplicates.
func (idx *Index) DeclaredIdentifiers(path string) []string {
	rec := idx.files[idx.relativeKey(path)]
	if rec == nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, occ := range rec.identifiers {
		if !occ.IsDeclaration || seen[occ.Name] {
			continue
		}
		seen[occ.Name] = true
		names = append(names, occ.Name)
	}
	return names
}

// ReferencingFiles returns every file containing a reference to name,
// sorted.
func (idx *Index) ReferencingFiles(name string) []string {
	entry := idx.identifiers[name]
	if entry == nil {
		return nil
	}
	return idx.bitmapPaths(entry.files)
}

// VariableReferences returns every reference to name across the
// project.
func (idx *Index) VariableReferences(name string) []models.Reference {
	entry := idx.identifiers[name]
	if entry == nil {
		return nil
	}
	return entry.refs
}

// SimilarIdentifiers is the classifier-facing variant of
// FindSimilarIdentifiers.
func (idx *Index) SimilarIdentifiers(name string) []models.SimilarIdentifier {
	return idx.similarIdentifiers(name)
}

// FileHistory returns the commit signals for path, nil when none were
// collected.
func (idx *Index) FileHistory(path string) *models.HistoryRecord {
	return idx.histories[idx.relativeKey(path)]
}

// FileContent reads the current text of path from disk.
func (idx *Index) FileContent(path string) (string, error) {
	key := idx.relativeKey(path)
	location := filepath.Join(idx.absRoot, filepath.FromSlash(key))
	if rec := idx.files[key]; rec != nil {
		location = rec.absPath
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (idx *Index) similarIdentifiers(name string) []models.SimilarIdentifier {
	matches := textsim.FindSimilar(name, idx.names, idx.cfg.Analysis.SimilarityThreshold)
	if len(matches) == 0 {
		return nil
	}

	similar := make([]models.SimilarIdentifier, len(matches))
	for i, match := range matches {
		count := 0
		if entry := idx.identifiers[match.Name]; entry != nil {
			count = len(entry.refs)
		}
		similar[i] = models.SimilarIdentifier{
			Name:           match.Name,
			Score:          match.Score,
			ReferenceCount: count,
		}
	}
	return similar
}

// bitmapPaths expands a file-ID bitmap into paths. IDs ascend in path
// order, so the result is already sorted.
func (idx *Index) bitmapPaths(bm *roaring.Bitmap) []string {
	if bm == nil || bm.IsEmpty() {
		return nil
	}
	paths := make([]string, 0, int(bm.GetCardinality()))
	it := bm.Iterator()
	for it.HasNext() {
		paths = append(paths, idx.byID[it.Next()].path)
	}
	return paths
}
