// Package classify decides what an unused-identifier diagnostic really
// means: a typo of a nearby name, debris from a refactor, a deliberately
// kept binding, or genuinely dead code. The decision is a fixed-order
// heuristic cascade over reference counts, name similarity, and commit
// history, optionally overridden by an AI oracle when the oracle is
// confident enough.
package classify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/lintmend/pkg/models"
)

// DefaultIntentionalPrefix marks identifiers deliberately left unused.
const DefaultIntentionalPrefix = "_"

// OracleOverrideFloor is the confidence an oracle reply must exceed
// before it replaces the heuristic verdict.
const OracleOverrideFloor = 0.7

// Cascade thresholds and confidences.
const (
	soleReferenceConfidence = 0.8
	typoSimilarityFloor     = 0.8
	refactorFloor           = 0.6
	elevatedRefactorFloor   = 0.5
	intentionalConfidence   = 0.75
	baseUnusedConfidence    = 0.6
	unusedBonus             = 0.1
)

// ProjectContext supplies the project facts the cascade reads. The
// project index satisfies this; tests substitute fakes.
type ProjectContext interface {
	// VariableReferences returns every reference to name across the
	// project, declarations included.
	VariableReferences(name string) []models.Reference

	// SimilarIdentifiers returns near-matches for name, best first.
	SimilarIdentifiers(name string) []models.SimilarIdentifier

	// FileHistory returns the commit signals for path, or nil when no
	// history was collected.
	FileHistory(path string) *models.HistoryRecord

	// FileContent returns the current text of path.
	FileContent(path string) (string, error)

	// Dependencies returns the files path imports.
	Dependencies(path string) []string

	// Dependents returns the files importing path.
	Dependents(path string) []string
}

// OracleRequest is the material handed to the AI oracle for one
// diagnostic.
type OracleRequest struct {
	VariableName string
	FilePath     string
	Diagnostic   string
	FileContent  string

	// Dependencies and Dependents carry related file contents keyed by
	// path when cross-file analysis is enabled, nil otherwise.
	Dependencies map[string]string
	Dependents   map[string]string
}

// Oracle produces an independent classification from source context.
// Implementations must return malformed upstream replies as a
// low-confidence result, not an error; errors are reserved for
// transport failures after retries are exhausted.
type Oracle interface {
	AnalyzeVariable(ctx context.Context, req OracleRequest) (*models.ClassificationResult, error)
}

// Request identifies one diagnostic to classify.
type Request struct {
	VariableName string
	FilePath     string
	Diagnostic   string
	UseAI        bool
}

// Classifier runs the cascade. Results are memoized for the lifetime of
// the classifier, keyed by variable name, file path, and diagnostic
// content.
type Classifier struct {
	project   ProjectContext
	oracle    Oracle
	prefix    string
	crossFile bool

	mu   sync.Mutex
	memo map[uint64]*models.ClassificationResult
}

// Option is a functional option for configuring Classifier.
type Option func(*Classifier)

// WithOracle enables AI-assisted classification.
func WithOracle(oracle Oracle) Option {
	return func(c *Classifier) {
		c.oracle = oracle
	}
}

// WithIntentionalPrefix overrides the prefix that marks deliberately
// unused identifiers.
func WithIntentionalPrefix(prefix string) Option {
	return func(c *Classifier) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCrossFile includes dependency and dependent file contents in
// oracle requests.
func WithCrossFile(enabled bool) Option {
	return func(c *Classifier) {
		c.crossFile = enabled
	}
}

// New creates a classifier over project.
func New(project ProjectContext, opts ...Option) *Classifier {
	c := &Classifier{
		project: project,
		prefix:  DefaultIntentionalPrefix,
		memo:    make(map[uint64]*models.ClassificationResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze classifies one unused-identifier diagnostic. The heuristic
// path never fails; oracle failures degrade to the heuristic verdict
// with the failure noted in the reasoning steps.
func (c *Classifier) Analyze(ctx context.Context, req Request) *models.ClassificationResult {
	key := memoKey(req)

	c.mu.Lock()
	if cached, ok := c.memo[key]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	refs := c.project.VariableReferences(req.VariableName)
	similar := c.project.SimilarIdentifiers(req.VariableName)

	refactorProb := 0.0
	if history := c.project.FileHistory(req.FilePath); history != nil {
		refactorProb = history.RefactorProbability
	}

	result := c.heuristic(req, refs, similar, refactorProb)

	if req.UseAI && c.oracle != nil {
		result = c.consultOracle(ctx, req, result)
	}

	rankActions(result)

	c.mu.Lock()
	c.memo[key] = result
	c.mu.Unlock()

	return result
}

// heuristic runs the cascade. Rule order is fixed; the first matching
// rule wins.
func (c *Classifier) heuristic(req Request, refs []models.Reference, similar []models.SimilarIdentifier, refactorProb float64) *models.ClassificationResult {
	result := &models.ClassificationResult{
		VariableName: req.VariableName,
		FilePath:     req.FilePath,
	}

	total := len(refs)
	usages := 0
	for _, ref := range refs {
		if ref.IsUsage {
			usages++
		}
	}
	result.AddReasoning(fmt.Sprintf("%s has %d reference(s) across the project, %d of them usages", req.VariableName, total, usages))

	switch {
	case total <= 1:
		result.AnalysisType = models.AnalysisGenuineUnused
		result.Confidence = soleReferenceConfidence
		result.Explanation = "declared but never referenced anywhere else in the project"
		result.RecommendedAction = models.RecommendedAction{Action: models.ActionRemove}
		result.PossibleActions = []models.PossibleAction{
			{Action: models.ActionRemove, Description: "remove the unused declaration", Confidence: soleReferenceConfidence},
			{Action: models.ActionPrefix, Description: c.prefixDescription(), Confidence: 0.5},
			{Action: models.ActionKeep, Description: "keep as is", Confidence: 0.2},
		}

	case len(similar) > 0 && similar[0].Score > typoSimilarityFloor:
		match := similar[0]
		result.AnalysisType = models.AnalysisTypo
		result.Confidence = match.Score
		result.Explanation = fmt.Sprintf("likely a typo of %s (similarity %.2f)", match.Name, match.Score)
		result.AddReasoning(fmt.Sprintf("closest name %s is referenced %d time(s)", match.Name, match.ReferenceCount))
		if refactorProb > elevatedRefactorFloor {
			result.AddReasoning("recent refactor-flavored commits raise the typo likelihood")
		}
		result.RecommendedAction = models.RecommendedAction{Action: models.ActionRename, Details: match.Name}
		result.PossibleActions = []models.PossibleAction{
			{Action: models.ActionRename, Description: fmt.Sprintf("rename to %s", match.Name), Confidence: match.Score},
			{Action: models.ActionPrefix, Description: c.prefixDescription(), Confidence: 0.4},
			{Action: models.ActionRemove, Description: "remove if truly unused", Confidence: 0.3},
		}

	case refactorProb > refactorFloor:
		result.AnalysisType = models.AnalysisRefactorLeftover
		result.Confidence = refactorProb
		result.Explanation = fmt.Sprintf("commit history suggests a refactor left this behind (probability %.2f)", refactorProb)
		result.AddReasoning(fmt.Sprintf("refactor probability %.2f from recent commit subjects and recency", refactorProb))
		result.RecommendedAction = models.RecommendedAction{Action: models.ActionRemove}
		result.PossibleActions = []models.PossibleAction{
			{Action: models.ActionRemove, Description: "remove code left behind by the refactor", Confidence: refactorProb},
			{Action: models.ActionReview, Description: "review against the refactored call sites", Confidence: 0.5},
			{Action: models.ActionPrefix, Description: c.prefixDescription(), Confidence: 0.4},
		}

	case strings.HasPrefix(req.VariableName, c.prefix):
		result.AnalysisType = models.AnalysisIntentionalUnused
		result.Confidence = intentionalConfidence
		result.Explanation = fmt.Sprintf("prefix %q marks this as intentionally unused", c.prefix)
		result.RecommendedAction = models.RecommendedAction{Action: models.ActionKeep}
		result.PossibleActions = []models.PossibleAction{
			{Action: models.ActionKeep, Description: "keep the intentional placeholder", Confidence: intentionalConfidence},
			{Action: models.ActionRemove, Description: "remove if the placeholder is stale", Confidence: 0.3},
			{Action: models.ActionPrefix, Description: c.prefixDescription(), Confidence: 0.1},
		}

	default:
		confidence := baseUnusedConfidence
		if usages == 1 {
			confidence += unusedBonus
			result.AddReasoning("exactly one usage elsewhere, likely incidental")
		}
		if len(similar) == 0 {
			confidence += unusedBonus
			result.AddReasoning("no similarly named identifiers exist")
		}
		result.AnalysisType = models.AnalysisGenuineUnused
		result.Confidence = confidence
		result.Explanation = "appears genuinely unused"
		result.RecommendedAction = models.RecommendedAction{Action: models.ActionRemove}
		result.PossibleActions = []models.PossibleAction{
			{Action: models.ActionRemove, Description: "remove the unused declaration", Confidence: confidence},
			{Action: models.ActionPrefix, Description: c.prefixDescription(), Confidence: 0.5},
			{Action: models.ActionKeep, Description: "keep as is", Confidence: 0.3},
		}
	}

	return result
}

// consultOracle asks the oracle for a second opinion and applies it only
// above the override floor. Transport failures keep the heuristic
// verdict and leave a trace in the reasoning steps.
func (c *Classifier) consultOracle(ctx context.Context, req Request, heuristic *models.ClassificationResult) *models.ClassificationResult {
	reply, err := c.oracle.AnalyzeVariable(ctx, c.buildOracleRequest(req))
	if err != nil {
		heuristic.AddReasoning(fmt.Sprintf("oracle unavailable (%v), heuristic result stands", err))
		return heuristic
	}

	if reply.Confidence <= OracleOverrideFloor {
		heuristic.AddReasoning(fmt.Sprintf("oracle confidence %.2f at or below override floor %.2f, heuristic result stands", reply.Confidence, OracleOverrideFloor))
		return heuristic
	}

	merged := &models.ClassificationResult{
		VariableName:      heuristic.VariableName,
		FilePath:          heuristic.FilePath,
		AnalysisType:      reply.AnalysisType,
		Confidence:        reply.Confidence,
		Explanation:       reply.Explanation,
		Reasoning:         append([]string{}, heuristic.Reasoning...),
		RecommendedAction: reply.RecommendedAction,
		PossibleActions:   reply.PossibleActions,
		FromOracle:        true,
	}
	merged.AddReasoning(fmt.Sprintf("oracle override applied with confidence %.2f", reply.Confidence))
	return merged
}

// buildOracleRequest gathers prompt material. A file that cannot be read
// yields an empty content field rather than failing the classification.
func (c *Classifier) buildOracleRequest(req Request) OracleRequest {
	oracleReq := OracleRequest{
		VariableName: req.VariableName,
		FilePath:     req.FilePath,
		Diagnostic:   req.Diagnostic,
	}

	if content, err := c.project.FileContent(req.FilePath); err == nil {
		oracleReq.FileContent = content
	}

	if c.crossFile {
		oracleReq.Dependencies = c.readAll(c.project.Dependencies(req.FilePath))
		oracleReq.Dependents = c.readAll(c.project.Dependents(req.FilePath))
	}

	return oracleReq
}

func (c *Classifier) readAll(paths []string) map[string]string {
	if len(paths) == 0 {
		return nil
	}
	contents := make(map[string]string, len(paths))
	for _, path := range paths {
		if text, err := c.project.FileContent(path); err == nil {
			contents[path] = text
		}
	}
	return contents
}

func (c *Classifier) prefixDescription() string {
	return fmt.Sprintf("prefix with %q to mark intentionally unused", c.prefix)
}

// rankActions guarantees the action list invariants regardless of which
// branch or oracle produced it: the prefix fallback is always present
// and actions are ordered by descending confidence.
func rankActions(result *models.ClassificationResult) {
	hasPrefix := false
	for _, action := range result.PossibleActions {
		if action.Action == models.ActionPrefix {
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		result.PossibleActions = append(result.PossibleActions, models.PossibleAction{
			Action:      models.ActionPrefix,
			Description: "prefix to mark intentionally unused",
			Confidence:  0.4,
		})
	}

	sort.SliceStable(result.PossibleActions, func(i, j int) bool {
		return result.PossibleActions[i].Confidence > result.PossibleActions[j].Confidence
	})
}

// memoKey hashes the identifying triple. UseAI is deliberately not part
// of the key: the flag is fixed for a run, and the first verdict for a
// diagnostic is the verdict for the run.
func memoKey(req Request) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(req.VariableName)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(req.FilePath)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(req.Diagnostic)
	return h.Sum64()
}
