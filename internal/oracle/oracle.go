// Package oracle implements the AI consultation path for ambiguous
// unused-variable diagnostics. The client ships a TOON-encoded context
// bundle to an OpenAI-compatible endpoint, validates the JSON verdict
// that comes back, and caches parsed replies keyed by prompt and file
// fingerprint so unchanged files never pay for the same question twice.
//
// Malformed replies degrade to a low-confidence UNKNOWN verdict instead
// of an error; the classifier keeps its heuristic result in that case.
// Errors escape only when the transport itself fails after retries.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/sashabaranov/go-openai"
	toon "github.com/toon-format/toon-go"

	"github.com/panbanda/lintmend/internal/cache"
	"github.com/panbanda/lintmend/internal/output"
	"github.com/panbanda/lintmend/pkg/analyzer/classify"
	"github.com/panbanda/lintmend/pkg/config"
	"github.com/panbanda/lintmend/pkg/models"
)

const systemPrompt = `You are a lint triage assistant. Given an unused-variable diagnostic and project context, decide what the variable really is: genuinely dead code, a typo of a nearby name, a leftover from refactoring, or intentionally unused.

Respond with ONLY valid JSON (no markdown, no preamble):
{"analysis_type":"GENUINE_UNUSED|TYPO|REFACTOR_LEFTOVER|INTENTIONAL_UNUSED|REFACTOR_ISSUE|PARAMETER_MISMATCH|TYPE_DEFINITION_MISMATCH|UNKNOWN","confidence":0.0-1.0,"explanation":"one sentence","recommended_action":{"action":"RENAME|PREFIX|REMOVE|KEEP|REVIEW","details":"rename target if RENAME"},"possible_actions":[{"action":"...","description":"...","confidence":0.0-1.0}]}`

// malformedConfidence is the confidence attached to an unparseable
// reply. It sits well under the override floor, so such replies can
// never displace a heuristic verdict.
const malformedConfidence = 0.1

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	api          *openai.Client
	model        string
	temperature  float32
	maxTokens    int
	retry        RetryConfig
	replies      *cache.Cache
	promptBudget int
	schema       *jsonschema.Schema
}

// Option configures a Client.
type Option func(*Client)

// WithReplyCache persists parsed verdicts between runs.
func WithReplyCache(c *cache.Cache) Option {
	return func(cl *Client) { cl.replies = c }
}

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(cl *Client) { cl.retry = rc }
}

// WithPromptBudget caps the estimated token count of the context bundle.
func WithPromptBudget(tokens int) Option {
	return func(cl *Client) {
		if tokens > 0 {
			cl.promptBudget = tokens
		}
	}
}

// New builds a client from the oracle section of the configuration. The
// API key is read from the configured environment variable and never
// from the config file itself.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	keyEnv := cfg.Oracle.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("oracle API key not found: set %s", keyEnv)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Oracle.BaseURL != "" {
		clientCfg.BaseURL = cfg.Oracle.BaseURL
	}

	schema, err := compileReplySchema()
	if err != nil {
		return nil, err
	}

	retry := DefaultRetryConfig()
	if cfg.Oracle.MaxRetries > 0 {
		retry.MaxAttempts = cfg.Oracle.MaxRetries
	}

	cl := &Client{
		api:          openai.NewClientWithConfig(clientCfg),
		model:        cfg.Oracle.Model,
		temperature:  float32(cfg.Oracle.Temperature),
		maxTokens:    cfg.Oracle.MaxTokens,
		retry:        retry,
		promptBudget: output.DefaultPromptBudget,
		schema:       schema,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl, nil
}

// AnalyzeVariable asks the oracle for a verdict on one diagnostic.
func (c *Client) AnalyzeVariable(ctx context.Context, req classify.OracleRequest) (*models.ClassificationResult, error) {
	prompt, err := c.buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build oracle prompt: %w", err)
	}

	cacheKey := "oracle|" + c.model + "|" + prompt
	fileHash := cache.HashBytes([]byte(req.FileContent))

	if c.replies != nil {
		if data, ok := c.replies.GetWithHash(cacheKey, fileHash); ok {
			var cached models.ClassificationResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, parsed := c.parseReply(req, content)
	if parsed && c.replies != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = c.replies.SetWithHash(cacheKey, fileHash, data)
		}
	}
	return result, nil
}

var errEmptyCompletion = errors.New("completion contained no choices")

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var content string

	err := c.retry.do(ctx, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature:         c.temperature,
			MaxCompletionTokens: c.maxTokens,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errEmptyCompletion
		}
		content = resp.Choices[0].Message.Content
		return nil
	})

	return content, err
}

// promptContext is the TOON-encoded bundle embedded in the user prompt.
type promptContext struct {
	Variable     string            `json:"variable"`
	FilePath     string            `json:"file_path"`
	Diagnostic   string            `json:"diagnostic"`
	FileContent  string            `json:"file_content,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Dependents   map[string]string `json:"dependents,omitempty"`
}

func (c *Client) buildPrompt(req classify.OracleRequest) (string, error) {
	// The diagnosed file gets half the budget; related files split the
	// rest so one giant dependency can't crowd out the file under
	// discussion.
	pc := promptContext{
		Variable:    req.VariableName,
		FilePath:    req.FilePath,
		Diagnostic:  req.Diagnostic,
		FileContent: output.TruncateToBudget(req.FileContent, c.promptBudget/2),
	}

	related := len(req.Dependencies) + len(req.Dependents)
	if related > 0 {
		each := c.promptBudget / 2 / related
		if each < 1 {
			each = 1
		}
		pc.Dependencies = truncateAll(req.Dependencies, each)
		pc.Dependents = truncateAll(req.Dependents, each)
	}

	encoded, err := toon.Marshal(pc, toon.WithIndent(2))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Classify the unused variable %q.\n\nContext:\n%s", req.VariableName, string(encoded)), nil
}

func truncateAll(files map[string]string, budget int) map[string]string {
	if len(files) == 0 {
		return nil
	}
	out := make(map[string]string, len(files))
	for path, content := range files {
		out[path] = output.TruncateToBudget(content, budget)
	}
	return out
}

// oracleReply is the wire shape of a verdict.
type oracleReply struct {
	AnalysisType      string  `json:"analysis_type"`
	Confidence        float64 `json:"confidence"`
	Explanation       string  `json:"explanation"`
	RecommendedAction struct {
		Action  string `json:"action"`
		Details string `json:"details"`
	} `json:"recommended_action"`
	PossibleActions []struct {
		Action      string  `json:"action"`
		Description string  `json:"description"`
		Confidence  float64 `json:"confidence"`
	} `json:"possible_actions"`
}

// parseReply turns reply text into a verdict. The second return value
// reports whether the reply parsed cleanly; malformed replies yield a
// low-confidence UNKNOWN that is never cached.
func (c *Client) parseReply(req classify.OracleRequest, content string) (*models.ClassificationResult, bool) {
	raw, err := ExtractJSON(content)
	if err != nil {
		return c.malformed(req, "oracle reply contained no JSON verdict"), false
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return c.malformed(req, "oracle reply was not valid JSON"), false
	}
	if err := c.schema.Validate(instance); err != nil {
		return c.malformed(req, "oracle reply failed shape validation"), false
	}

	var reply oracleReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return c.malformed(req, "oracle reply was not valid JSON"), false
	}
	if !models.ValidAnalysisType(reply.AnalysisType) {
		return c.malformed(req, fmt.Sprintf("oracle invented analysis type %q", reply.AnalysisType)), false
	}

	result := &models.ClassificationResult{
		VariableName: req.VariableName,
		FilePath:     req.FilePath,
		AnalysisType: models.AnalysisType(reply.AnalysisType),
		Confidence:   clamp01(reply.Confidence),
		Explanation:  reply.Explanation,
		FromOracle:   true,
	}

	if models.ValidActionType(reply.RecommendedAction.Action) {
		result.RecommendedAction = models.RecommendedAction{
			Action:  models.ActionType(reply.RecommendedAction.Action),
			Details: reply.RecommendedAction.Details,
		}
	} else {
		result.RecommendedAction = models.RecommendedAction{Action: models.ActionReview}
	}

	for _, a := range reply.PossibleActions {
		if !models.ValidActionType(a.Action) {
			continue
		}
		result.PossibleActions = append(result.PossibleActions, models.PossibleAction{
			Action:      models.ActionType(a.Action),
			Description: a.Description,
			Confidence:  clamp01(a.Confidence),
		})
	}

	return result, true
}

func (c *Client) malformed(req classify.OracleRequest, why string) *models.ClassificationResult {
	return &models.ClassificationResult{
		VariableName:      req.VariableName,
		FilePath:          req.FilePath,
		AnalysisType:      models.AnalysisUnknown,
		Confidence:        malformedConfidence,
		Explanation:       why,
		RecommendedAction: models.RecommendedAction{Action: models.ActionReview},
		FromOracle:        true,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ classify.Oracle = (*Client)(nil)
