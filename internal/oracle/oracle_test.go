package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/panbanda/lintmend/internal/cache"
	"github.com/panbanda/lintmend/pkg/analyzer/classify"
	"github.com/panbanda/lintmend/pkg/config"
	"github.com/panbanda/lintmend/pkg/models"
)

const goodVerdict = `{
  "analysis_type": "TYPO",
  "confidence": 0.92,
  "explanation": "userData is likely a typo of user_data",
  "recommended_action": {"action": "RENAME", "details": "user_data"},
  "possible_actions": [
    {"action": "RENAME", "description": "rename to user_data", "confidence": 0.92},
    {"action": "REMOVE", "description": "delete the declaration", "confidence": 0.3}
  ]
}`

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("LINTMEND_TEST_ORACLE_KEY", "test-key")

	cfg := config.DefaultConfig()
	cfg.Oracle.BaseURL = server.URL + "/v1"
	cfg.Oracle.APIKeyEnv = "LINTMEND_TEST_ORACLE_KEY"

	opts = append([]Option{WithRetryConfig(fastRetry(3))}, opts...)
	client, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

// replyWith answers every completion request with the given content.
func replyWith(content string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func sampleRequest() classify.OracleRequest {
	return classify.OracleRequest{
		VariableName: "userData",
		FilePath:     "src/user.ts",
		Diagnostic:   "'userData' is assigned a value but never used",
		FileContent:  "const userData = fetchUser();\n",
	}
}

func TestAnalyzeVariableParsesVerdict(t *testing.T) {
	client := newTestClient(t, replyWith(goodVerdict))

	result, err := client.AnalyzeVariable(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("AnalyzeVariable: %v", err)
	}

	if result.AnalysisType != models.AnalysisTypo {
		t.Errorf("AnalysisType = %s, want TYPO", result.AnalysisType)
	}
	if result.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", result.Confidence)
	}
	if !result.FromOracle {
		t.Error("FromOracle not set")
	}
	if result.RecommendedAction.Action != models.ActionRename || result.RecommendedAction.Details != "user_data" {
		t.Errorf("RecommendedAction = %+v, want RENAME to user_data", result.RecommendedAction)
	}
	if len(result.PossibleActions) != 2 {
		t.Errorf("PossibleActions = %d entries, want 2", len(result.PossibleActions))
	}
	if result.VariableName != "userData" || result.FilePath != "src/user.ts" {
		t.Errorf("identity fields = %s/%s", result.VariableName, result.FilePath)
	}
}

func TestAnalyzeVariableFenceWrappedVerdict(t *testing.T) {
	client := newTestClient(t, replyWith("```json\n"+goodVerdict+"\n```"))

	result, err := client.AnalyzeVariable(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("AnalyzeVariable: %v", err)
	}
	if result.AnalysisType != models.AnalysisTypo {
		t.Errorf("AnalysisType = %s, want TYPO despite the code fence", result.AnalysisType)
	}
}

func TestAnalyzeVariableMalformedReply(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain_prose", "I believe this variable is unused, but I cannot be sure."},
		{"invented_analysis_type", `{"analysis_type":"MYSTERY","confidence":0.9,"explanation":"made up"}`},
		{"confidence_out_of_range", `{"analysis_type":"TYPO","confidence":1.7,"explanation":"overconfident"}`},
		{"missing_required_fields", `{"analysis_type":"TYPO"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, replyWith(tt.content))

			result, err := client.AnalyzeVariable(context.Background(), sampleRequest())
			if err != nil {
				t.Fatalf("malformed reply must not surface as an error, got %v", err)
			}
			if result.AnalysisType != models.AnalysisUnknown {
				t.Errorf("AnalysisType = %s, want UNKNOWN", result.AnalysisType)
			}
			if result.Confidence != malformedConfidence {
				t.Errorf("Confidence = %v, want %v", result.Confidence, malformedConfidence)
			}
		})
	}
}

func TestAnalyzeVariableRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit_exceeded"}}`)
			return
		}
		replyWith(goodVerdict).ServeHTTP(w, r)
	})

	client := newTestClient(t, handler)

	result, err := client.AnalyzeVariable(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("AnalyzeVariable: %v", err)
	}
	if result.AnalysisType != models.AnalysisTypo {
		t.Errorf("AnalysisType = %s, want TYPO after retries", result.AnalysisType)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestAnalyzeVariableTransportFailure(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, handler)

	_, err := client.AnalyzeVariable(context.Background(), sampleRequest())
	if err == nil {
		t.Fatal("expected a transport error after retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want all 3 attempts", got)
	}
}

func TestAnalyzeVariableHonorsContext(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		replyWith(goodVerdict).ServeHTTP(w, r)
	})
	client := newTestClient(t, handler)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.AnalyzeVariable(ctx, sampleRequest()); err == nil {
		t.Fatal("expected an error when the context deadline passes")
	}
}

func TestAnalyzeVariableCachesParsedReplies(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		replyWith(goodVerdict).ServeHTTP(w, r)
	})

	replies, err := cache.New(t.TempDir(), 1, true)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	client := newTestClient(t, handler, WithReplyCache(replies))

	req := sampleRequest()
	first, err := client.AnalyzeVariable(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.AnalyzeVariable(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (second answered from cache)", got)
	}
	if first.AnalysisType != second.AnalysisType || first.Confidence != second.Confidence {
		t.Errorf("cached verdict diverges: %+v vs %+v", first, second)
	}
}

func TestAnalyzeVariableCacheDiesWithFileContent(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		replyWith(goodVerdict).ServeHTTP(w, r)
	})

	replies, err := cache.New(t.TempDir(), 1, true)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	client := newTestClient(t, handler, WithReplyCache(replies))

	req := sampleRequest()
	if _, err := client.AnalyzeVariable(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	req.FileContent = "const userData = fetchUser();\nconsole.log(userData);\n"
	if _, err := client.AnalyzeVariable(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2 (changed file invalidates the reply)", got)
	}
}

func TestAnalyzeVariableSendsContext(t *testing.T) {
	var body atomic.Value
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body.Store(string(data))
		replyWith(goodVerdict).ServeHTTP(w, r)
	})

	client := newTestClient(t, handler)

	req := sampleRequest()
	req.Dependencies = map[string]string{"src/api.ts": "export function fetchUser() {}\n"}
	if _, err := client.AnalyzeVariable(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	sent, _ := body.Load().(string)
	for _, fragment := range []string{"userData", "src/user.ts", "never used", "src/api.ts"} {
		if !strings.Contains(sent, fragment) {
			t.Errorf("request body missing %q", fragment)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oracle.APIKeyEnv = "LINTMEND_TEST_MISSING_KEY"
	t.Setenv("LINTMEND_TEST_MISSING_KEY", "")

	if _, err := New(cfg); err == nil {
		t.Fatal("expected an error when the key variable is empty")
	}
}
