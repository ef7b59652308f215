package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/metrics"
)

const rerankSystemPrompt = "You are a helpful assistant that ranks search results by relevance. " +
	"Return only a JSON object with a 'ranking' field containing an array of profile indices " +
	"(0-based) from most to least relevant."

// Reranker asks a chat model for a relevance permutation over candidate
// summaries. Implements domain.RerankOracle.
type Reranker struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// RerankerConfig holds the rerank oracle settings.
type RerankerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewReranker creates an OpenAI-compatible rerank oracle.
func NewReranker(cfg *RerankerConfig) *Reranker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Reranker{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Rank sends the query plus numbered candidate summaries and returns the
// model's best-to-worst index permutation. The response contract is a single
// JSON object {"ranking": [ints]}; anything else is an error, which callers
// treat as the fail-open path.
func (r *Reranker) Rank(ctx context.Context, query string, candidates []string) ([]int, error) {
	req := openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rerankSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, candidates)},
		},
	}

	start := time.Now()
	resp, err := r.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, fmt.Errorf("rerank request failed: %w: %w", err, domain.ErrRerankProviderError)
	}
	if len(resp.Choices) == 0 {
		metrics.RerankRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, fmt.Errorf("empty rerank response: %w", domain.ErrRerankProviderError)
	}

	metrics.RerankRequestsTotal.WithLabelValues(r.model, "success").Inc()
	metrics.RerankRequestDuration.WithLabelValues(r.model).Observe(duration.Seconds())

	ranking, err := parseRanking(resp.Choices[0].Message.Content)
	if err != nil {
		r.logger.Warn("Malformed rerank response",
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return nil, err
	}
	return ranking, nil
}

// buildPrompt numbers the candidates in input order and states the expected
// response schema.
func buildPrompt(query string, candidates []string) string {
	var b strings.Builder
	b.WriteString("You are a search ranking expert. Given a user query and a list of ")
	b.WriteString("business angel profiles, rank the profiles by relevance to the query.\n\n")
	b.WriteString("User Query: ")
	b.WriteString(query)
	b.WriteString("\n\nProfiles:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "Profile %d:\n%s\n", i, c)
	}
	b.WriteString("\nReturn a JSON object with a 'ranking' field containing an array of ")
	b.WriteString("profile indices (0-based) ranked from most relevant to least relevant.\n\n")
	b.WriteString(`Example format: {"ranking": [2, 0, 5, 1, 3, 4]}`)
	return b.String()
}

// parseRanking validates the documented response schema. No speculative
// key scanning: a response that is not {"ranking": [ints]} is malformed.
func parseRanking(content string) ([]int, error) {
	var parsed struct {
		Ranking []int `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse rerank response: %w: %w", err, domain.ErrRerankProviderError)
	}
	if len(parsed.Ranking) == 0 {
		return nil, fmt.Errorf("rerank response has no ranking: %w", domain.ErrRerankProviderError)
	}
	return parsed.Ranking, nil
}
