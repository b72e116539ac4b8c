// Package llm enriches articles via an OpenAI-compatible chat-completion
// endpoint (spec §4.7). Grounded on the teacher's
// internal/infra/summarizer/openai.go: same client/circuit-breaker/retry
// shape (openai.NewClientWithConfig, circuitbreaker.OpenAIAPIConfig,
// retry.AIAPIConfig, doX separated from the retry wrapper), switched from
// free-text summarization to the library's structured JSON-schema output
// mode and a fixed category allow-list instead of a character limit.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sony/gobreaker"

	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

// callTimeout bounds a single enrichment call (spec §4.1's uniform
// outbound-call timeout discipline).
const callTimeout = 60 * time.Second

// maxBodyChars is the crawled-content/snippet truncation ceiling carried in
// the user prompt (spec §4.7).
const maxBodyChars = 15000

// temperature is fixed per spec §4.7.
const temperature = 0.3

// systemPrompt frames the task as Indonesian oil-and-gas news analysis
// (spec §4.7).
const systemPrompt = `Anda adalah analis berita industri minyak dan gas Indonesia. Diberikan judul dan isi sebuah artikel berita, hasilkan ringkasan singkat dalam Bahasa Indonesia, label sentimen, daftar kategori yang relevan, dan alasan singkat untuk penilaian Anda.`

// categoryAllowList is the fixed set of categories a sanitized result may
// contain (spec §4.7).
var categoryAllowList = map[string]bool{
	"Produksi":      true,
	"Eksplorasi":    true,
	"Regulasi":      true,
	"Investasi":     true,
	"Lingkungan":    true,
	"Infrastruktur": true,
	"Keselamatan":   true,
	"Personel":      true,
	"Pasar":         true,
	"Komunitas":     true,
	"Teknologi":     true,
	"Umum":          true,
}

// fallbackCategory is substituted when sanitization leaves no category
// standing (spec §4.7).
const fallbackCategory = "Umum"

// Analysis is the structured result of a single enrichment call.
type Analysis struct {
	Summary    string   `json:"summary"`
	Sentiment  string   `json:"sentiment"`
	Categories []string `json:"categories"`
	Reason     string   `json:"reason"`
}

// analysisSchema is the JSON schema enforced on the model's response via
// the library's structured-output mode.
var analysisSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"summary": {Type: jsonschema.String},
		"sentiment": {
			Type: jsonschema.String,
			Enum: []string{"positive", "negative", "neutral"},
		},
		"categories": {
			Type:  jsonschema.Array,
			Items: &jsonschema.Definition{Type: jsonschema.String},
		},
		"reason": {Type: jsonschema.String},
	},
	Required: []string{"summary", "sentiment", "categories", "reason"},
}

// Client calls the configured OpenAI-compatible endpoint.
type Client struct {
	client         *openai.Client
	model          string
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewClient builds a Client against baseURL (an OpenAI-compatible
// chat-completions endpoint) using apiKey and model.
func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
	}
}

// Analyze enriches the article named by title/content/snippet. body is
// chosen per the fallback chain of spec §4.7: crawled content when
// available, else snippet, else a literal "no content" marker.
func (c *Client) Analyze(ctx context.Context, title, content, snippet string) (Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	var result Analysis
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doAnalyze(ctx, title, content, snippet)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm circuit breaker open, request rejected",
					slog.String("service", "llm"),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		result = cbResult.(Analysis)
		return nil
	})
	if retryErr != nil {
		return Analysis{}, fmt.Errorf("llm analyze failed after retries: %w", retryErr)
	}

	result.Categories = sanitizeCategories(result.Categories)
	return result, nil
}

func (c *Client) doAnalyze(ctx context.Context, title, content, snippet string) (Analysis, error) {
	body := bodyFor(content, snippet)
	userPrompt := fmt.Sprintf("Judul: %s\n\nIsi:\n%s", title, body)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "article_analysis",
				Schema: analysisSchema,
				Strict: true,
			},
		},
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "llm analysis failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return Analysis{}, fmt.Errorf("llm api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("llm api returned empty response")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("llm response decode: %w", err)
	}

	slog.InfoContext(ctx, "llm analysis completed",
		slog.Duration("duration", duration),
		slog.String("sentiment", analysis.Sentiment))
	return analysis, nil
}

// bodyFor implements the body fallback chain of spec §4.7.
func bodyFor(content, snippet string) string {
	if content != "" {
		return truncate(content, maxBodyChars)
	}
	if snippet != "" {
		return snippet
	}
	return "No content available."
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// sanitizeCategories filters raw against categoryAllowList, substituting
// fallbackCategory when nothing survives (spec §4.7). Idempotent:
// sanitizeCategories(sanitizeCategories(x)) == sanitizeCategories(x).
func sanitizeCategories(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var kept []string
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if categoryAllowList[c] && !seen[c] {
			seen[c] = true
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return []string{fallbackCategory}
	}
	return kept
}
