package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/conf"
	"divination-bot/internal/constants"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.8
	defaultMaxTokens   = 1000
)

// openAIClient is the interpretation generator HTTP client.
type openAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	metrics    *metrics.BotMetrics
	log        *log.Helper
}

// NewInterpreter creates the OpenAI chat completion client. A missing API key
// is fatal at startup: interpretations are the product.
func NewInterpreter(c *conf.Bootstrap, logger log.Logger) (biz.Interpreter, error) {
	if c.OpenAI == nil || c.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	baseURL := c.OpenAI.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	model := c.OpenAI.Model
	if model == "" {
		model = defaultModel
	}
	return &openAIClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    baseURL,
		apiKey:     c.OpenAI.APIKey,
		model:      model,
		metrics:    metrics.GetMetrics(),
		log:        log.NewHelper(logger),
	}, nil
}

type chatCompletionRequest struct {
	Model       string     `json:"model"`
	Messages    []biz.Turn `json:"messages"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the system instruction plus the conversation and returns the
// generated text. No retry; failures surface to the caller.
func (c *openAIClient) Complete(ctx context.Context, system string, turns []biz.Turn) (string, error) {
	start := time.Now()
	text, err := c.complete(ctx, system, turns)
	c.metrics.GeneratorDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeneratorRequestsTotal.WithLabelValues(constants.ResultFailed).Inc()
		return "", err
	}
	c.metrics.GeneratorRequestsTotal.WithLabelValues(constants.ResultSuccess).Inc()
	return text, nil
}

func (c *openAIClient) complete(ctx context.Context, system string, turns []biz.Turn) (string, error) {
	messages := make([]biz.Turn, 0, len(turns)+1)
	messages = append(messages, biz.Turn{Role: biz.RoleSystem, Content: system})
	messages = append(messages, turns...)

	raw, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Errorf("openai chat completion: status %d body %s", resp.StatusCode, body)
		return "", fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}

	var cr chatCompletionResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return cr.Choices[0].Message.Content, nil
}
