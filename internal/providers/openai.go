package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/time/rate"

	"github.com/google/uuid"
)

const (
	OpenAIName                = "openai"
	openAIDefaultModel        = "gpt-4o-mini"
	openAIDefaultCallTimeout  = 180 * time.Second
	openAIDefaultRequestsRate = 1.0
)

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string // optional (tests)
	DefaultModel string
	Timeout      time.Duration
	RPS          float64
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
// SDK-internal retries are disabled; the caller owns the retry policy.
type OpenAIClient struct {
	client       openai.Client
	defaultModel string
	limiter      *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = openAIDefaultCallTimeout
	}
	if cfg.RPS == 0 {
		cfg.RPS = openAIDefaultRequestsRate
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:       openai.NewClient(opts...),
		defaultModel: cfg.DefaultModel,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Chat sends one chat completion request through the SDK.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var sdkErr *openai.Error
		if errors.As(err, &sdkErr) {
			return nil, &APIError{Provider: OpenAIName, Status: sdkErr.StatusCode, Body: sdkErr.Message}
		}
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrBadResponseShape)
	}

	result := &ChatResult{
		Content:          resp.Choices[0].Message.Content,
		Provider:         OpenAIName,
		ModelUsed:        resp.Model,
		RequestID:        requestID,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
	}

	if req.ResponseFormat != nil {
		parsed, err := ParseJSON(result.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadResponseShape, err)
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
