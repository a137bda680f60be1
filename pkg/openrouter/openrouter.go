package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

// Config targets OpenRouter's OpenAI-compatible API. Model is an OpenRouter
// slug, e.g. "anthropic/claude-sonnet-4".
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// NewChatModel builds an eino tool-calling chat model from the config.
func (c *Config) NewChatModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}
	return m, nil
}

// Client implements contract.CompletionProvider on the OpenAI SDK.
type Client struct {
	api          openaisdk.Client
	defaultModel string
	temperature  float64
	maxTokens    int64
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openrouter api key is required")
	}
	defaultModel := strings.TrimSpace(cfg.Model)
	if defaultModel == "" {
		return nil, errors.New("openrouter default model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	maxTokens := int64(2000)
	if cfg.MaxCompletionToken != nil && *cfg.MaxCompletionToken > 0 {
		maxTokens = int64(*cfg.MaxCompletionToken)
	}

	return &Client{
		api:          openaisdk.NewClient(opts...),
		defaultModel: defaultModel,
		temperature:  float64(cfg.Temperature),
		maxTokens:    maxTokens,
	}, nil
}

func (c *Client) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	if len(req.Messages) == 0 {
		return contractx.CompletionResponse{}, fmt.Errorf("%w: messages are required", contractx.ErrValidation)
	}

	modelName := strings.TrimSpace(req.Model)
	if modelName == "" {
		modelName = c.defaultModel
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, openaisdk.SystemMessage(system))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case contractx.RoleUser:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		default:
			return contractx.CompletionResponse{}, fmt.Errorf("%w: unsupported message role %q", contractx.ErrValidation, m.Role)
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(modelName),
		Messages:    messages,
		Temperature: openaisdk.Float(c.temperature),
		MaxTokens:   openaisdk.Int(c.maxTokens),
	})
	if err != nil {
		return contractx.CompletionResponse{}, Classify(err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	out := contractx.CompletionResponse{
		Content: content,
		Model:   resp.Model,
	}
	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		out.Usage = &contractx.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}
	return out, nil
}
