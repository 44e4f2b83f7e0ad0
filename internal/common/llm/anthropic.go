package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "news-intel/internal/common/errors"
)

const (
	defaultAnthropicMaxTokens = 2048
	jsonOnlyInstruction       = "Respond with a single JSON object and no other text."
)

type AnthropicClient struct {
	client *anthropic.Client
}

func NewAnthropicClient(cfg Config) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{client: &client}
}

// GenerateJSON has no response-format switch on this provider, so the
// instruction goes into the system prompt and fences are stripped afterwards.
func (c *AnthropicClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	if req.System == "" {
		req.System = jsonOnlyInstruction
	} else {
		req.System = req.System + "\n" + jsonOnlyInstruction
	}

	content, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(content), nil
}

func (c *AnthropicClient) GenerateText(ctx context.Context, req Request) (string, error) {
	return c.generate(ctx, req)
}

func (c *AnthropicClient) generate(ctx context.Context, req Request) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", apperrors.NewTransportError("anthropic", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", apperrors.NewParseError("anthropic", fmt.Errorf("no text content in response"))
	}
	return sb.String(), nil
}
