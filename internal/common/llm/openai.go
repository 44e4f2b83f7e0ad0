package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	apperrors "news-intel/internal/common/errors"
)

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Failed calls degrade per stage; the SDK must not retry behind our back.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client}
}

func (c *OpenAIClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	params := c.params(req)
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}

	content, err := c.complete(ctx, params)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(content), nil
}

func (c *OpenAIClient) GenerateText(ctx context.Context, req Request) (string, error) {
	return c.complete(ctx, c.params(req))
}

func (c *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	return params
}

func (c *OpenAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", apperrors.NewTransportError("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewParseError("openai", fmt.Errorf("no choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}
