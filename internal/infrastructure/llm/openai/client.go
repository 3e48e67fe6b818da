package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Chaithz/thinkTree/internal/infrastructure/resilience"
)

// Client serves both chat answers and embeddings from an OpenAI-compatible API.
type Client struct {
	api        *openai.Client
	chatModel  string
	embedModel openai.EmbeddingModel
	executor   *resilience.Executor
}

type Config struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
	HTTPClient *http.Client
	Executor   *resilience.Executor
}

func New(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}
	embedModel := openai.EmbeddingModel(cfg.EmbedModel)
	if embedModel == "" {
		embedModel = openai.SmallEmbedding3
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		chatModel:  chatModel,
		embedModel: embedModel,
		executor:   cfg.Executor,
	}
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := resilience.Call(ctx, c.executor, "openai.embed", classifyOpenAIError, func(callCtx context.Context) (openai.EmbeddingResponse, error) {
		return c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: texts,
			Model: c.embedModel,
		})
	})
	if err != nil {
		return nil, resilience.WrapTemporary("openai embed", fmt.Errorf("openai embed: %w", err), classifyOpenAIError)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, fmt.Errorf("openai embed: index %d out of range", item.Index)
		}
		out[item.Index] = item.Embedding
	}
	return out, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if strings.TrimSpace(model) == "" {
		model = c.chatModel
	}
	resp, err := resilience.Call(ctx, c.executor, "openai.chat", classifyOpenAIError, func(callCtx context.Context) (openai.ChatCompletionResponse, error) {
		return c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
	})
	if err != nil {
		return "", resilience.WrapTemporary("openai chat", fmt.Errorf("openai chat: %w", err), classifyOpenAIError)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) resilience.ErrorClassification {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyHTTP(&resilience.StatusError{StatusCode: apiErr.HTTPStatusCode})
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.ClassifyHTTP(&resilience.StatusError{StatusCode: reqErr.HTTPStatusCode})
	}
	return resilience.ClassifyHTTP(err)
}
