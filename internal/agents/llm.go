// Package agents provides the AI collaborators: the trend analyst and the
// recommendation generator. Their output is untrusted and always re-validated
// before any trade executes.
package agents

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"cryptopilot/pkg/utils"
)

// LLMClient is the completion interface the agents talk to.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient implements LLMClient using the OpenAI chat API with
// exponential backoff on transport errors.
type OpenAIClient struct {
	client *openai.Client
	model  string
	retry  utils.RetryConfig
}

// NewOpenAIClient creates a new OpenAI LLM client.
func NewOpenAIClient(apiKey string, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		retry:  utils.APIRetryConfig(retryableCompletionError),
	}
}

// retryableCompletionError classifies completion failures. Rate limits and
// server-side errors get another attempt; bad requests, auth failures, and
// other client errors fail fast. Transport failures carry no status code and
// always retry.
func retryableCompletionError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return true
}

// Complete sends a prompt to the LLM and returns the response.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// CompleteWithSystem sends a prompt with a system message to the LLM.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	})
}

func (c *OpenAIClient) chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	return utils.RetryWithResult(ctx, c.retry, func() (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		})
		if err != nil {
			return "", fmt.Errorf("openai completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response from openai")
		}
		return resp.Choices[0].Message.Content, nil
	})
}
