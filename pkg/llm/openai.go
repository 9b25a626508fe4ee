package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rotisserie/eris"

	"github.com/visionbench/capeval/internal/resilience"
)

// openaiClient implements Client against any OpenAI-compatible
// chat-completions endpoint.
type openaiClient struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

func newOpenAIClient(opts Options) *openaiClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &openaiClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

func (c *openaiClient) Invoke(ctx context.Context, msgs []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: int(c.maxTokens),
	}

	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}

		if len(m.Images) == 0 {
			req.Messages = append(req.Messages, openai.ChatCompletionMessage{
				Role:    role,
				Content: m.Text,
			})
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(m.Images)+1)
		for _, img := range m.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Data),
					Detail: openai.ImageURLDetailHigh,
				},
			})
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: m.Text,
		})
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:         role,
			MultiContent: parts,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", resilience.NewTransientError(eris.New("llm: openai response had no choices"), 0)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIErr(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status != 0 && resilience.IsTransientHTTPStatus(status) {
		return resilience.NewTransientError(eris.Wrap(err, "llm: openai invoke"), status)
	}
	if status == 0 && resilience.IsTransient(err) {
		return resilience.NewTransientError(eris.Wrap(err, "llm: openai invoke"), 0)
	}
	return eris.Wrap(err, "llm: openai invoke")
}
