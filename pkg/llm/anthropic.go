package llm

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/visionbench/capeval/internal/resilience"
)

// anthropicClient implements Client on the official anthropic-sdk-go.
type anthropicClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

func newAnthropicClient(opts Options) *anthropicClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &anthropicClient{
		client:    sdk.NewClient(reqOpts...),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

func (c *anthropicClient) Invoke(ctx context.Context, msgs []Message) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
	}

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, sdk.TextBlockParam{Text: m.Text})
		case RoleAssistant:
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Text)))
		default:
			blocks := make([]sdk.ContentBlockParamUnion, 0, len(m.Images)+1)
			for _, img := range m.Images {
				blocks = append(blocks, sdk.NewImageBlockBase64(img.MediaType, img.Data))
			}
			blocks = append(blocks, sdk.NewTextBlock(m.Text))
			params.Messages = append(params.Messages, sdk.NewUserMessage(blocks...))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicErr(err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

func classifyAnthropicErr(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(eris.Wrap(err, "llm: anthropic invoke"), apiErr.StatusCode)
	}
	if resilience.IsTransient(err) {
		return resilience.NewTransientError(eris.Wrap(err, "llm: anthropic invoke"), 0)
	}
	return eris.Wrap(err, "llm: anthropic invoke")
}
