// Package llm is the boundary to the remote vision/text generation
// endpoint. Callers build provider-neutral messages; backends translate
// them to their SDK and return the response text. Transport and envelope
// failures come back wrapped as resilience.TransientError so the retry
// layer can recognize them.
package llm

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ImagePart is an image attached to a message, base64-encoded.
type ImagePart struct {
	MediaType string // e.g. "image/jpeg"
	Data      string // base64 payload
}

// Message is a single conversational message. Images, when present, are
// placed before the text, matching the draft-perturbation request shape.
type Message struct {
	Role   string
	Text   string
	Images []ImagePart
}

// Client invokes the remote endpoint with an ordered message sequence and
// returns the generated text.
type Client interface {
	Invoke(ctx context.Context, msgs []Message) (string, error)
}

// Options configures a backend client.
type Options struct {
	Provider  string // "anthropic" or "openai"
	APIKey    string
	BaseURL   string // optional override, openai-compatible endpoints
	Model     string
	MaxTokens int64
}

// New constructs a backend client from Options.
func New(opts Options) (Client, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	switch opts.Provider {
	case "anthropic":
		return newAnthropicClient(opts), nil
	case "openai", "":
		return newOpenAIClient(opts), nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", opts.Provider)
	}
}

// pacedClient spaces calls out with a rate limiter. The endpoint is
// rate-limited cooperatively, not adaptively.
type pacedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewPacedClient wraps inner so every Invoke first waits on limiter.
func NewPacedClient(inner Client, limiter *rate.Limiter) Client {
	return &pacedClient{inner: inner, limiter: limiter}
}

func (p *pacedClient) Invoke(ctx context.Context, msgs []Message) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "llm: pacing wait")
	}
	return p.inner.Invoke(ctx, msgs)
}

// EncodeImageFile reads an image from disk and returns it as an ImagePart.
func EncodeImageFile(path string) (ImagePart, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImagePart{}, eris.Wrapf(err, "llm: read image %s", path)
	}
	return ImagePart{
		MediaType: mediaTypeFor(path),
		Data:      base64.StdEncoding.EncodeToString(raw),
	}, nil
}

func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
