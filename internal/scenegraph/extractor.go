package scenegraph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/resilience"
	"github.com/visionbench/capeval/pkg/llm"
)

// ErrEmptyCaption indicates extraction was asked to run on empty text.
// This is fatal for the item's scene-graph step only; the batch continues.
var ErrEmptyCaption = eris.New("scenegraph: empty caption")

// ResponseCache stores raw extraction responses keyed by prompt digest.
// Identical captions across runs skip the LLM entirely.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Extractor converts free-text captions into scene graphs with a single
// few-shot LLM call per caption.
type Extractor struct {
	client llm.Client
	retry  resilience.Config
	cache  ResponseCache // optional
}

// NewExtractor creates an Extractor. cache may be nil.
func NewExtractor(client llm.Client, retry resilience.Config, cache ResponseCache) *Extractor {
	return &Extractor{client: client, retry: retry, cache: cache}
}

// Extract sends the caption through the extraction prompt and parses the
// response leniently. An empty or unparseable response yields a zero-entry
// graph, not an error.
func (e *Extractor) Extract(ctx context.Context, caption string) (*Graph, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, ErrEmptyCaption
	}

	prompt := fmt.Sprintf(extractionPrompt, caption)
	key := promptDigest(prompt)

	if e.cache != nil {
		if raw, ok, err := e.cache.Get(ctx, key); err != nil {
			zap.L().Warn("scenegraph: cache read failed", zap.Error(err))
		} else if ok {
			return Parse(raw), nil
		}
	}

	raw, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (string, error) {
		return e.client.Invoke(ctx, []llm.Message{
			{Role: llm.RoleUser, Text: prompt},
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "scenegraph: extract")
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, key, raw); err != nil {
			zap.L().Warn("scenegraph: cache write failed", zap.Error(err))
		}
	}

	return Parse(raw), nil
}

func promptDigest(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
