// Package perturb generates adversarial perturbation text for dataset items
// and splices it back into their instruction turns.
package perturb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/visionbench/capeval/internal/dataset"
	"github.com/visionbench/capeval/internal/model"
	"github.com/visionbench/capeval/internal/resilience"
	"github.com/visionbench/capeval/pkg/llm"
)

// Generator runs the two-round perturbation protocol against a vision LLM.
type Generator struct {
	client    llm.Client
	imageRoot string

	// Retry governs the whole two-round exchange per item; any failure
	// inside a round restarts the protocol from the draft.
	Retry   resilience.Config
	Workers int
}

// NewGenerator creates a Generator. imageRoot is prepended to item image
// paths when attaching the image to the first round.
func NewGenerator(client llm.Client, imageRoot string, workers int) *Generator {
	if workers <= 0 {
		workers = 4
	}
	cfg := resilience.LLMCallConfig("perturb_generate")
	// The protocol restarts on any failure, not just transient transport
	// errors; a half-finished exchange has no salvageable state.
	cfg.ShouldRetry = func(error) bool { return true }
	return &Generator{
		client:    client,
		imageRoot: imageRoot,
		Retry:     cfg,
		Workers:   workers,
	}
}

// Augment fills item.PerturbationText via the two-round protocol. Items that
// already carry perturbation text are skipped, so re-running over a
// partially augmented shard only pays for the gaps.
func (g *Generator) Augment(ctx context.Context, item *model.DatasetItem) error {
	if item.PerturbationText != "" {
		return nil
	}

	instruction, answer, err := item.Flatten()
	if err != nil {
		return eris.Wrapf(err, "perturb: item %s", item.ID)
	}

	text, err := resilience.DoVal(ctx, g.Retry, func(ctx context.Context) (string, error) {
		return g.generate(ctx, item.Image, instruction, answer)
	})
	if err != nil {
		return eris.Wrapf(err, "perturb: item %s", item.ID)
	}
	item.PerturbationText = text
	return nil
}

// generate runs one full draft-then-refine exchange.
func (g *Generator) generate(ctx context.Context, image, instruction, answer string) (string, error) {
	img, err := llm.EncodeImageFile(filepath.Join(g.imageRoot, image))
	if err != nil {
		return "", err
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Text: attackerSystem},
		{
			Role:   llm.RoleUser,
			Text:   fmt.Sprintf(draftPrompt, instruction, answer),
			Images: []llm.ImagePart{img},
		},
	}
	draft, err := g.client.Invoke(ctx, messages)
	if err != nil {
		return "", err
	}

	messages = append(messages,
		llm.Message{Role: llm.RoleAssistant, Text: draft},
		llm.Message{Role: llm.RoleUser, Text: fmt.Sprintf(refinePrompt, instruction, answer)},
	)
	final, err := g.client.Invoke(ctx, messages)
	if err != nil {
		return "", err
	}
	return stripPerturbationPrefix(final), nil
}

// stripPerturbationPrefix drops the first "(Perturbation): " (or bare
// "(Perturbation)") the model echoes back from the prompt.
func stripPerturbationPrefix(s string) string {
	s = strings.Replace(s, "(Perturbation): ", "", 1)
	return strings.Replace(s, "(Perturbation)", "", 1)
}

// ProcessShard augments every item of a shard in place with a bounded worker
// pool. Per-item failures are logged and leave the item unmodified; only
// context cancellation aborts the shard.
func (g *Generator) ProcessShard(ctx context.Context, items []model.DatasetItem) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.Workers)
	for i := range items {
		item := &items[i]
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := g.Augment(gctx, item); err != nil {
				zap.L().Warn("perturb: item failed",
					zap.String("id", item.ID),
					zap.String("image", item.Image),
					zap.Error(err))
			}
			return nil
		})
	}
	return eg.Wait()
}

// ProcessDir augments every shard under inDir and writes the results under
// outDir with the same file names.
func (g *Generator) ProcessDir(ctx context.Context, inDir, outDir string) error {
	shards, err := dataset.ListShards(inDir)
	if err != nil {
		return err
	}
	for _, shard := range shards {
		items, err := dataset.LoadItems(shard)
		if err != nil {
			return err
		}
		zap.L().Info("perturb: processing shard",
			zap.String("shard", filepath.Base(shard)),
			zap.Int("items", len(items)))
		if err := g.ProcessShard(ctx, items); err != nil {
			return err
		}
		out := filepath.Join(outDir, filepath.Base(shard))
		if err := dataset.SaveItems(out, items); err != nil {
			return err
		}
	}
	return nil
}
