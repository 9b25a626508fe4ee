package perturb

import (
	"math/rand"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/model"
)

// Variant selects how perturbation text is framed inside the instruction.
type Variant string

const (
	// Version1 wraps the perturbation between a lead and a tail phrase.
	Version1 Variant = "version1"
	// Version2 puts the perturbation first, then a lead phrase.
	Version2 Variant = "version2"
	// Version3 splices the bare perturbation with no framing.
	Version3 Variant = "version3"
	// Version4 is Version2 with its own phrase bank.
	Version4 Variant = "version4"
)

// Combiner splices perturbation text into instruction turns. Each item is
// perturbed with probability ratio; the rest keep their clean instruction.
// Either way the turn is normalized to exactly one leading image token.
type Combiner struct {
	variant Variant
	ratio   float64
	phrases *PhraseBanks
	rng     *rand.Rand
}

// NewCombiner creates a Combiner. phrases may be nil for the defaults.
func NewCombiner(variant Variant, ratio float64, phrases *PhraseBanks, seed int64) (*Combiner, error) {
	switch variant {
	case Version1, Version2, Version3, Version4:
	default:
		return nil, eris.Errorf("perturb: unknown combine variant %q", variant)
	}
	if ratio < 0 || ratio > 1 {
		return nil, eris.Errorf("perturb: ratio %v out of [0,1]", ratio)
	}
	if phrases == nil {
		phrases = DefaultPhraseBanks()
	}
	return &Combiner{
		variant: variant,
		ratio:   ratio,
		phrases: phrases,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Apply rewrites the first conversation turn of every eligible item in place
// and returns how many items received perturbation text. Items without
// perturbation text, an image, or any conversation are left untouched.
func (c *Combiner) Apply(items []model.DatasetItem) int {
	count := 0
	for i := range items {
		item := &items[i]
		if item.PerturbationText == "" || item.Image == "" || len(item.Conversations) == 0 {
			continue
		}

		clean := model.StripImageTokens(item.Conversations[0].Value)
		if c.rng.Float64() < c.ratio {
			item.Conversations[0].Value = c.build(clean, item.PerturbationText)
			count++
		} else {
			item.Conversations[0].Value = model.ImageToken + "\n" + clean
		}
	}
	zap.L().Info("perturb: combined shards",
		zap.String("variant", string(c.variant)),
		zap.Int("perturbed", count),
		zap.Int("total", len(items)))
	return count
}

func (c *Combiner) build(instruction, perturbation string) string {
	prefix := model.ImageToken + "\n"
	switch c.variant {
	case Version1:
		lead := c.pick(c.phrases.Version1Lead)
		tail := c.pick(c.phrases.Version1Tail)
		return prefix + lead + " " + perturbation + " " + tail + " " + instruction
	case Version2:
		return prefix + perturbation + " " + c.pick(c.phrases.Version2Lead) + " " + instruction
	case Version3:
		return prefix + " " + perturbation + " " + instruction
	case Version4:
		return prefix + perturbation + " " + c.pick(c.phrases.Version4Lead) + " " + instruction
	}
	return prefix + instruction
}

func (c *Combiner) pick(bank []string) string {
	if len(bank) == 0 {
		return ""
	}
	return bank[c.rng.Intn(len(bank))]
}
