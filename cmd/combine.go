package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/dataset"
	"github.com/visionbench/capeval/internal/perturb"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Splice perturbation text into instruction turns",
	Long: `Merges augmented shards and rewrites each item's first instruction turn
with its perturbation text, using one of four framing variants:

  version1  lead phrase + perturbation + tail phrase + instruction
  version2  perturbation + lead phrase + instruction
  version3  bare perturbation + instruction
  version4  perturbation + lead phrase (alternate bank) + instruction

--ratio controls what fraction of items are perturbed; the rest keep their
clean instruction. Every first turn is normalized to exactly one leading
image token either way.

With --total, the combined items are folded back into that master dataset
by id and the updated master is written to --out instead.

Examples:
  combine --in shards-augmented/ --out combined.json --variant version1 --ratio 0.5
  combine --in shards-augmented/ --total llava_v1_5_mix.json --out final.json`,
	RunE: runCombine,
}

func init() {
	f := combineCmd.Flags()
	f.String("in", "", "directory of augmented shards (*.json)")
	f.String("out", "", "output JSON file for the combined items")
	f.String("total", "", "master dataset to update by id (optional)")
	f.String("variant", "", "framing variant (overrides config)")
	f.Float64("ratio", -1, "fraction of items to perturb (overrides config)")
	f.String("phrases", "", "YAML phrase bank file (overrides built-ins)")
	f.Int64("seed", -1, "RNG seed for reproducible sampling (overrides config)")
	_ = combineCmd.MarkFlagRequired("in")
	_ = combineCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, _ []string) error {
	if variant, _ := cmd.Flags().GetString("variant"); variant != "" {
		cfg.Perturb.Variant = variant
	}
	if ratio, _ := cmd.Flags().GetFloat64("ratio"); ratio >= 0 {
		cfg.Perturb.Ratio = ratio
	}
	if phrases, _ := cmd.Flags().GetString("phrases"); phrases != "" {
		cfg.Perturb.Phrases = phrases
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed >= 0 {
		cfg.Perturb.Seed = seed
	}
	if err := cfg.Validate("combine"); err != nil {
		return err
	}

	inDir, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	banks := perturb.DefaultPhraseBanks()
	if cfg.Perturb.Phrases != "" {
		var err error
		banks, err = perturb.LoadPhraseBanks(cfg.Perturb.Phrases)
		if err != nil {
			return err
		}
	}

	seed := cfg.Perturb.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	combiner, err := perturb.NewCombiner(perturb.Variant(cfg.Perturb.Variant), cfg.Perturb.Ratio, banks, seed)
	if err != nil {
		return err
	}

	shards, err := dataset.ListShards(inDir)
	if err != nil {
		return err
	}
	items, err := dataset.MergeShards(shards)
	if err != nil {
		return err
	}

	count := combiner.Apply(items)

	if totalPath, _ := cmd.Flags().GetString("total"); totalPath != "" {
		master, err := dataset.LoadItems(totalPath)
		if err != nil {
			return err
		}
		replaced := dataset.UpdateByID(master, items)
		if err := dataset.SaveItems(out, master); err != nil {
			return err
		}
		zap.L().Info("combine complete",
			zap.String("out", out),
			zap.Int("master_items", len(master)),
			zap.Int("replaced", replaced),
			zap.Int("perturbed", count))
		fmt.Printf("Updated %d of %d master items (%d perturbed) into %s\n",
			replaced, len(master), count, out)
		return nil
	}

	if err := dataset.SaveItems(out, items); err != nil {
		return err
	}
	zap.L().Info("combine complete",
		zap.String("out", out),
		zap.Int("items", len(items)),
		zap.Int("perturbed", count))
	fmt.Printf("Combined %d items (%d perturbed) into %s\n", len(items), count, out)
	return nil
}
