package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/dataset"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Concatenate dataset shards into one file",
	Long: `Reads every *.json shard under --in in sorted order and writes their
items as a single JSON array. No rewriting happens; this is the plain
shard concatenation step.

Example:
  merge --in shards/ --out merged.json`,
	RunE: runMerge,
}

func init() {
	f := mergeCmd.Flags()
	f.String("in", "", "directory of shards (*.json)")
	f.String("out", "", "output JSON file")
	_ = mergeCmd.MarkFlagRequired("in")
	_ = mergeCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("merge"); err != nil {
		return err
	}

	inDir, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	shards, err := dataset.ListShards(inDir)
	if err != nil {
		return err
	}
	items, err := dataset.MergeShards(shards)
	if err != nil {
		return err
	}
	if err := dataset.SaveItems(out, items); err != nil {
		return err
	}

	zap.L().Info("merge complete",
		zap.String("out", out),
		zap.Int("shards", len(shards)),
		zap.Int("items", len(items)))
	fmt.Printf("Merged %d shards (%d items) into %s\n", len(shards), len(items), out)
	return nil
}
