package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/perturb"
)

var perturbCmd = &cobra.Command{
	Use:   "perturb",
	Short: "Generate adversarial perturbation text for dataset shards",
	Long: `Runs the two-round perturbation protocol over every shard under --in
and writes augmented shards under --out with the same file names.

Each item's image and flattened conversation go to the LLM twice: once to
draft a misleading interpretation, once to refine and densify it. Items
that already carry perturbation text are skipped, so interrupted runs can
be resumed over the partially written output directory.

Example:
  perturb --in shards/ --out shards-augmented/ --image-root /data/images`,
	RunE: runPerturb,
}

func init() {
	f := perturbCmd.Flags()
	f.String("in", "", "directory of input shards (*.json)")
	f.String("out", "", "directory for augmented shards")
	f.String("image-root", "", "base directory for item image paths (overrides config)")
	f.Int("workers", 0, "concurrent items per shard (0=use config default)")
	_ = perturbCmd.MarkFlagRequired("in")
	_ = perturbCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(perturbCmd)
}

func runPerturb(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if root, _ := cmd.Flags().GetString("image-root"); root != "" {
		cfg.Perturb.ImageRoot = root
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Perturb.Workers = workers
	}
	if err := cfg.Validate("perturb"); err != nil {
		return err
	}

	inDir, _ := cmd.Flags().GetString("in")
	outDir, _ := cmd.Flags().GetString("out")

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	generator := perturb.NewGenerator(client, cfg.Perturb.ImageRoot, cfg.Perturb.Workers)

	zap.L().Info("starting perturbation generation",
		zap.String("in", inDir),
		zap.String("out", outDir),
		zap.Int("workers", cfg.Perturb.Workers))

	return generator.ProcessDir(ctx, inDir, outDir)
}
