package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "capeval",
	Short: "Adversarial caption dataset augmentation and evaluation",
	Long:  "Generates adversarial perturbation text for multimodal instruction datasets, splices it into training turns, and scores VLM captions against ground truth with an LLM judge.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
