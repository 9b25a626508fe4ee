package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/cache"
	"github.com/visionbench/capeval/internal/evalrun"
	"github.com/visionbench/capeval/internal/judge"
	"github.com/visionbench/capeval/internal/model"
	"github.com/visionbench/capeval/internal/resilience"
	"github.com/visionbench/capeval/internal/scenegraph"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate VLM captions against ground truth",
	Long: `Evaluates candidate captions against ground-truth annotations.

Each image's captions are converted to scene graphs by the configured LLM,
then compared in both directions: VLM entries with no ground-truth
counterpart count as hallucinations, ground-truth entries missing from the
VLM graph count as omissions. One JSONL record is appended per image,
followed by a corpus summary line.

Re-running with the same --out resumes: images already in the log are
skipped and the new summary covers the whole log.

Examples:
  # Full corpus
  eval --annotations annotations.json --results captions.jsonl --out eval.jsonl

  # Smoke-test the first 20 images with 8 workers
  eval --annotations annotations.json --results captions.jsonl --out eval.jsonl --limit 20 --workers 8`,
	RunE: runEval,
}

func init() {
	f := evalCmd.Flags()
	f.String("annotations", "", "ground-truth caption file (JSON array of {image, caption})")
	f.String("results", "", "candidate caption file (JSONL of {image, caption})")
	f.String("out", "eval.jsonl", "append-only result log")
	f.Int("workers", 0, "concurrent images (0=use config default)")
	f.Int("limit", 0, "cap on annotation entries considered (0=all)")
	_ = evalCmd.MarkFlagRequired("annotations")
	_ = evalCmd.MarkFlagRequired("results")

	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Eval.Workers = workers
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Eval.Limit = limit
	}
	if err := cfg.Validate("eval"); err != nil {
		return err
	}

	annotations, _ := cmd.Flags().GetString("annotations")
	results, _ := cmd.Flags().GetString("results")
	out, _ := cmd.Flags().GetString("out")

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	var responseCache scenegraph.ResponseCache
	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer c.Close()
		responseCache = c
	}

	extractor := scenegraph.NewExtractor(client, resilience.LLMCallConfig("scenegraph_extract"), responseCache)
	j := judge.New(client, resilience.LLMCallConfig("judge"))
	runner := evalrun.NewRunner(extractor, j, cfg.Eval.Workers, cfg.Eval.Limit)

	zap.L().Info("starting evaluation",
		zap.String("annotations", annotations),
		zap.String("results", results),
		zap.String("out", out))

	summary, err := runner.Run(ctx, annotations, results, out)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

func printSummary(s model.CorpusSummary) {
	fmt.Printf("\n--- Summary (%s) ---\n", s.RunID)
	fmt.Printf("Evaluated:           %d\n", s.Evaluated)
	fmt.Printf("VLM concepts:        %d (%d hallucinated)\n", s.TotalVLMConcepts, s.TotalHallucinated)
	fmt.Printf("GT concepts:         %d (%d omitted)\n", s.TotalGTConcepts, s.TotalOmitted)
	fmt.Printf("Hallucination score: %.4f\n", s.HallucinationScore)
	fmt.Printf("Recall score:        %.4f\n", s.RecallScore)
	fmt.Printf("F-score:             %.4f\n", s.FScore)
}
