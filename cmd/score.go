package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/visionbench/capeval/internal/evalrun"
	"github.com/visionbench/capeval/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute the corpus summary from an existing result log",
	Long: `Re-reads a result log and micro-averages its per-image records into a
fresh corpus summary, without any LLM calls. Useful after interrupted runs
or after logs from several machines have been concatenated.

By default the summary is printed; --append also writes it to the log.`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("log", "eval.jsonl", "result log to summarize")
	f.Bool("append", false, "append the recomputed summary to the log")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	logPath, _ := cmd.Flags().GetString("log")
	appendSummary, _ := cmd.Flags().GetBool("append")

	records, err := evalrun.ReadRecords(logPath)
	if err != nil {
		return err
	}

	summary := scoring.Summarize(records)
	summary.RunID = uuid.New().String()

	zap.L().Info("recomputed summary",
		zap.String("log", logPath),
		zap.Int("records", len(records)))

	if appendSummary {
		log, err := evalrun.OpenLog(logPath)
		if err != nil {
			return err
		}
		defer log.Close()
		if err := log.Append(summary); err != nil {
			return err
		}
	}

	printSummary(summary)
	return nil
}
