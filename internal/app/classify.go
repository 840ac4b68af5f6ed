package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/exhaust/internal/classify"
	"github.com/blackwell-systems/exhaust/internal/output"
)

var classifyBatchSize int

var classifyCmd = &cobra.Command{
	Use:     "classify",
	Aliases: []string{"backfill", "interpret"},
	Short:   "Heuristically classify unclassified events",
	Long: `Assign a behavioral theme to every event that has no interpretation
yet, using deterministic keyword patterns only (no model calls). The run is
idempotent: already-classified events are skipped, and an interrupted run
resumes from where it left off on the next invocation.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().IntVar(&classifyBatchSize, "batch-size", 0, "Interpretations per transaction (default from config)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadConfigAndStore()
	if err != nil {
		return err
	}
	defer db.Close()

	batchSize := cfg.Classify.BatchSize
	if classifyBatchSize > 0 {
		batchSize = classifyBatchSize
	}

	fmt.Println(output.Status("Backfill", "Starting fast heuristic classification..."))

	c := classify.New(db, batchSize, func(p classify.Progress) {
		fmt.Println(output.Progress("Backfill", p.Processed, p.Total))
	})

	result, err := c.Run()
	if err != nil {
		return err
	}

	fmt.Println(output.Done("Backfill", "Complete! Classified %d events", result.Classified))
	fmt.Println(output.Status("Backfill", "Remaining unclassified: %d", result.Remaining))
	return nil
}
