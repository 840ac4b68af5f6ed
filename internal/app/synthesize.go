package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/exhaust/internal/output"
	"github.com/blackwell-systems/exhaust/internal/synth"
)

var synthesizeCmd = &cobra.Command{
	Use:     "synthesize",
	Aliases: []string{"sync"},
	Short:   "Generate missing hourly syntheses",
	Long: `Aggregate classified events into one-hour buckets. An hour is
synthesized once it holds enough classified events within the trailing
window and has no synthesis row yet; a synthesized hour is immutable.`,
	RunE: runSynthesize,
}

func init() {
	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadConfigAndStore()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println(output.Status("FastSynth", "Starting..."))

	h := synth.NewHourly(db, cfg.SynthesisWindow(), cfg.Synthesis.MinEventsPerHour)
	result, err := h.Run()
	if err != nil {
		return err
	}

	fmt.Println(output.Status("FastSynth", "Found %d hours to synthesize", result.Candidates))
	fmt.Println(output.Done("FastSynth", "Complete! Generated %d syntheses", result.Synthesized))

	stats, err := db.GetStats()
	if err != nil {
		return err
	}
	fmt.Println(output.Status("FastSynth", "Total syntheses now: %d", stats.TotalSyntheses))
	return nil
}
