package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/exhaust/internal/output"
	"github.com/blackwell-systems/exhaust/internal/synth"
)

var dailyRecompute string

var dailyCmd = &cobra.Command{
	Use:     "daily",
	Aliases: []string{"longterm"},
	Short:   "Generate daily pattern analysis",
	Long: `Roll completed hourly syntheses up into calendar-day summaries with a
productivity narrative and recommendations. Only days strictly in the past
with enough hourly rows are processed. Unlike hourly syntheses, a day may
be recomputed: pass --recompute with a date to replace its existing row.`,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&dailyRecompute, "recompute", "", "Re-synthesize this date (YYYY-MM-DD) even if already present")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadConfigAndStore()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println(output.Status("Longterm", "Starting daily synthesis..."))

	d := synth.NewDaily(db, cfg.SynthesisWindow(), cfg.Synthesis.MinHoursPerDay)
	result, err := d.Run(dailyRecompute)
	if err != nil {
		return err
	}

	fmt.Println(output.Status("Longterm", "Found %d days to process", result.Candidates))
	for _, day := range result.Days {
		fmt.Println(output.Done("Longterm", "%s: %dh, %d events", day.Date, day.Hours, day.Events))
	}
	fmt.Println(output.Status("Longterm", "Complete!"))

	// Show the recent daily syntheses the run produced or kept.
	days, err := db.DailySyntheses(7)
	if err != nil {
		return err
	}
	if len(days) > 0 {
		fmt.Println(output.Section("Daily syntheses"))
		for _, day := range days {
			fmt.Printf("\n %s\n", output.StyleBold.Render(day.Date))
			fmt.Printf("   %s\n", day.ProductivitySummary)
			fmt.Printf("   %s\n", output.StyleMuted.Render(day.Recommendations))
		}
	}
	return nil
}
