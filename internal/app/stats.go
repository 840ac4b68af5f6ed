package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/exhaust/internal/output"
	"github.com/blackwell-systems/exhaust/internal/store"
)

var (
	statsEvents int
	statsHours  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show event and synthesis counts",
	Long: `Show aggregate pipeline counts plus recent events and hourly
syntheses. This is the same relation contract the dashboard API reads:
events filtered by timestamp, newest first; syntheses filtered by hour
bucket, oldest first.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsEvents, "events", 10, "Number of recent events to show")
	statsCmd.Flags().IntVar(&statsHours, "hours", 24, "Trailing hours of syntheses to show")
	rootCmd.AddCommand(statsCmd)
}

// statsReport is the JSON shape of the stats command output.
type statsReport struct {
	Stats     *store.Stats            `json:"stats"`
	Events    []store.Event           `json:"events"`
	Syntheses []store.HourlySynthesis `json:"syntheses"`
	Timestamp string                  `json:"timestamp"`
}

func runStats(cmd *cobra.Command, args []string) error {
	_, db, err := loadConfigAndStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetStats()
	if err != nil {
		return err
	}

	events, err := db.RecentEvents(0, statsEvents)
	if err != nil {
		return err
	}

	since := time.Now().Add(-time.Duration(statsHours) * time.Hour).UnixMilli()
	syntheses, err := db.SynthesesSince(since)
	if err != nil {
		return err
	}

	if flagJSON {
		report := statsReport{
			Stats:     stats,
			Events:    events,
			Syntheses: syntheses,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(output.Section("Pipeline"))
	fmt.Printf("\n Total events       %s\n", output.StyleBold.Render(fmt.Sprint(stats.TotalEvents)))
	fmt.Printf(" Total syntheses    %s\n", output.StyleBold.Render(fmt.Sprint(stats.TotalSyntheses)))
	fmt.Printf(" Events (24h)       %s\n", output.StyleBold.Render(fmt.Sprint(stats.RecentEvents24h)))

	if len(syntheses) > 0 {
		fmt.Println(output.Section(fmt.Sprintf("Hourly syntheses (last %dh)", statsHours)))
		for _, s := range syntheses {
			hour := time.UnixMilli(s.HourBucket).Local().Format("Jan 02 15:04")
			fmt.Printf("\n %s  %s %s\n", hour,
				output.StyleBold.Render(s.DominantTheme),
				output.StyleMuted.Render(fmt.Sprintf("(%s, %d events)", s.WorkMode, s.EventCount)))
			fmt.Printf("   %s\n", s.Summary)
		}
	}

	if len(events) > 0 {
		fmt.Println(output.Section("Recent events"))
		for _, e := range events {
			ts := time.UnixMilli(e.Timestamp).Local().Format("15:04:05")
			fmt.Printf(" %s  %-14s %-10s %s\n", ts, e.Source, e.Type,
				output.StyleMuted.Render(truncate(e.ContentSnippet, 60)))
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
