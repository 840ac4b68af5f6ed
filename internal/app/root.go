// Package app contains the Cobra command tree for exhaust.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/exhaust/internal/config"
	"github.com/blackwell-systems/exhaust/internal/output"
	"github.com/blackwell-systems/exhaust/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "exhaust",
	Short: "Cognitive telemetry for autonomous agent sessions",
	Long: `exhaust ingests append-only agent session logs, classifies every event
into a behavioral theme with fast heuristics, and rolls events up into
hourly and daily summaries of how an agent workforce spends its time.

The pipeline runs strictly forward: watch -> classify -> synthesize -> daily.
Every stage is idempotent on its own output and safe to rerun.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor {
			output.SetNoColor(true)
		} else {
			output.AutoColor()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("exhaust", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  watch       Tail session logs and ingest events")
		fmt.Println("  classify    Heuristically classify unclassified events")
		fmt.Println("  synthesize  Generate missing hourly syntheses")
		fmt.Println("  daily       Generate daily pattern analysis")
		fmt.Println("  stats       Show event and synthesis counts")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/exhaust/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// loadConfigAndStore loads configuration and opens the event store.
func loadConfigAndStore() (*config.Config, *store.DB, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store at %s: %w", cfg.DBPath, err)
	}
	return cfg, db, nil
}
