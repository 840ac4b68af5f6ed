// Package synth rolls classified events up into hourly and daily summaries.
// Both synthesizers are batch jobs: they look for time buckets that have
// enough data and no synthesis row yet, compute the aggregate, and insert
// it. Interrupted runs are safe to resume because already-present buckets
// are skipped.
package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/exhaust/internal/classify"
	"github.com/blackwell-systems/exhaust/internal/store"
)

// Work modes derived from an hour's dominant theme.
const (
	ModeShippingSprint   = "shipping_sprint"
	ModeResearchDive     = "research_dive"
	ModeDebuggingSession = "debugging_session"
	ModePlanning         = "planning"
	ModeMaintenance      = "maintenance"
	ModeMixed            = "mixed"
)

// workModes maps a dominant theme to the hour's work mode. Themes absent
// from the table fall through to "mixed".
var workModes = map[string]string{
	classify.ThemeShipping:       ModeShippingSprint,
	classify.ThemeCoding:         ModeShippingSprint,
	classify.ThemeResearch:       ModeResearchDive,
	classify.ThemeDebugging:      ModeDebuggingSession,
	classify.ThemePlanning:       ModePlanning,
	classify.ThemeInfrastructure: ModeMaintenance,
}

// WorkMode returns the work mode for an hour dominated by the given theme.
func WorkMode(dominantTheme string) string {
	if mode, ok := workModes[dominantTheme]; ok {
		return mode
	}
	return ModeMixed
}

// HourlyResult summarizes a completed hourly synthesizer run.
type HourlyResult struct {
	Candidates  int
	Synthesized int
}

// Hourly generates one synthesis row per eligible clock hour.
type Hourly struct {
	db        *store.DB
	window    time.Duration
	minEvents int
	now       func() time.Time
}

// NewHourly creates an hourly synthesizer over db. Hours older than window
// or with fewer than minEvents classified events are skipped.
func NewHourly(db *store.DB, window time.Duration, minEvents int) *Hourly {
	return &Hourly{db: db, window: window, minEvents: minEvents, now: time.Now}
}

// Run synthesizes every eligible hour. Eligibility is driven purely by
// existing data: an hour qualifies once it holds enough classified events
// and has no synthesis row.
func (h *Hourly) Run() (*HourlyResult, error) {
	since := h.now().Add(-h.window).UnixMilli()

	hours, err := h.db.EligibleHours(since, h.minEvents)
	if err != nil {
		return nil, fmt.Errorf("selecting eligible hours: %w", err)
	}

	result := &HourlyResult{Candidates: len(hours)}
	for _, hour := range hours {
		themes, err := h.db.ThemeBreakdown(hour.HourBucket, hour.HourBucket+int64(time.Hour/time.Millisecond))
		if err != nil {
			return nil, fmt.Errorf("theme breakdown for hour %d: %w", hour.HourBucket, err)
		}

		dominant := classify.ThemeOperations
		if len(themes) > 0 {
			dominant = themes[0].Theme
		}

		inserted, err := h.db.InsertHourlySynthesis(&store.HourlySynthesis{
			HourBucket:     hour.HourBucket,
			EventCount:     hour.EventCount,
			Summary:        hourSummary(themes, hour.EventCount),
			DominantTheme:  dominant,
			ThemeBreakdown: themes,
			WorkMode:       WorkMode(dominant),
			CreatedAt:      h.now().UnixMilli(),
		})
		if err != nil {
			return nil, fmt.Errorf("inserting synthesis for hour %d: %w", hour.HourBucket, err)
		}
		if inserted {
			result.Synthesized++
		}
	}

	return result, nil
}

// hourSummary names the top three themes by count and the total event count.
func hourSummary(themes []store.ThemeCount, eventCount int) string {
	top := themes
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, 0, len(top))
	for _, t := range top {
		names = append(names, strings.ToLower(t.Theme))
	}
	return fmt.Sprintf("Processed %d events. Primary focus: %s.", eventCount, strings.Join(names, ", "))
}
