package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/exhaust/internal/classify"
	"github.com/blackwell-systems/exhaust/internal/store"
)

// seedSynthHour inserts one hourly synthesis row directly.
func seedSynthHour(t *testing.T, db *store.DB, bucket int64, theme, mode string, events int) {
	t.Helper()
	inserted, err := db.InsertHourlySynthesis(&store.HourlySynthesis{
		HourBucket:    bucket,
		EventCount:    events,
		Summary:       "x",
		DominantTheme: theme,
		ThemeBreakdown: []store.ThemeCount{
			{Theme: theme, Count: events},
		},
		WorkMode:  mode,
		CreatedAt: bucket,
	})
	require.NoError(t, err)
	require.True(t, inserted)
}

// localHour returns the epoch-ms bucket for hour h of the given local day.
func localHour(day time.Time, h int) int64 {
	return time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.Local).UnixMilli()
}

func TestDaily_DebugHeavyDay(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	day := now.AddDate(0, 0, -1)

	// 10 active hours: 6 coding, 4 debugging.
	for h := 0; h < 6; h++ {
		seedSynthHour(t, db, localHour(day, h), classify.ThemeCoding, ModeShippingSprint, 100)
	}
	for h := 6; h < 10; h++ {
		seedSynthHour(t, db, localHour(day, h), classify.ThemeDebugging, ModeDebuggingSession, 100)
	}

	d := NewDaily(db, 7*24*time.Hour, 4)
	d.now = func() time.Time { return now }

	result, err := d.Run("")
	require.NoError(t, err)
	require.Equal(t, 1, result.Candidates)
	require.Equal(t, 1, result.Synthesized)

	days, err := db.DailySyntheses(10)
	require.NoError(t, err)
	require.Len(t, days, 1)

	got := days[0]
	require.Equal(t, day.Format("2006-01-02"), got.Date)
	require.Equal(t, 10, got.SynthesisCount)
	require.Equal(t, "10h active, 1000 events. Primary: coding. High debugging load (40%).", got.ProductivitySummary)
	require.Equal(t, "Reduce debugging overhead - consider better error handling or testing", got.Recommendations)
	require.Equal(t, []store.ThemeDayTotal{
		{Theme: classify.ThemeCoding, Hours: 6, Events: 600},
		{Theme: classify.ThemeDebugging, Hours: 4, Events: 400},
	}, got.TopThemes)
}

func TestDaily_MaintainPaceSentinel(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	day := now.AddDate(0, 0, -1)

	for h := 0; h < 6; h++ {
		seedSynthHour(t, db, localHour(day, h), classify.ThemeCoding, ModeShippingSprint, 50)
	}

	d := NewDaily(db, 7*24*time.Hour, 4)
	d.now = func() time.Time { return now }

	_, err := d.Run("")
	require.NoError(t, err)

	days, err := db.DailySyntheses(10)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, "Maintain current pace", days[0].Recommendations)
	require.Equal(t, "6h active, 300 events. Primary: coding.", days[0].ProductivitySummary)
}

func TestDaily_EligibilityRules(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	// Today's hours must never be synthesized, however many there are.
	for h := 0; h < 6; h++ {
		seedSynthHour(t, db, localHour(now, h), classify.ThemeCoding, ModeShippingSprint, 50)
	}
	// A past day below the minimum hour count is skipped.
	for h := 0; h < 3; h++ {
		seedSynthHour(t, db, localHour(yesterday, h), classify.ThemeCoding, ModeShippingSprint, 50)
	}

	d := NewDaily(db, 7*24*time.Hour, 4)
	d.now = func() time.Time { return now }

	result, err := d.Run("")
	require.NoError(t, err)
	require.Equal(t, 0, result.Candidates)
	require.Equal(t, 0, result.Synthesized)
}

func TestDaily_RerunAndRecompute(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	day := now.AddDate(0, 0, -1)

	for h := 0; h < 5; h++ {
		seedSynthHour(t, db, localHour(day, h), classify.ThemeCoding, ModeShippingSprint, 100)
	}

	d := NewDaily(db, 7*24*time.Hour, 4)
	d.now = func() time.Time { return now }

	first, err := d.Run("")
	require.NoError(t, err)
	require.Equal(t, 1, first.Synthesized)

	// Without --recompute a synthesized day is left alone.
	second, err := d.Run("")
	require.NoError(t, err)
	require.Equal(t, 0, second.Candidates)

	// New hourly data for the day arrives; an explicit recompute
	// replaces the existing row.
	seedSynthHour(t, db, localHour(day, 5), classify.ThemeDebugging, ModeDebuggingSession, 100)

	date := day.Format("2006-01-02")
	third, err := d.Run(date)
	require.NoError(t, err)
	require.Equal(t, 1, third.Synthesized)

	days, err := db.DailySyntheses(10)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, 6, days[0].SynthesisCount)
}

func TestNarrative_Clauses(t *testing.T) {
	themes := []store.ThemeDayTotal{
		{Theme: classify.ThemeResearch, Hours: 8, Events: 9000},
		{Theme: classify.ThemeDebugging, Hours: 1, Events: 2000},
	}
	modes := []ModeHours{
		{Mode: ModeResearchDive, Hours: 8},
		{Mode: ModeDebuggingSession, Hours: 1},
	}

	// 9 hours, 11000 events: no debugging clause (11%), shipping at 0%
	// with >8h triggers low velocity, >10000 events triggers high activity.
	got := Narrative(9, 11000, themes, modes)
	want := "9h active, 11000 events. Primary: research. Low shipping velocity (0%). High activity day."
	require.Equal(t, want, got)
}

func TestRecommendations_AllRules(t *testing.T) {
	// 12 mixed-mode hours of coding: context switching plus
	// unshipped-code rules fire together.
	themes := []store.ThemeDayTotal{
		{Theme: classify.ThemeCoding, Hours: 11, Events: 1100},
		{Theme: classify.ThemeMemory, Hours: 1, Events: 10},
	}
	modes := []ModeHours{
		{Mode: ModeMixed, Hours: 12},
	}

	got := Recommendations(12, themes, modes)
	want := "Increase shipping focus - more time building, less researching; " +
		"Reduce context switching - batch similar tasks together; " +
		"Code is being written but not shipped - prioritize completion"
	require.Equal(t, want, got)
}
