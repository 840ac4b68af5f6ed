package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertEvents_DeduplicatesOnSessionAndTimestamp(t *testing.T) {
	db := openTestDB(t)

	events := []Event{
		{SessionKey: "s1", Timestamp: 1000, Model: "m", Type: "message", ContentSnippet: "hello", Status: "ok", Source: "unknown"},
		{SessionKey: "s1", Timestamp: 2000, Model: "m", Type: "message", ContentSnippet: "world", Status: "ok", Source: "unknown"},
	}

	inserted, err := db.InsertEvents(events)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	// Re-inserting the same logical events is a no-op.
	inserted, err = db.InsertEvents(events)
	require.NoError(t, err)
	require.Equal(t, 0, inserted)

	// A different session with the same timestamp is not a duplicate.
	inserted, err = db.InsertEvents([]Event{
		{SessionKey: "s2", Timestamp: 1000, Status: "ok"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	stats, err := db.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.TotalEvents)
}

func TestInsertInterpretations_AtMostOncePerEvent(t *testing.T) {
	db := openTestDB(t)

	_, err := db.InsertEvents([]Event{
		{SessionKey: "s1", Timestamp: 1000, ContentSnippet: "fix the bug"},
	})
	require.NoError(t, err)

	events, err := db.UnclassifiedEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)

	in := Interpretation{
		ID:         events[0].ID,
		SessionKey: "s1",
		Timestamp:  1000,
		Summary:    "fix the bug",
		Theme:      "DEBUGGING",
		Model:      "heuristic-v1",
	}

	n, err := db.InsertInterpretations([]Interpretation{in})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// A second interpretation for the same event is dropped, even with a
	// different theme.
	in.Theme = "CODING"
	n, err = db.InsertInterpretations([]Interpretation{in})
	require.NoError(t, err)
	require.Equal(t, 0, n)

	got, err := db.InterpretationFor(events[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "DEBUGGING", got.Theme)

	remaining, err := db.CountUnclassified()
	require.NoError(t, err)
	require.EqualValues(t, 0, remaining)
}

func TestRecentEvents_OrderAndLimit(t *testing.T) {
	db := openTestDB(t)

	_, err := db.InsertEvents([]Event{
		{SessionKey: "s1", Timestamp: 1000},
		{SessionKey: "s1", Timestamp: 3000},
		{SessionKey: "s1", Timestamp: 2000},
	})
	require.NoError(t, err)

	events, err := db.RecentEvents(0, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.EqualValues(t, 3000, events[0].Timestamp)
	require.EqualValues(t, 2000, events[1].Timestamp)

	events, err = db.RecentEvents(2000, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.EqualValues(t, 3000, events[0].Timestamp)
}

// seedClassifiedHour inserts n classified events with the given theme into
// the hour starting at bucket.
func seedClassifiedHour(t *testing.T, db *DB, session string, bucket int64, theme string, n int) {
	t.Helper()
	var events []Event
	for i := 0; i < n; i++ {
		events = append(events, Event{
			SessionKey: session,
			Timestamp:  bucket + int64(i)*1000,
		})
	}
	inserted, err := db.InsertEvents(events)
	require.NoError(t, err)
	require.Equal(t, n, inserted)

	unclassified, err := db.UnclassifiedEvents()
	require.NoError(t, err)

	var batch []Interpretation
	for _, e := range unclassified {
		batch = append(batch, Interpretation{
			ID: e.ID, SessionKey: e.SessionKey, Timestamp: e.Timestamp,
			Summary: "x", Theme: theme, Model: "heuristic-v1",
		})
	}
	_, err = db.InsertInterpretations(batch)
	require.NoError(t, err)
}

func TestEligibleHours_ThresholdAndExclusion(t *testing.T) {
	db := openTestDB(t)

	bucket := HourBucket(time.Now().Add(-2 * time.Hour).UnixMilli())
	seedClassifiedHour(t, db, "s1", bucket, "CODING", 5)
	seedClassifiedHour(t, db, "s2", bucket-3600000, "CODING", 4) // below threshold

	hours, err := db.EligibleHours(0, 5)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	require.Equal(t, bucket, hours[0].HourBucket)
	require.Equal(t, 5, hours[0].EventCount)

	// Once synthesized, the hour stops being eligible.
	inserted, err := db.InsertHourlySynthesis(&HourlySynthesis{
		HourBucket: bucket, EventCount: 5, Summary: "s",
		DominantTheme: "CODING", WorkMode: "shipping_sprint", CreatedAt: time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	require.True(t, inserted)

	hours, err = db.EligibleHours(0, 5)
	require.NoError(t, err)
	require.Empty(t, hours)
}

func TestInsertHourlySynthesis_Immutable(t *testing.T) {
	db := openTestDB(t)

	s := &HourlySynthesis{
		HourBucket: 7200000, EventCount: 10, Summary: "first",
		DominantTheme: "CODING",
		ThemeBreakdown: []ThemeCount{
			{Theme: "CODING", Count: 7},
			{Theme: "DEBUGGING", Count: 3},
		},
		WorkMode: "shipping_sprint", CreatedAt: 1,
	}

	inserted, err := db.InsertHourlySynthesis(s)
	require.NoError(t, err)
	require.True(t, inserted)

	s.Summary = "second"
	inserted, err = db.InsertHourlySynthesis(s)
	require.NoError(t, err)
	require.False(t, inserted)

	rows, err := db.SynthesesSince(0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "first", rows[0].Summary)
	require.Equal(t, []ThemeCount{{Theme: "CODING", Count: 7}, {Theme: "DEBUGGING", Count: 3}}, rows[0].ThemeBreakdown)
}

func TestUpsertDailySynthesis_Replaces(t *testing.T) {
	db := openTestDB(t)

	d := &DailySynthesis{
		Date: "2026-08-30", SynthesisCount: 6,
		TopThemes:           []ThemeDayTotal{{Theme: "CODING", Hours: 4, Events: 400}},
		ProductivitySummary: "6h active",
		Recommendations:     "Maintain current pace",
		CreatedAt:           1,
	}
	require.NoError(t, db.UpsertDailySynthesis(d))

	// A recompute with fresh hourly data overwrites the row.
	d.SynthesisCount = 8
	d.ProductivitySummary = "8h active"
	require.NoError(t, db.UpsertDailySynthesis(d))

	days, err := db.DailySyntheses(10)
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, 8, days[0].SynthesisCount)
	require.Equal(t, "8h active", days[0].ProductivitySummary)

	dates, err := db.SynthesizedDates()
	require.NoError(t, err)
	require.True(t, dates["2026-08-30"])
}

func TestHourBucket(t *testing.T) {
	require.EqualValues(t, 3600000, HourBucket(3600000))
	require.EqualValues(t, 3600000, HourBucket(3600001))
	require.EqualValues(t, 3600000, HourBucket(7199999))
	require.EqualValues(t, 7200000, HourBucket(7200000))
}
