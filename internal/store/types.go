// Package store provides SQLite database access for the exhaust event
// pipeline: raw events, their interpretations, and the hourly and daily
// synthesis rollups.
package store

// Event represents one ingested, attributed, deduplicated log line.
// The (SessionKey, Timestamp) pair is unique; a second line with the same
// session and timestamp is a duplicate and is dropped at insert time.
type Event struct {
	ID             int64  `json:"id"`
	SessionKey     string `json:"sessionKey"`
	Timestamp      int64  `json:"timestamp"` // epoch milliseconds
	Model          string `json:"model"`
	Type           string `json:"type"`
	ContentSnippet string `json:"contentSnippet"`
	Status         string `json:"status"`
	Source         string `json:"source"`
}

// Interpretation is the heuristic classification result for one event.
// Its ID is the classified event's ID; at most one exists per event.
type Interpretation struct {
	ID         int64  `json:"id"`
	SessionKey string `json:"sessionKey"`
	Timestamp  int64  `json:"timestamp"`
	Summary    string `json:"summary"`
	Theme      string `json:"theme"`
	Model      string `json:"model"`
}

// ThemeCount is one entry of an hour's theme breakdown, most frequent first.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// HourlySynthesis aggregates all interpretations whose event falls within
// one clock hour. HourBucket is the hour start in epoch milliseconds and is
// the row's unique key; a synthesized hour is immutable.
type HourlySynthesis struct {
	HourBucket     int64        `json:"hourBucket"`
	EventCount     int          `json:"eventCount"`
	Summary        string       `json:"summary"`
	DominantTheme  string       `json:"dominantTheme"`
	ThemeBreakdown []ThemeCount `json:"themeBreakdown"`
	WorkMode       string       `json:"workMode"`
	CreatedAt      int64        `json:"createdAt"`
}

// ThemeDayTotal aggregates one theme's contribution to a day: how many
// hourly rows it dominated and how many events those hours carried.
type ThemeDayTotal struct {
	Theme  string `json:"theme"`
	Hours  int    `json:"hours"`
	Events int64  `json:"events"`
}

// DailySynthesis aggregates the hourly syntheses of one local calendar day.
// Date (YYYY-MM-DD) is the unique key. Unlike the other aggregates, a day
// may be recomputed and replaced when its hourly data changes.
type DailySynthesis struct {
	ID                  int64           `json:"id"`
	Date                string          `json:"date"`
	SynthesisCount      int             `json:"synthesisCount"`
	TopThemes           []ThemeDayTotal `json:"topThemes"`
	ProductivitySummary string          `json:"productivitySummary"`
	Recommendations     string          `json:"recommendations"`
	CreatedAt           int64           `json:"createdAt"`
}

// Stats holds the aggregate counts exposed to the query layer.
type Stats struct {
	TotalEvents     int64 `json:"totalEvents"`
	TotalSyntheses  int64 `json:"totalSyntheses"`
	RecentEvents24h int64 `json:"recentEvents24h"`
}

// HourCandidate is an hour bucket eligible for synthesis: it has at least
// the minimum number of classified events and no synthesis row yet.
type HourCandidate struct {
	HourBucket int64
	EventCount int
}
