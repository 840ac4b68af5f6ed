package synth

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/exhaust/internal/classify"
	"github.com/blackwell-systems/exhaust/internal/store"
)

// dateLayout is the calendar-day key format for daily syntheses.
const dateLayout = "2006-01-02"

// ModeHours counts how many of a day's hours ran in one work mode.
type ModeHours struct {
	Mode  string
	Hours int
}

// DayReport is the derived content of one daily synthesis.
type DayReport struct {
	Date            string
	Hours           int
	Events          int64
	Themes          []store.ThemeDayTotal
	Modes           []ModeHours
	Summary         string
	Recommendations string
}

// DailyResult summarizes a completed daily synthesizer run.
type DailyResult struct {
	Candidates  int
	Synthesized int
	Days        []DayReport
}

// Daily rolls completed hourly syntheses up into calendar-day summaries.
type Daily struct {
	db       *store.DB
	window   time.Duration
	minHours int
	now      func() time.Time
}

// NewDaily creates a daily synthesizer over db. Days with fewer than
// minHours hourly rows, or outside the trailing window, are skipped.
func NewDaily(db *store.DB, window time.Duration, minHours int) *Daily {
	return &Daily{db: db, window: window, minHours: minHours, now: time.Now}
}

// Run synthesizes every eligible day. A day is eligible when it has enough
// hourly rows, is strictly before the current local calendar day, and has
// no daily row yet. If recompute names a date, that day is re-synthesized
// and its existing row replaced.
func (d *Daily) Run(recompute string) (*DailyResult, error) {
	now := d.now()
	since := now.Add(-d.window).UnixMilli()
	today := now.Local().Format(dateLayout)

	hourly, err := d.db.SynthesesSince(since)
	if err != nil {
		return nil, fmt.Errorf("loading hourly syntheses: %w", err)
	}

	existing, err := d.db.SynthesizedDates()
	if err != nil {
		return nil, fmt.Errorf("loading synthesized dates: %w", err)
	}

	days := groupByDay(hourly)

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	result := &DailyResult{}
	for _, date := range dates {
		agg := days[date]
		if agg.hours() < d.minHours || date >= today {
			continue
		}
		if existing[date] && date != recompute {
			continue
		}
		result.Candidates++

		report := buildReport(date, agg)
		err := d.db.UpsertDailySynthesis(&store.DailySynthesis{
			Date:                date,
			SynthesisCount:      report.Hours,
			TopThemes:           topThemes(report.Themes, 5),
			ProductivitySummary: report.Summary,
			Recommendations:     report.Recommendations,
			CreatedAt:           now.UnixMilli(),
		})
		if err != nil {
			return nil, fmt.Errorf("writing daily synthesis for %s: %w", date, err)
		}
		result.Synthesized++
		result.Days = append(result.Days, report)
	}

	return result, nil
}

// dayAggregate accumulates one calendar day's hourly rows.
type dayAggregate struct {
	events      int64
	themeHours  map[string]int
	themeEvents map[string]int64
	modeHours   map[string]int
}

func (a *dayAggregate) hours() int {
	total := 0
	for _, h := range a.themeHours {
		total += h
	}
	return total
}

// groupByDay buckets hourly syntheses by their local calendar day.
func groupByDay(hourly []store.HourlySynthesis) map[string]*dayAggregate {
	days := make(map[string]*dayAggregate)
	for _, h := range hourly {
		date := time.UnixMilli(h.HourBucket).Local().Format(dateLayout)
		agg := days[date]
		if agg == nil {
			agg = &dayAggregate{
				themeHours:  make(map[string]int),
				themeEvents: make(map[string]int64),
				modeHours:   make(map[string]int),
			}
			days[date] = agg
		}
		agg.events += int64(h.EventCount)
		agg.themeHours[h.DominantTheme]++
		agg.themeEvents[h.DominantTheme] += int64(h.EventCount)
		agg.modeHours[h.WorkMode]++
	}
	return days
}

// buildReport derives the narrative, recommendations, and ordered totals
// for one day.
func buildReport(date string, agg *dayAggregate) DayReport {
	themes := make([]store.ThemeDayTotal, 0, len(agg.themeHours))
	for theme, hours := range agg.themeHours {
		themes = append(themes, store.ThemeDayTotal{
			Theme:  theme,
			Hours:  hours,
			Events: agg.themeEvents[theme],
		})
	}
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Events != themes[j].Events {
			return themes[i].Events > themes[j].Events
		}
		return themes[i].Theme < themes[j].Theme
	})

	modes := make([]ModeHours, 0, len(agg.modeHours))
	for mode, hours := range agg.modeHours {
		modes = append(modes, ModeHours{Mode: mode, Hours: hours})
	}
	sort.Slice(modes, func(i, j int) bool {
		if modes[i].Hours != modes[j].Hours {
			return modes[i].Hours > modes[j].Hours
		}
		return modes[i].Mode < modes[j].Mode
	})

	hours := agg.hours()
	return DayReport{
		Date:            date,
		Hours:           hours,
		Events:          agg.events,
		Themes:          themes,
		Modes:           modes,
		Summary:         Narrative(hours, agg.events, themes, modes),
		Recommendations: Recommendations(hours, themes, modes),
	}
}

// Narrative states the day's active hours, event total, and dominant theme,
// with extra clauses for heavy debugging, low shipping velocity, and
// unusually high activity.
func Narrative(hours int, events int64, themes []store.ThemeDayTotal, modes []ModeHours) string {
	topTheme := classify.ThemeOperations
	if len(themes) > 0 {
		topTheme = themes[0].Theme
	}

	debugRatio := ratioPercent(themeHours(themes, classify.ThemeDebugging), hours)
	shippingRatio := ratioPercent(modeHoursFor(modes, ModeShippingSprint), hours)

	var b strings.Builder
	fmt.Fprintf(&b, "%dh active, %d events. Primary: %s.", hours, events, strings.ToLower(topTheme))
	if debugRatio > 30 {
		fmt.Fprintf(&b, " High debugging load (%d%%).", debugRatio)
	}
	if shippingRatio < 10 && hours > 8 {
		fmt.Fprintf(&b, " Low shipping velocity (%d%%).", shippingRatio)
	}
	if events > 10000 {
		b.WriteString(" High activity day.")
	}
	return b.String()
}

// maintainPace is the sentinel emitted when no recommendation rule fires.
const maintainPace = "Maintain current pace"

// Recommendations evaluates each advisory rule independently and joins the
// applicable ones with "; ". When none apply, the maintain-pace sentinel is
// returned.
func Recommendations(hours int, themes []store.ThemeDayTotal, modes []ModeHours) string {
	if hours == 0 {
		return maintainPace
	}

	debugHours := float64(themeHours(themes, classify.ThemeDebugging))
	codingHours := themeHours(themes, classify.ThemeCoding)
	shippingHours := modeHoursFor(modes, ModeShippingSprint)
	mixedHours := float64(modeHoursFor(modes, ModeMixed))
	total := float64(hours)

	var recs []string
	if debugHours/total > 0.25 {
		recs = append(recs, "Reduce debugging overhead - consider better error handling or testing")
	}
	if float64(shippingHours)/total < 0.1 && hours > 8 {
		recs = append(recs, "Increase shipping focus - more time building, less researching")
	}
	if mixedHours/total > 0.5 {
		recs = append(recs, "Reduce context switching - batch similar tasks together")
	}
	if codingHours > 10 && shippingHours < 2 {
		recs = append(recs, "Code is being written but not shipped - prioritize completion")
	}

	if len(recs) == 0 {
		return maintainPace
	}
	return strings.Join(recs, "; ")
}

func themeHours(themes []store.ThemeDayTotal, theme string) int {
	for _, t := range themes {
		if t.Theme == theme {
			return t.Hours
		}
	}
	return 0
}

func modeHoursFor(modes []ModeHours, mode string) int {
	for _, m := range modes {
		if m.Mode == mode {
			return m.Hours
		}
	}
	return 0
}

func ratioPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func topThemes(themes []store.ThemeDayTotal, n int) []store.ThemeDayTotal {
	if len(themes) > n {
		return themes[:n]
	}
	return themes
}
