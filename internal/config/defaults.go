// Package config provides configuration loading and defaults for exhaust.
package config

// DefaultSessionsDir is the default directory of per-session JSONL logs.
const DefaultSessionsDir = "~/.openclaw/agents/main/sessions"

// DefaultConfigDir is the default location for exhaust configuration.
const DefaultConfigDir = "~/.config/exhaust"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "agent_events.db"

// DefaultOperatorID is the operator messaging identifier whose appearance
// in a log line marks the event user-initiated.
const DefaultOperatorID = "7969283458"

// DefaultMainSessionKey is the fully-qualified key of the canonical main
// interactive session.
const DefaultMainSessionKey = "agent:main:main"

// DefaultCatchupWindowHours bounds the watcher's startup scan: lines older
// than this are skipped. Fixed policy in the original pipeline, surfaced
// here as a documented default.
const DefaultCatchupWindowHours = 6

// DefaultSynthesisWindowDays is the trailing window for hourly and daily
// synthesis eligibility.
const DefaultSynthesisWindowDays = 7

// DefaultMinEventsPerHour is the minimum classified events for an hour to
// be synthesized.
const DefaultMinEventsPerHour = 5

// DefaultMinHoursPerDay is the minimum hourly rows for a day to be
// synthesized.
const DefaultMinHoursPerDay = 4

// DefaultClassifyBatchSize is how many interpretations the classifier
// commits per transaction.
const DefaultClassifyBatchSize = 1000
