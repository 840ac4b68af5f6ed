package ingest

import "strings"

// Event source attributions.
const (
	SourceHeartbeat = "heartbeat"
	SourceCron      = "cron"
	SourceSubagent  = "subagent"
	SourceUser      = "user_initiated"
	SourceUnknown   = "unknown"
)

// AttributionInput carries everything a source rule may inspect: the short
// session key, the raw snippet text, and the parsed record (nil when the
// line did not parse).
type AttributionInput struct {
	SessionKey string
	Snippet    string
	Record     *Record
}

// SourceRule is one step of the attribution decision sequence. Apply
// returns the attributed source and true when the rule matches.
type SourceRule struct {
	Name  string
	Apply func(in AttributionInput) (string, bool)
}

// Attributor decides what triggered an event. Rules are evaluated in fixed
// priority order and the first match wins; the order is part of the
// contract (an inline cron tag beats the session index, for example).
type Attributor struct {
	// OperatorID is the operator's messaging identifier; its appearance
	// anywhere in the snippet marks the event user-initiated.
	OperatorID string

	// MainSessionKey is the fully-qualified key of the canonical main
	// interactive session.
	MainSessionKey string

	// Index resolves short session keys to fully-qualified identifiers.
	Index *SessionIndex

	rules []SourceRule
}

// NewAttributor builds an attributor with the standard rule sequence.
func NewAttributor(operatorID, mainSessionKey string, index *SessionIndex) *Attributor {
	a := &Attributor{
		OperatorID:     operatorID,
		MainSessionKey: mainSessionKey,
		Index:          index,
	}
	a.rules = []SourceRule{
		{Name: "heartbeat-marker", Apply: a.matchHeartbeat},
		{Name: "inline-tag", Apply: a.matchInlineTag},
		{Name: "operator-id", Apply: a.matchOperatorID},
		{Name: "session-index", Apply: a.matchSessionIndex},
		{Name: "user-message", Apply: a.matchUserMessage},
	}
	return a
}

// Rules exposes the ordered rule list.
func (a *Attributor) Rules() []SourceRule {
	return a.rules
}

// Source runs the rule sequence and returns the first match, or "unknown"
// when no rule applies.
func (a *Attributor) Source(in AttributionInput) string {
	for _, r := range a.rules {
		if source, ok := r.Apply(in); ok {
			return source
		}
	}
	return SourceUnknown
}

func (a *Attributor) matchHeartbeat(in AttributionInput) (string, bool) {
	lower := strings.ToLower(in.Snippet)
	if strings.Contains(lower, "read heartbeat.md if it exists") || strings.Contains(lower, "heartbeat_ok") {
		return SourceHeartbeat, true
	}
	return "", false
}

func (a *Attributor) matchInlineTag(in AttributionInput) (string, bool) {
	if strings.Contains(in.Snippet, "[cron:") {
		return SourceCron, true
	}
	if strings.Contains(in.Snippet, "[subagent:") {
		return SourceSubagent, true
	}
	return "", false
}

func (a *Attributor) matchOperatorID(in AttributionInput) (string, bool) {
	if a.OperatorID != "" && strings.Contains(in.Snippet, a.OperatorID) {
		return SourceUser, true
	}
	return "", false
}

func (a *Attributor) matchSessionIndex(in AttributionInput) (string, bool) {
	if a.Index == nil {
		return "", false
	}
	fullKey, ok := a.Index.FullKey(in.SessionKey)
	if !ok {
		return "", false
	}
	switch {
	case fullKey == a.MainSessionKey:
		return SourceUser, true
	case strings.Contains(fullKey, ":cron:"):
		return SourceCron, true
	case strings.Contains(fullKey, ":subagent:"):
		return SourceSubagent, true
	}
	return "", false
}

func (a *Attributor) matchUserMessage(in AttributionInput) (string, bool) {
	if in.Record != nil && in.Record.Type == "message" && in.Record.Message != nil && in.Record.Message.Role == "user" {
		return SourceUser, true
	}
	return "", false
}
