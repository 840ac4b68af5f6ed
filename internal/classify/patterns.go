// Package classify assigns a behavioral theme to every ingested event using
// deterministic keyword patterns, with no model calls. Classification is a
// pure function of the event's content snippet, so repeated runs over the
// same events always produce the same themes.
package classify

import "regexp"

// Taxonomy themes. The order here is the evaluation order: patterns are
// tried top to bottom and the first match wins, so DEBUGGING outranks
// SHIPPING, SHIPPING outranks CODING, and so on.
const (
	ThemeDebugging      = "DEBUGGING"
	ThemeShipping       = "SHIPPING"
	ThemeCoding         = "CODING"
	ThemeResearch       = "RESEARCH"
	ThemeInfrastructure = "INFRASTRUCTURE"
	ThemeAnalysis       = "ANALYSIS"
	ThemeCommunication  = "COMMUNICATION"
	ThemeMemory         = "MEMORY"
	ThemePlanning       = "PLANNING"
	ThemeOperations     = "OPERATIONS"
)

// Taxonomy lists the ten themes in their declared evaluation order.
var Taxonomy = []string{
	ThemeDebugging,
	ThemeShipping,
	ThemeCoding,
	ThemeResearch,
	ThemeInfrastructure,
	ThemeAnalysis,
	ThemeCommunication,
	ThemeMemory,
	ThemePlanning,
	ThemeOperations,
}

// themePattern pairs a theme with the keyword pattern that selects it.
type themePattern struct {
	theme   string
	pattern *regexp.Regexp
}

// patterns holds the ordered rule list. Keeping the tie-break order in a
// slice (rather than a map) makes it a testable artifact.
var patterns = []themePattern{
	{ThemeDebugging, regexp.MustCompile(`(?i)debug|error|fix|troubleshoot|issue|fail|broken|stack|trace|exception|crash`)},
	{ThemeShipping, regexp.MustCompile(`(?i)ship|deploy|commit|push|release|publish|done|finish|complete|merge|pr\b`)},
	{ThemeCoding, regexp.MustCompile(`(?i)code|script|function|implement|refactor|write|create|build|develop|edit|file`)},
	{ThemeResearch, regexp.MustCompile(`(?i)search|fetch|find|discover|lookup|query|explore|investigate|browse|read`)},
	{ThemeInfrastructure, regexp.MustCompile(`(?i)config|gateway|restart|setup|env|plugin|cache|install|server|port|process`)},
	{ThemeAnalysis, regexp.MustCompile(`(?i)analy|probab|market|eval|summar|aggregat|calculat|roi|metric|stat|report`)},
	{ThemeCommunication, regexp.MustCompile(`(?i)msg|notif|telegram|user|comm|reply|tweet|post|email|chat|send|message`)},
	{ThemeMemory, regexp.MustCompile(`(?i)memory|remember|recall|context|history|session|persist|store|save`)},
	{ThemePlanning, regexp.MustCompile(`(?i)plan|schedule|task|todo|priority|roadmap|next|will|should|goal`)},
	{ThemeOperations, regexp.MustCompile(`(?i)ops|monitor|health|status|check|run|exec|process|manage`)},
}

// ClassifyContent returns the theme for a content snippet. An empty snippet
// or one matching no pattern falls through to OPERATIONS.
func ClassifyContent(content string) string {
	if content == "" {
		return ThemeOperations
	}
	for _, tp := range patterns {
		if tp.pattern.MatchString(content) {
			return tp.theme
		}
	}
	return ThemeOperations
}
