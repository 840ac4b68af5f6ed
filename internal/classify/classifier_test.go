package classify

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/exhaust/internal/store"
)

func TestClassifyContent_RuleOrder(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		// "deploy" and "merge" match SHIPPING before "pr" could reach
		// CODING via "code"-free text; rule order decides.
		{"deploy and merge the release PR", ThemeShipping},
		{"fix the crash in the parser", ThemeDebugging},
		{"implement the new widget", ThemeCoding},
		{"lookup the docs for sqlite", ThemeResearch},
		{"restart the gateway on port 8080", ThemeInfrastructure},
		{"aggregat metric roi", ThemeAnalysis},
		{"tweet about it", ThemeCommunication},
		{"zzz remember this", ThemeMemory},
		{"roadmap for q3", ThemePlanning},
		{"ops: all good", ThemeOperations},
		// Debugging keywords outrank everything, even shipping verbs.
		{"deploy failed with an error", ThemeDebugging},
		{"", ThemeOperations},
		{"qqqq zzzz", ThemeOperations},
	}

	for _, tc := range tests {
		if got := ClassifyContent(tc.content); got != tc.want {
			t.Errorf("ClassifyContent(%q) = %s, want %s", tc.content, got, tc.want)
		}
	}
}

func TestClassifyContent_TotalAndDeterministic(t *testing.T) {
	valid := make(map[string]bool, len(Taxonomy))
	for _, theme := range Taxonomy {
		valid[theme] = true
	}

	snippets := []string{
		"deploy and merge the release PR",
		"fix the crash",
		"random noise xyzzy",
		strings.Repeat("a", 1000),
	}
	for _, s := range snippets {
		first := ClassifyContent(s)
		if !valid[first] {
			t.Errorf("ClassifyContent(%q) = %q, not a taxonomy theme", s, first)
		}
		if again := ClassifyContent(s); again != first {
			t.Errorf("ClassifyContent(%q) not deterministic: %s then %s", s, first, again)
		}
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize("", "message"); got != "message recorded" {
		t.Errorf("empty snippet with type = %q, want %q", got, "message recorded")
	}
	if got := Summarize("", ""); got != "Event recorded" {
		t.Errorf("empty snippet without type = %q, want %q", got, "Event recorded")
	}
	if got := Summarize("  line one\nline two  ", "message"); got != "line one line two" {
		t.Errorf("newline handling = %q", got)
	}

	long := strings.Repeat("x", 500)
	if got := Summarize(long, "message"); len(got) != 200 {
		t.Errorf("long snippet summary length = %d, want 200", len(got))
	}
}

func TestClassifier_RunIsIdempotent(t *testing.T) {
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.InsertEvents([]store.Event{
		{SessionKey: "s1", Timestamp: 1000, Type: "message", ContentSnippet: "fix the crash in the parser"},
		{SessionKey: "s1", Timestamp: 2000, Type: "message", ContentSnippet: "deploy and merge the release PR"},
		{SessionKey: "s1", Timestamp: 3000, Type: "heartbeat", ContentSnippet: ""},
	})
	if err != nil {
		t.Fatal(err)
	}

	var progressCalls int
	c := New(db, 2, func(Progress) { progressCalls++ })

	result, err := c.Run()
	if err != nil {
		t.Fatal(err)
	}
	if result.Classified != 3 {
		t.Errorf("classified = %d, want 3", result.Classified)
	}
	if result.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", result.Remaining)
	}
	if progressCalls != 2 {
		t.Errorf("progress calls = %d, want 2 (batch size 2, 3 events)", progressCalls)
	}

	// A second run finds nothing to do and changes nothing.
	result, err = c.Run()
	if err != nil {
		t.Fatal(err)
	}
	if result.Classified != 0 {
		t.Errorf("second run classified = %d, want 0", result.Classified)
	}

	events, err := db.RecentEvents(0, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		in, err := db.InterpretationFor(e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if in == nil {
			t.Fatalf("event %d has no interpretation", e.ID)
		}
		if in.Model != ModelTag {
			t.Errorf("interpretation model = %q, want %q", in.Model, ModelTag)
		}
	}

	// The empty-snippet heartbeat event defaults to OPERATIONS with a
	// typed placeholder summary.
	heartbeat, err := db.InterpretationFor(3)
	if err != nil {
		t.Fatal(err)
	}
	if heartbeat.Theme != ThemeOperations {
		t.Errorf("empty snippet theme = %q, want OPERATIONS", heartbeat.Theme)
	}
	if heartbeat.Summary != "heartbeat recorded" {
		t.Errorf("empty snippet summary = %q, want %q", heartbeat.Summary, "heartbeat recorded")
	}
}
