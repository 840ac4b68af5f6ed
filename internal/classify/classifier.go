package classify

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/exhaust/internal/store"
)

// ModelTag identifies this classifier version in interpretation rows.
const ModelTag = "heuristic-v1"

// summaryLength is how much of the snippet survives into the summary.
const summaryLength = 200

// Progress reports classifier progress after each committed batch.
type Progress struct {
	Processed int
	Total     int
}

// Result summarizes a completed classifier run.
type Result struct {
	Classified int
	Remaining  int64
}

// Classifier assigns themes to events that have no interpretation yet.
type Classifier struct {
	db        *store.DB
	batchSize int
	progress  func(Progress)
}

// New creates a Classifier writing to db, committing batchSize
// interpretations per transaction. progress may be nil.
func New(db *store.DB, batchSize int, progress func(Progress)) *Classifier {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Classifier{db: db, batchSize: batchSize, progress: progress}
}

// Run classifies every unclassified event and verifies completion by
// recounting. Any store error aborts the run; it is safe to rerun since
// work resumes from events that still lack an interpretation.
func (c *Classifier) Run() (*Result, error) {
	events, err := c.db.UnclassifiedEvents()
	if err != nil {
		return nil, fmt.Errorf("selecting unclassified events: %w", err)
	}

	processed := 0
	for start := 0; start < len(events); start += c.batchSize {
		end := start + c.batchSize
		if end > len(events) {
			end = len(events)
		}

		batch := make([]store.Interpretation, 0, end-start)
		for _, e := range events[start:end] {
			batch = append(batch, store.Interpretation{
				ID:         e.ID,
				SessionKey: e.SessionKey,
				Timestamp:  e.Timestamp,
				Summary:    Summarize(e.ContentSnippet, e.Type),
				Theme:      ClassifyContent(e.ContentSnippet),
				Model:      ModelTag,
			})
		}

		if _, err := c.db.InsertInterpretations(batch); err != nil {
			return nil, fmt.Errorf("inserting interpretations: %w", err)
		}

		processed += len(batch)
		if c.progress != nil {
			c.progress(Progress{Processed: processed, Total: len(events)})
		}
	}

	remaining, err := c.db.CountUnclassified()
	if err != nil {
		return nil, fmt.Errorf("counting remaining events: %w", err)
	}

	return &Result{Classified: processed, Remaining: remaining}, nil
}

// Summarize derives a short human-readable summary from a content snippet:
// the first 200 characters with newlines collapsed and whitespace trimmed.
// An empty snippet yields a placeholder naming the event type.
func Summarize(content, eventType string) string {
	if content == "" {
		return placeholder(eventType)
	}

	clean := content
	if len(clean) > summaryLength {
		clean = clean[:summaryLength]
	}
	clean = strings.TrimSpace(strings.ReplaceAll(clean, "\n", " "))
	if clean == "" {
		return placeholder(eventType)
	}
	return clean
}

func placeholder(eventType string) string {
	if eventType == "" || eventType == "unknown" {
		return "Event recorded"
	}
	return eventType + " recorded"
}
