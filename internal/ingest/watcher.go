// Package ingest maintains a live, deduplicated, attributed copy of all
// session activity in the event store. It tails one append-only JSONL log
// per session, derives a timestamp and source for every line, and applies
// each file-change batch as a single transaction.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/exhaust/internal/store"
)

// snippetLength bounds how much of a raw line is persisted.
const snippetLength = 1000

// Config holds the watcher's inputs.
type Config struct {
	// SessionsDir contains one .jsonl log per session plus sessions.json.
	SessionsDir string

	// CatchupWindow bounds the startup scan: lines older than this are
	// skipped.
	CatchupWindow time.Duration

	// OperatorID and MainSessionKey feed source attribution.
	OperatorID     string
	MainSessionKey string

	// Logf receives aggregate status lines. The watcher logs nothing per
	// line in steady state. Nil discards.
	Logf func(format string, args ...any)
}

// FileStats counts the per-record outcomes of processing one batch of
// lines. Every candidate line lands in exactly one bucket; a malformed
// line never aborts its batch.
type FileStats struct {
	Inserted   int
	Duplicates int
	SkippedOld int
	Malformed  int
}

func (s *FileStats) add(other FileStats) {
	s.Inserted += other.Inserted
	s.Duplicates += other.Duplicates
	s.SkippedOld += other.SkippedOld
	s.Malformed += other.Malformed
}

// Watcher tails session logs and writes events to the store.
type Watcher struct {
	db    *store.DB
	cfg   Config
	index *SessionIndex
	attr  *Attributor
	logf  func(format string, args ...any)
}

// NewWatcher creates a watcher over cfg.SessionsDir writing to db.
func NewWatcher(db *store.DB, cfg Config) *Watcher {
	index := NewSessionIndex(filepath.Join(cfg.SessionsDir, SessionsIndexFile))
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Watcher{
		db:    db,
		cfg:   cfg,
		index: index,
		attr:  NewAttributor(cfg.OperatorID, cfg.MainSessionKey, index),
		logf:  logf,
	}
}

// ScanExisting performs the startup catch-up pass: every existing session
// log is read in full, but only lines within the trailing catch-up window
// are considered for insertion. Returns aggregate stats and the number of
// files scanned.
func (w *Watcher) ScanExisting() (FileStats, int, error) {
	entries, err := os.ReadDir(w.cfg.SessionsDir)
	if err != nil {
		return FileStats{}, 0, err
	}

	var stats FileStats
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		stats.add(w.processFile(filepath.Join(w.cfg.SessionsDir, entry.Name()), true))
		files++
	}
	return stats, files, nil
}

// Run loads the session index, performs the startup scan, then blocks
// handling file-change notifications until ctx is cancelled. Individual
// file or line failures are absorbed; the loop runs until the process
// stops.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.index.Load(); err != nil {
		w.logf("session index load failed: %v", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.SessionsDir); err != nil {
		return err
	}

	stats, files, err := w.ScanExisting()
	if err != nil {
		w.logf("startup scan failed: %v", err)
	} else {
		w.logf("watching %s: scanned %d files, %d events inserted, %d duplicate, %d outside window, %d malformed",
			w.cfg.SessionsDir, files, stats.Inserted, stats.Duplicates, stats.SkippedOld, stats.Malformed)
	}

	// Notifications are handled one at a time on this goroutine, so a
	// file's batch always completes before its next change is processed.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logf("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if filepath.Base(ev.Name) == SessionsIndexFile {
		if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
			if err := w.index.Load(); err != nil {
				// Prior mapping stays in effect; attribution falls
				// through to its later rules.
				w.logf("session index reload failed: %v", err)
			}
		}
		return
	}

	if !strings.HasSuffix(ev.Name, ".jsonl") {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		// A new file gets the windowed full scan.
		w.processFile(ev.Name, true)
	case ev.Op&fsnotify.Write != 0:
		// Logs are append-only: only the newest line can be new.
		w.processFile(ev.Name, false)
	}
}

// processFile reads one session log and inserts its candidate lines as a
// single transaction. When initial is true every line within the catch-up
// window is considered; otherwise only the last line is re-read.
func (w *Watcher) processFile(path string, initial bool) FileStats {
	var stats FileStats

	info, err := os.Stat(path)
	if err != nil {
		return stats
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return stats
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return stats
	}

	lines := strings.Split(content, "\n")
	if !initial {
		lines = lines[len(lines)-1:]
	}

	sessionKey := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	cutoff := time.Now().Add(-w.cfg.CatchupWindow).UnixMilli()

	var batch []store.Event
	for _, line := range lines {
		if line == "" {
			continue
		}

		rec, err := parseRecord(line)
		if err != nil {
			// One malformed line must not block the rest.
			stats.Malformed++
			continue
		}

		timestamp := rec.DerivedTimestamp(info.ModTime())
		if initial && timestamp < cutoff {
			stats.SkippedOld++
			continue
		}

		snippet := line
		if len(snippet) > snippetLength {
			snippet = snippet[:snippetLength]
		}

		batch = append(batch, store.Event{
			SessionKey:     sessionKey,
			Timestamp:      timestamp,
			Model:          rec.EventModel(),
			Type:           rec.EventType(),
			ContentSnippet: snippet,
			Status:         rec.EventStatus(),
			Source: w.attr.Source(AttributionInput{
				SessionKey: sessionKey,
				Snippet:    snippet,
				Record:     rec,
			}),
		})
	}

	inserted, err := w.db.InsertEvents(batch)
	if err != nil {
		w.logf("inserting batch for %s: %v", sessionKey, err)
		return stats
	}

	stats.Inserted = inserted
	stats.Duplicates = len(batch) - inserted
	return stats
}
