package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
)

// SessionsIndexFile is the side-index filename inside the sessions
// directory, mapping fully-qualified session keys to session IDs.
const SessionsIndexFile = "sessions.json"

// sessionEntry is one value of the sessions.json document.
type sessionEntry struct {
	SessionID string `json:"sessionId"`
}

// SessionIndex is a reloadable lookup from short session key (the log file
// basename) to the fully-qualified session identifier, e.g.
// "agent:main:cron:abc123". Readers always see either the previous map or
// the fully-rebuilt one, never a partial state.
type SessionIndex struct {
	path string
	m    atomic.Pointer[map[string]string]
}

// NewSessionIndex creates an index backed by the sessions.json at path.
// The index starts empty; call Load to populate it.
func NewSessionIndex(path string) *SessionIndex {
	idx := &SessionIndex{path: path}
	empty := make(map[string]string)
	idx.m.Store(&empty)
	return idx
}

// Load re-reads the index file and atomically swaps in the new mapping.
// On any error the prior mapping is retained and the error returned; a
// missing file is treated as an empty index.
func (idx *SessionIndex) Load() error {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			empty := make(map[string]string)
			idx.m.Store(&empty)
			return nil
		}
		return fmt.Errorf("reading session index: %w", err)
	}

	var doc map[string]sessionEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing session index: %w", err)
	}

	// sessions.json maps full key -> {sessionId}; attribution needs the
	// inverse, session ID -> full key.
	m := make(map[string]string, len(doc))
	for fullKey, entry := range doc {
		if entry.SessionID != "" {
			m[entry.SessionID] = fullKey
		}
	}

	idx.m.Store(&m)
	return nil
}

// FullKey returns the fully-qualified session identifier for a short
// session key, if the index knows it.
func (idx *SessionIndex) FullKey(sessionKey string) (string, bool) {
	m := *idx.m.Load()
	fullKey, ok := m[sessionKey]
	return fullKey, ok
}
