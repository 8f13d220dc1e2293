package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event is one token emitted on the messaging channel.
type Event struct {
	ID        string
	SessionID string
	Token     string
	CreatedAt time.Time
}

// EventStore records and queries emitted tokens.
type EventStore struct {
	db *sql.DB
}

// Record stores one emitted token under the given session.
func (e *EventStore) Record(sessionID, token string) error {
	_, err := e.db.Exec(
		`INSERT INTO events (id, session_id, token, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), sessionID, token, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// BySession returns all events of a session, oldest first.
func (e *EventStore) BySession(sessionID string) ([]Event, error) {
	rows, err := e.db.Query(
		`SELECT id, session_id, token, created_at FROM events
		 WHERE session_id = ? ORDER BY rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Token, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountByToken aggregates a session's events per token.
func (e *EventStore) CountByToken(sessionID string) (map[string]int, error) {
	rows, err := e.db.Query(
		`SELECT token, COUNT(*) FROM events WHERE session_id = ? GROUP BY token`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var token string
		var n int
		if err := rows.Scan(&token, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[token] = n
	}
	return counts, rows.Err()
}

// Recorder persists every emitted token under one session ID. It implements
// the emit.Emitter interface.
type Recorder struct {
	events    *EventStore
	sessionID string
}

// NewRecorder creates a Recorder with a fresh session ID.
func (s *Store) NewRecorder() *Recorder {
	return &Recorder{events: s.Events(), sessionID: uuid.NewString()}
}

// SessionID returns the recorder's session ID.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Emit records the token. Persistence failures are logged and never reach
// the frame loop.
func (r *Recorder) Emit(token string) {
	if err := r.events.Record(r.sessionID, token); err != nil {
		log.Printf("event recorder: %v", err)
	}
}
