package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the simulation.
type Session struct {
	ID        string
	Width     int
	Height    int
	Ticks     int64
	StartedAt time.Time
	EndedAt   *time.Time
}

// PinchEvent records a pinch engaging or releasing.
type PinchEvent struct {
	ID        int64
	SessionID string
	Hand      string
	Pinched   bool
	Tick      int64
	X         float64
	Y         float64
	CreatedAt time.Time
}

// SessionRepository stores sessions and their pinch events.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. An empty ID is replaced with a fresh UUID.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	sess.StartedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, width, height, ticks, started_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Width, sess.Height, sess.Ticks, sess.StartedAt,
	)
	return err
}

// Finish stamps the end time and final tick count on a session.
func (r *SessionRepository) Finish(id string, ticks int64) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ticks = ?, ended_at = ? WHERE id = ?`,
		ticks, time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, width, height, ticks, started_at, ended_at FROM sessions WHERE id = ?`,
		id,
	)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns up to limit sessions, newest first. A limit <= 0 means all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, width, height, ticks, started_at, ended_at
		 FROM sessions ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and its events.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddEvents inserts pinch events in a single transaction.
func (r *SessionRepository) AddEvents(events []PinchEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO pinch_events (session_id, hand, pinched, tick, x, y, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range events {
		if _, err := stmt.Exec(e.SessionID, e.Hand, e.Pinched, e.Tick, e.X, e.Y, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Events returns the pinch events of a session in tick order.
func (r *SessionRepository) Events(sessionID string) ([]PinchEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, hand, pinched, tick, x, y, created_at
		 FROM pinch_events WHERE session_id = ? ORDER BY tick, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []PinchEvent
	for rows.Next() {
		var e PinchEvent
		var pinched int
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Hand, &pinched, &e.Tick, &e.X, &e.Y, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Pinched = pinched != 0
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	err := row.Scan(&sess.ID, &sess.Width, &sess.Height, &sess.Ticks, &sess.StartedAt, &ended)
	if err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}
