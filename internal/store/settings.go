package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// forcePrefix namespaces persisted force magnitudes in the settings table.
const forcePrefix = "force."

// SettingsRepository reads and writes key/value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
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

// All returns every stored setting.
func (r *SettingsRepository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		settings[k] = v
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Forces returns the persisted force magnitudes keyed by force name.
func (r *SettingsRepository) Forces() (map[string]float64, error) {
	rows, err := r.db.Query(
		`SELECT key, value FROM settings WHERE key LIKE ? ORDER BY key`,
		forcePrefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forces := make(map[string]float64)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", k, err)
		}
		forces[k[len(forcePrefix):]] = f
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return forces, nil
}

// SaveForces persists the given magnitudes in a single transaction.
func (r *SettingsRepository) SaveForces(forces map[string]float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for name, f := range forces {
		if _, err := stmt.Exec(forcePrefix+name, strconv.FormatFloat(f, 'g', -1, 64), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}
