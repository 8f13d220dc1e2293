package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore persists named detector tuning bundles as JSON blobs. The
// schema stays agnostic of the tuning fields so profiles survive config
// evolution.
type ProfileStore struct {
	db *sql.DB
}

// Save inserts or replaces a profile.
func (p *ProfileStore) Save(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("save profile: empty name")
	}
	_, err := p.db.Exec(
		`INSERT INTO profiles (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		name, string(data),
	)
	if err != nil {
		return fmt.Errorf("save profile %q: %w", name, err)
	}
	return nil
}

// Get returns the JSON blob of a profile.
func (p *ProfileStore) Get(name string) ([]byte, error) {
	var data string
	err := p.db.QueryRow(`SELECT data FROM profiles WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", name, err)
	}
	return []byte(data), nil
}

// List returns all profile names, sorted.
func (p *ProfileStore) List() ([]string, error) {
	rows, err := p.db.Query(`SELECT name FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan profile name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a profile. Deleting a missing profile is not an error.
func (p *ProfileStore) Delete(name string) error {
	if _, err := p.db.Exec(`DELETE FROM profiles WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete profile %q: %w", name, err)
	}
	return nil
}
