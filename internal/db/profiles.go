package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gesturelab/motionpipe/internal/config"
)

// TuningProfile is a named, persisted parameter set. Config holds only
// the fields the profile overrides; unset fields fall back to defaults
// when the profile is applied.
type TuningProfile struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Config      config.TuningConfig `json:"config"`
	Active      bool                `json:"active"`
	CreatedAt   int64               `json:"created_at"`
	UpdatedAt   int64               `json:"updated_at"`
}

const profileColumns = `id, name, description, config_json, is_active, created_unix, updated_unix`

// scanProfile reads one profile row. The scan callback abstracts over
// sql.Row and sql.Rows.
func scanProfile(scan func(dest ...interface{}) error) (*TuningProfile, error) {
	var p TuningProfile
	var configJSON string
	var active int
	err := scan(&p.ID, &p.Name, &p.Description, &configJSON, &active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(configJSON), &p.Config); err != nil {
		return nil, fmt.Errorf("failed to decode profile config: %w", err)
	}
	p.Active = active == 1
	return &p, nil
}

// ListProfiles returns all tuning profiles in creation order.
func (db *DB) ListProfiles() ([]TuningProfile, error) {
	query := `SELECT ` + profileColumns + `
	          FROM tuning_profiles
	          ORDER BY created_unix ASC, id ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []TuningProfile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// GetProfile returns a single profile by ID, or nil if it does not exist.
func (db *DB) GetProfile(id int) (*TuningProfile, error) {
	query := `SELECT ` + profileColumns + `
	          FROM tuning_profiles
	          WHERE id = ?`

	p, err := scanProfile(db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

// GetProfileByName returns a single profile by name, or nil if it does
// not exist.
func (db *DB) GetProfileByName(name string) (*TuningProfile, error) {
	query := `SELECT ` + profileColumns + `
	          FROM tuning_profiles
	          WHERE name = ?`

	p, err := scanProfile(db.QueryRow(query, name).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by name: %w", err)
	}

	return p, nil
}

// GetActiveProfile returns the currently active profile, or nil if no
// profile is active.
func (db *DB) GetActiveProfile() (*TuningProfile, error) {
	query := `SELECT ` + profileColumns + `
	          FROM tuning_profiles
	          WHERE is_active = 1
	          LIMIT 1`

	p, err := scanProfile(db.QueryRow(query).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	return p, nil
}

// CreateProfile inserts a new profile and fills in the generated ID and
// timestamps. The profile's config must validate.
func (db *DB) CreateProfile(p *TuningProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("invalid profile config: %w", err)
	}

	configJSON, err := json.Marshal(&p.Config)
	if err != nil {
		return fmt.Errorf("failed to encode profile config: %w", err)
	}

	query := `INSERT INTO tuning_profiles (name, description, config_json)
	          VALUES (?, ?, ?)`

	result, err := db.Exec(query, p.Name, p.Description, string(configJSON))
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	created, err := db.GetProfile(int(id))
	if err != nil {
		return err
	}
	*p = *created

	return nil
}

// UpdateProfile updates an existing profile's name, description and
// config. The active flag is managed through SetActiveProfile.
func (db *DB) UpdateProfile(p *TuningProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("invalid profile config: %w", err)
	}

	configJSON, err := json.Marshal(&p.Config)
	if err != nil {
		return fmt.Errorf("failed to encode profile config: %w", err)
	}

	query := `UPDATE tuning_profiles
	          SET name = ?, description = ?, config_json = ?,
	              updated_unix = strftime('%s', 'now')
	          WHERE id = ?`

	result, err := db.Exec(query, p.Name, p.Description, string(configJSON), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("tuning profile with ID %d not found", p.ID)
	}

	return nil
}

// DeleteProfile deletes a profile.
func (db *DB) DeleteProfile(id int) error {
	query := `DELETE FROM tuning_profiles WHERE id = ?`

	result, err := db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("tuning profile with ID %d not found", id)
	}

	return nil
}

// SetActiveProfile marks one profile active and clears the flag on all
// others in the same transaction, so at most one profile is ever active.
func (db *DB) SetActiveProfile(id int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE tuning_profiles
	                        SET is_active = 1, updated_unix = strftime('%s', 'now')
	                        WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to activate profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tuning profile with ID %d not found", id)
	}

	if _, err := tx.Exec(`UPDATE tuning_profiles
	                      SET is_active = 0
	                      WHERE id != ? AND is_active = 1`, id); err != nil {
		return fmt.Errorf("failed to deactivate other profiles: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}

	return nil
}
