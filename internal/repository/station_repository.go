// This file defines the Station model and its repository.  Stations are
// the networked scanner devices allowed to post decoded payloads to
// this gateway; each presents an API key that is stored only as a
// bcrypt hash.
package repository

import (
	"context"
	"database/sql"

	"golang.org/x/crypto/bcrypt"
)

// Station is a registered scanner device.  KeyHash holds the bcrypt
// hash of the device's API key; the raw key is shown once at
// provisioning time and never stored.
type Station struct {
	ID        uint64
	Name      string
	KeyHash   string
	IsActive  bool
	CreatedAt string
}

// StationRepo manages persistence for stations.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo constructs a StationRepo with the given DB handle.
func NewStationRepo(db *sql.DB) *StationRepo {
	return &StationRepo{db: db}
}

// Create inserts a station row with the given bcrypt key hash.
func (r *StationRepo) Create(ctx context.Context, s *Station) error {
	const q = `INSERT INTO stations (name, key_hash, is_active) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.KeyHash, s.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByName retrieves an active station by name.  Returns
// ErrStationNotFound when no active row matches.
func (r *StationRepo) GetByName(ctx context.Context, name string) (*Station, error) {
	const q = `SELECT id, name, key_hash, is_active, created_at FROM stations WHERE name = ? AND is_active = 1`
	var s Station
	err := r.db.QueryRowContext(ctx, q, name).Scan(&s.ID, &s.Name, &s.KeyHash, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// VerifyKey checks a presented API key against the stored hash for the
// named station.  Returns ErrStationNotFound for unknown stations and
// ErrBadStationKey on a mismatch.
func (r *StationRepo) VerifyKey(ctx context.Context, name, key string) (*Station, error) {
	s, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(s.KeyHash), []byte(key)) != nil {
		return nil, ErrBadStationKey
	}
	return s, nil
}

// HashKey produces the bcrypt hash stored for a station API key.  Used
// by the provisioning path when a station is registered.
func HashKey(key string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
