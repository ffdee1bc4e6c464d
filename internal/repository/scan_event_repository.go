// This file defines the ScanEvent model and its repository.  One row is
// written per terminal scan outcome, successful or not; the rows feed
// the operator event list and end-of-day reconciliation against the
// central booking system.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
)

// ScanEvent is the audit record of one scan handled by this gateway.
// Payload is the raw decoded string; ScheduleID is the scope the
// coordinator resolved (NULL when the check-in was submitted unscoped).
// Status holds one of the coordinator's terminal status strings and
// Message the operator-facing text that was displayed.
type ScanEvent struct {
	ID         uint64  `json:"id"`
	Station    string  `json:"station"`
	Operator   string  `json:"operator,omitempty"`
	Payload    string  `json:"payload"`
	ScheduleID *uint64 `json:"schedule_id,omitempty"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"created_at"` // DB timestamp "YYYY-MM-DD HH:MM:SS" (UTC)
}

// ScanEventRepo manages persistence for scan events.
type ScanEventRepo struct {
	db *sql.DB
}

// NewScanEventRepo constructs a ScanEventRepo with the given DB handle.
func NewScanEventRepo(db *sql.DB) *ScanEventRepo {
	return &ScanEventRepo{db: db}
}

// Create inserts a new scan event and assigns the generated ID back to
// the struct.  CreatedAt is filled by the database.
func (r *ScanEventRepo) Create(ctx context.Context, e *ScanEvent) error {
	const q = `INSERT INTO scan_events (station, operator, payload, schedule_id, status, message) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Station, e.Operator, e.Payload, e.ScheduleID, e.Status, e.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT created_at FROM scan_events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(&e.CreatedAt)
}

// GetByID retrieves a single scan event.  Returns ErrScanEventNotFound
// when there is no matching row.
func (r *ScanEventRepo) GetByID(ctx context.Context, id uint64) (*ScanEvent, error) {
	const q = `SELECT id, station, operator, payload, schedule_id, status, message, created_at FROM scan_events WHERE id = ?`
	var e ScanEvent
	err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Station, &e.Operator, &e.Payload, &e.ScheduleID, &e.Status, &e.Message, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrScanEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListRecent returns the newest scan events for this gateway, newest
// first, bounded by limit and offset.  Limit is clamped to 200 to keep
// the operator list endpoint cheap.
func (r *ScanEventRepo) ListRecent(ctx context.Context, station string, limit, offset int) ([]ScanEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT id, station, operator, payload, schedule_id, status, message, created_at
	           FROM scan_events WHERE station = ? ORDER BY id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, station, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]ScanEvent, 0, limit)
	for rows.Next() {
		var e ScanEvent
		if err := rows.Scan(&e.ID, &e.Station, &e.Operator, &e.Payload, &e.ScheduleID, &e.Status, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByStatus returns how many events with the given status this
// station has recorded, for the status endpoint's daily tally.
func (r *ScanEventRepo) CountByStatus(ctx context.Context, station, status string) (uint64, error) {
	const q = `SELECT COUNT(*) FROM scan_events WHERE station = ? AND status = ?`
	var n uint64
	if err := r.db.QueryRowContext(ctx, q, station, status).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
