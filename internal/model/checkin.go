// Package model defines the wire-level types exchanged with the upstream
// booking API and the types the gateway derives from them.  These mirror
// the upstream JSON contracts exactly; fields the gateway never reads are
// omitted rather than carried along.
package model

import "encoding/json"

// CheckInRequest is the body of POST /bookings/checkin-by-qr.  QRCode is
// the raw payload decoded from the badge; ScheduleID is attached when the
// coordinator managed to resolve one and omitted otherwise, leaving the
// decision to the server.
type CheckInRequest struct {
	QRCode     string  `json:"qr_code"`
	ScheduleID *uint64 `json:"schedule_id,omitempty"`
}

// CheckInResult is the upstream response to a check-in attempt.  Success
// distinguishes an accepted check-in from an application-level rejection
// (invalid code, already checked in, wrong schedule); Message is shown to
// the operator verbatim.  Data is opaque to the gateway and forwarded
// untouched to the result callback.
type CheckInResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Severity classifies an operator-facing overlay message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)
