// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckInCompletedEvent is published when the upstream API confirms a
// check-in handled by this gateway.  It carries enough information for
// downstream consumers (attendance dashboards, the audit log tailer) to
// act without querying the gateway.
type CheckInCompletedEvent struct {
	Station     string  `json:"station"`
	Operator    string  `json:"operator,omitempty"`
	Payload     string  `json:"payload"`
	ScheduleID  *uint64 `json:"schedule_id,omitempty"`
	Message     string  `json:"message"`
	CompletedAt string  `json:"completed_at"`
}
