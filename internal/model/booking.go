package model

// Booking is the subset of GET /bookings/{id} the coordinator needs for
// schedule resolution.  A booking may carry the schedule id directly, as
// a nested schedule object, or only indirectly as a date plus program id
// that the coordinator resolves through the schedule search.
type Booking struct {
	ID         uint64    `json:"id"`
	ScheduleID *uint64   `json:"schedule_id,omitempty"`
	Schedule   *Schedule `json:"schedule,omitempty"`
	Date       string    `json:"date,omitempty"`       // "YYYY-MM-DD"
	ProgramID  *uint64   `json:"program_id,omitempty"`
}

// Schedule is one showing of a program in a hall.  Only the id is read
// by the gateway; the remaining fields exist so status/debug output can
// name the showing.
type Schedule struct {
	ID        uint64 `json:"id"`
	ProgramID uint64 `json:"program_id,omitempty"`
	Date      string `json:"date,omitempty"`
	StartsAt  string `json:"starts_at,omitempty"`
	HallID    uint64 `json:"hall_id,omitempty"`
}
