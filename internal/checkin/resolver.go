package checkin

import "context"

// resolveScheduleID walks the fallback chain for the schedule scope of a
// check-in.  The chain short-circuits at the first resolution:
//
//  1. a schedule id passed in from the hosting screen,
//  2. the booking's own schedule_id (or nested schedule.id) fetched via
//     GET /bookings/{id},
//  3. a schedule search by the booking's date and program id, taking the
//     first match,
//  4. nothing: the request is submitted without a schedule id and the
//     server decides whether that is acceptable.
//
// Lookup failures degrade to the next step rather than failing the scan:
// a check-in without schedule scope beats no check-in at all.
func (c *Coordinator) resolveScheduleID(ctx context.Context) *uint64 {
	if c.opts.ScheduleID != nil {
		return c.opts.ScheduleID
	}
	if c.opts.BookingID == nil {
		return nil
	}
	b, err := c.api.GetBooking(ctx, *c.opts.BookingID)
	if err != nil {
		c.opts.Logger.Printf("checkin: booking %d lookup failed: %v", *c.opts.BookingID, err)
		return nil
	}
	if b.ScheduleID != nil {
		return b.ScheduleID
	}
	if b.Schedule != nil && b.Schedule.ID != 0 {
		id := b.Schedule.ID
		return &id
	}
	if b.Date == "" || b.ProgramID == nil {
		return nil
	}
	if c.opts.Cache != nil {
		if id, ok := c.opts.Cache.Get(ctx, b.Date, *b.ProgramID); ok {
			return &id
		}
	}
	schedules, err := c.api.SearchSchedules(ctx, b.Date, *b.ProgramID)
	if err != nil {
		c.opts.Logger.Printf("checkin: schedule search date=%s program=%d failed: %v", b.Date, *b.ProgramID, err)
		return nil
	}
	if len(schedules) == 0 {
		return nil
	}
	// First match wins.  When several schedules share a date and
	// program this is ambiguous; the tie-break is kept as-is pending
	// product input.
	id := schedules[0].ID
	if c.opts.Cache != nil {
		c.opts.Cache.Put(ctx, b.Date, *b.ProgramID, id)
	}
	return &id
}
