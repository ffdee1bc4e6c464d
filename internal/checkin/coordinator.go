// Package checkin contains the coordinator that turns decoded scan
// payloads into check-in calls against the booking API.  The coordinator
// enforces the station's core discipline: scanning is paused while a
// check-in is being processed, at most one request is in flight at any
// time, and every terminal outcome releases the lock and resumes
// scanning after an operator-readable cooldown.
package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/qrgate/checkin-gateway/internal/model"
	"github.com/qrgate/checkin-gateway/internal/upstream"
)

// ScanControl is the slice of the scanner driver the coordinator needs.
// Only the coordinator calls Start/Stop on the driver, and only around
// its processing lock; that single-writer rule is what keeps "overlay
// still showing" and "new badge being scanned" from racing.
type ScanControl interface {
	Start(onDecode func(payload string)) error
	Stop() error
}

// BookingAPI is the slice of the upstream client the coordinator uses.
type BookingAPI interface {
	CheckInByQR(ctx context.Context, req model.CheckInRequest) (*model.CheckInResult, error)
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
	SearchSchedules(ctx context.Context, date string, programID uint64) ([]model.Schedule, error)
}

// Display receives operator-facing overlay updates.  Implementations
// range from the station status endpoint to a plain log sink.
type Display interface {
	Show(severity model.Severity, message string)
	Clear()
}

// ScheduleCache memoizes date+program schedule resolutions so a burst of
// badges for the same showing does not repeat the upstream search.  A
// nil cache disables memoization.
type ScheduleCache interface {
	Get(ctx context.Context, date string, programID uint64) (uint64, bool)
	Put(ctx context.Context, date string, programID uint64, scheduleID uint64)
}

// Outcome is the audit record of one terminal scan.  Status is one of
// the Status* constants; Message is the operator-facing text that was
// displayed.
type Outcome struct {
	Payload    string
	ScheduleID *uint64
	Status     string
	Message    string
	At         time.Time
}

// Terminal statuses recorded per scan.
const (
	StatusAccepted    = "ACCEPTED"     // server confirmed the check-in
	StatusRejected    = "REJECTED"     // server answered {success:false}
	StatusNetworkErr  = "NETWORK_ERR"  // transport failure or timeout
	StatusRateLimited = "RATE_LIMITED" // 429 twice in a row
	StatusNoToken     = "NO_TOKEN"     // precondition: no upstream token
)

// Options configures a Coordinator.  ScheduleID and BookingID carry the
// scan context the hosting screen already knows; either may be nil.
type Options struct {
	// Cooldown is the overlay display window before scanning resumes.
	// Long enough for a human to read the result, short enough to keep
	// throughput; defaults to 3 seconds.
	Cooldown time.Duration
	// RetryFallback is the delay before the single rate-limit retry when
	// the server sent no Retry-After; defaults to 2 seconds.
	RetryFallback time.Duration

	ScheduleID *uint64
	BookingID  *uint64

	// OnResult fires once per server-confirmed check-in with the opaque
	// data payload; the hosting view refreshes its own state from it.
	OnResult func(data json.RawMessage)
	// OnOutcome fires once per terminal scan, success or not, for audit
	// storage and event publishing.  Called before the cooldown starts.
	OnOutcome func(o Outcome)

	Cache  ScheduleCache
	Logger *log.Logger
}

// Coordinator serializes decode events into at-most-one-in-flight
// check-in requests.  It is safe to deliver decode events from any
// goroutine; all but the first during a processing window are dropped,
// never queued; the operator re-presents a badge that did not register.
type Coordinator struct {
	api     BookingAPI
	driver  ScanControl
	display Display
	opts    Options

	busy   atomic.Bool // the processing lock
	closed atomic.Bool
	closeC chan struct{}
}

// New builds a Coordinator.  api, driver and display must be non-nil.
func New(api BookingAPI, driver ScanControl, display Display, opts Options) *Coordinator {
	if api == nil || driver == nil || display == nil {
		panic("nil dependency passed to checkin.New")
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 3 * time.Second
	}
	if opts.RetryFallback <= 0 {
		opts.RetryFallback = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Coordinator{api: api, driver: driver, display: display, opts: opts, closeC: make(chan struct{})}
}

// Run starts the scan driver with the coordinator as its consumer.
func (c *Coordinator) Run() error {
	return c.driver.Start(c.OnDecodePayload)
}

// Busy reports whether a check-in is currently being processed or its
// result overlay is still within the cooldown window.
func (c *Coordinator) Busy() bool { return c.busy.Load() }

// OnDecodePayload accepts one decoded payload from the scan driver.
// Events arriving while the lock is held are dropped, not queued.
func (c *Coordinator) OnDecodePayload(raw string) {
	_ = c.Offer(raw)
}

// Offer accepts one decoded payload and reports whether it was taken.
// If the processing lock is already held the event is dropped
// immediately and Offer returns false; otherwise the lock is taken,
// scanning is paused, and processing continues on its own goroutine so
// the caller never blocks.
func (c *Coordinator) Offer(raw string) bool {
	if c.closed.Load() {
		return false
	}
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	// Pause the camera first: the operator sees the freeze as "scan
	// registered", and a still-active camera cannot re-read the same
	// badge while the request is outstanding.
	if err := c.driver.Stop(); err != nil {
		c.opts.Logger.Printf("checkin: pause scanner: %v", err)
	}
	go c.process(raw)
	return true
}

// process resolves the schedule, submits the check-in, shows the result
// and schedules the resume.  It owns the processing lock for its whole
// lifetime; every exit path goes through finish exactly once.
func (c *Coordinator) process(raw string) {
	ctx := context.Background()
	scheduleID := c.resolveScheduleID(ctx)

	result, err := c.submit(ctx, model.CheckInRequest{QRCode: raw, ScheduleID: scheduleID})

	if c.closed.Load() {
		// The hosting view is gone; discard the response rather than
		// touching the display.  The in-flight request was never
		// cancelled, only its result is ignored.
		return
	}

	out := Outcome{Payload: raw, ScheduleID: scheduleID, At: time.Now().UTC()}
	switch {
	case errors.Is(err, upstream.ErrNoToken):
		out.Status = StatusNoToken
		out.Message = "login required"
		c.display.Show(model.SeverityWarning, out.Message)
	case err != nil:
		var rl *upstream.RateLimitedError
		if errors.As(err, &rl) {
			out.Status = StatusRateLimited
			out.Message = "server busy, try again"
			c.display.Show(model.SeverityError, out.Message)
		} else {
			out.Status = StatusNetworkErr
			out.Message = "network error, please rescan"
			c.opts.Logger.Printf("checkin: submit failed: %v", err)
			c.display.Show(model.SeverityError, out.Message)
		}
	case result.Success:
		out.Status = StatusAccepted
		out.Message = result.Message
		c.display.Show(model.SeveritySuccess, result.Message)
		if c.opts.OnResult != nil {
			c.opts.OnResult(result.Data)
		}
	default:
		// Application-level rejection: invalid code, already checked
		// in, wrong schedule.  Never retried.
		out.Status = StatusRejected
		out.Message = result.Message
		c.display.Show(model.SeverityError, result.Message)
	}

	if c.opts.OnOutcome != nil {
		c.opts.OnOutcome(out)
	}
	c.finish()
}

// submit performs the check-in call with the single rate-limit retry:
// on a 429 it waits for the server-provided delay (or the configured
// fallback) and tries the same request exactly once more.  No other
// failure is retried.
func (c *Coordinator) submit(ctx context.Context, req model.CheckInRequest) (*model.CheckInResult, error) {
	result, err := c.api.CheckInByQR(ctx, req)
	var rl *upstream.RateLimitedError
	if !errors.As(err, &rl) {
		return result, err
	}
	delay := rl.RetryAfter
	if delay <= 0 {
		delay = c.opts.RetryFallback
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-c.closeC:
		return nil, err
	}
	return c.api.CheckInByQR(ctx, req)
}

// finish clears the overlay, releases the lock and restarts scanning
// after the cooldown.  It is the single resume point for all terminal
// outcomes.
func (c *Coordinator) finish() {
	t := time.NewTimer(c.opts.Cooldown)
	defer t.Stop()
	select {
	case <-t.C:
	case <-c.closeC:
		return
	}
	c.display.Clear()
	c.busy.Store(false)
	if err := c.driver.Start(c.OnDecodePayload); err != nil {
		c.opts.Logger.Printf("checkin: resume scanner: %v", err)
	}
}

// Close marks the coordinator as unmounted.  Pending cooldowns and
// retry waits are abandoned and late completion handlers become no-ops.
// In-flight upstream requests are not cancelled; their results are
// discarded when they land.
func (c *Coordinator) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.closeC)
	}
}
