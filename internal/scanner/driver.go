// Package scanner owns the barcode decoder resource and its decode loop.
// The decoder hardware itself is an external capability hidden behind the
// Decoder interface; the Driver only manages its lifecycle and turns
// decoded frames into payload callbacks for the check-in coordinator.
package scanner

import (
	"errors"
	"sync"
)

// State enumerates the lifecycle states of a Driver.  A Driver begins
// Uninitialized, moves to Scanning once the decoder is acquired and the
// decode loop is running, alternates between Scanning and Stopped as the
// coordinator pauses and resumes it, and ends in Released after Teardown.
// Any acquisition or decode-session failure moves it to Failed, which is
// terminal until a new Driver is built.
type State int

const (
	Uninitialized State = iota // decoder not yet acquired
	Scanning                   // decode loop running, payloads being delivered
	Stopped                    // decoder acquired but decode loop paused
	Failed                     // decoder failure; requires a fresh Driver
	Released                   // Teardown completed; terminal
)

// String returns a human-readable name for the state, used in status
// responses and log lines.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Scanning:
		return "SCANNING"
	case Stopped:
		return "STOPPED"
	case Failed:
		return "FAILED"
	case Released:
		return "RELEASED"
	}
	return "UNKNOWN"
}

// ErrDecoderUnavailable is returned by Initialize when no decoder device
// can be acquired (no camera permission, device busy, no suitable
// hardware).  The caller surfaces it to the operator and leaves the
// Driver in the Failed state; there is no automatic retry.
var ErrDecoderUnavailable = errors.New("scanner: decoder unavailable")

// ErrNotInitialized is returned by Start when the decoder was never
// successfully acquired.
var ErrNotInitialized = errors.New("scanner: driver not initialized")

// DecodeConfig carries the fixed decode parameters handed to the decoder
// when a scan session begins.  FPS balances responsiveness against CPU
// cost; Region bounds the scanned portion of the frame to cut false
// positives.  Zero values let the decoder apply its own defaults.
type DecodeConfig struct {
	FPS    int    // decode attempts per second (30 is the production setting)
	Region Region // sub-frame to scan; empty means full frame
}

// Region is a rectangle within the camera frame, in pixels.
type Region struct {
	X, Y, Width, Height int
}

// Session represents one running decode session on an acquired decoder.
// Closing it stops frame delivery and releases the underlying stream.
type Session interface {
	// Close stops the decode loop and releases the active stream.  It
	// must be safe to call while decode callbacks are still being
	// dispatched; callbacks arriving after Close are discarded by the
	// Driver, not by the decoder.
	Close() error
}

// Decoder is the capability interface implemented by a platform barcode
// library.  Acquire claims the device; Decode starts a continuous decode
// session delivering every successfully decoded payload to onDecode
// (frames with no readable code are never reported); Release returns the
// device to the platform.  Tests substitute a fake.
type Decoder interface {
	Acquire() error
	Decode(cfg DecodeConfig, onDecode func(payload string)) (Session, error)
	Release() error
}

// Driver manages a Decoder through the scan/pause/resume cycle.  All
// methods are safe for concurrent use; internally a single mutex guards
// the state while a separate "stopping" flag collapses overlapping Stop
// calls into one release of the active session.
type Driver struct {
	dec Decoder
	cfg DecodeConfig

	mu       sync.Mutex
	state    State
	session  Session
	stopping bool
	onDecode func(payload string)
}

// New builds a Driver around the given decoder.  The decoder is not
// touched until Initialize is called.
func New(dec Decoder, cfg DecodeConfig) *Driver {
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	return &Driver{dec: dec, cfg: cfg, state: Uninitialized}
}

// State reports the current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Initialize acquires the decoder device.  On success the Driver is left
// in Stopped, ready for Start.  On failure it moves to Failed and
// returns ErrDecoderUnavailable wrapped around the device error; the
// Driver cannot be reused after that.
func (d *Driver) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Uninitialized {
		return nil
	}
	if err := d.dec.Acquire(); err != nil {
		d.state = Failed
		return errors.Join(ErrDecoderUnavailable, err)
	}
	d.state = Stopped
	return nil
}

// Start begins (or resumes) the continuous decode loop, delivering each
// decoded payload to onDecode.  It is a no-op when already scanning.
// Stale callbacks from a session that has since been closed are dropped
// here rather than surfaced, so a payload decoded in the instant before
// Stop never reaches a new session's consumer.
func (d *Driver) Start(onDecode func(payload string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case Scanning:
		return nil
	case Uninitialized:
		return ErrNotInitialized
	case Failed, Released:
		return ErrDecoderUnavailable
	}
	d.onDecode = onDecode
	sess, err := d.dec.Decode(d.cfg, d.dispatch)
	if err != nil {
		d.state = Failed
		return errors.Join(ErrDecoderUnavailable, err)
	}
	d.session = sess
	d.state = Scanning
	return nil
}

// dispatch forwards a decoded payload to the current consumer.  Payloads
// arriving while the driver is not scanning (a frame decoded mid-stop)
// are discarded.
func (d *Driver) dispatch(payload string) {
	d.mu.Lock()
	cb := d.onDecode
	ok := d.state == Scanning && cb != nil
	d.mu.Unlock()
	if ok {
		cb(payload)
	}
}

// Stop pauses the decode loop and releases the active stream.  A second
// Stop arriving while the first is still tearing down is a no-op: the
// stopping flag guarantees exactly one session close per stop cycle.
func (d *Driver) Stop() error {
	d.mu.Lock()
	if d.state != Scanning || d.stopping {
		d.mu.Unlock()
		return nil
	}
	d.stopping = true
	sess := d.session
	d.session = nil
	d.mu.Unlock()

	var err error
	if sess != nil {
		err = sess.Close()
	}

	d.mu.Lock()
	d.stopping = false
	if d.state == Scanning {
		d.state = Stopped
	}
	d.mu.Unlock()
	return err
}

// Teardown performs the full resource release for view unmount.  It runs
// the defensive path as well: even if scanning never started, the
// decoder is released.  After Teardown the Driver is terminal.
func (d *Driver) Teardown() error {
	d.mu.Lock()
	if d.state == Released {
		d.mu.Unlock()
		return nil
	}
	sess := d.session
	d.session = nil
	prev := d.state
	d.state = Released
	d.onDecode = nil
	d.mu.Unlock()

	var errs []error
	if sess != nil {
		if err := sess.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	// Release the device unless it was never acquired.
	if prev != Uninitialized {
		if err := d.dec.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
