package checkin

import (
	"sync"
	"time"

	"github.com/qrgate/checkin-gateway/internal/model"
)

// Overlay is the station's result display: it holds the most recent
// scan result for the duration of the cooldown so the status endpoint
// (and whatever screen polls it) can render the overlay the operator is
// meant to read.  Implements Display.
type Overlay struct {
	mu       sync.Mutex
	visible  bool
	severity model.Severity
	message  string
	shownAt  time.Time
}

// OverlayState is a point-in-time copy of the overlay for the status
// endpoint.
type OverlayState struct {
	Visible  bool           `json:"visible"`
	Severity model.Severity `json:"severity,omitempty"`
	Message  string         `json:"message,omitempty"`
	ShownAt  *time.Time     `json:"shown_at,omitempty"`
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay { return &Overlay{} }

// Show replaces the overlay content.
func (o *Overlay) Show(severity model.Severity, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = true
	o.severity = severity
	o.message = message
	o.shownAt = time.Now().UTC()
}

// Clear hides the overlay at the end of the cooldown.
func (o *Overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
	o.severity = ""
	o.message = ""
}

// State returns a copy of the current overlay.
func (o *Overlay) State() OverlayState {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := OverlayState{Visible: o.visible, Severity: o.severity, Message: o.message}
	if o.visible {
		t := o.shownAt
		st.ShownAt = &t
	}
	return st
}
