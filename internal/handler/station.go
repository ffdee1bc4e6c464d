package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/qrgate/checkin-gateway/internal/checkin"
	"github.com/qrgate/checkin-gateway/internal/repository"
	"github.com/qrgate/checkin-gateway/internal/scanner"
)

// StationHandler exposes the gateway's scan pipeline over HTTP: the
// submit endpoint networked scanner devices post decoded payloads to,
// the status endpoint the operator screen polls, and the audit event
// list.  The coordinator and driver are the same instances serving the
// locally attached decoder; HTTP submissions and local decodes compete
// for the same processing lock.
type StationHandler struct {
	Station     string
	Coordinator *checkin.Coordinator
	Driver      *scanner.Driver
	Overlay     *checkin.Overlay
	Events      *repository.ScanEventRepo
}

// NewStationHandler constructs a StationHandler.  All dependencies
// except Events must be non-nil; Events may be nil when the gateway
// runs without its audit database.
func NewStationHandler(station string, coord *checkin.Coordinator, drv *scanner.Driver, overlay *checkin.Overlay, events *repository.ScanEventRepo) *StationHandler {
	if coord == nil || drv == nil || overlay == nil {
		panic("nil dependency passed to NewStationHandler")
	}
	return &StationHandler{Station: station, Coordinator: coord, Driver: drv, Overlay: overlay, Events: events}
}

// SubmitScan handles POST /v1/scan.  The body carries the payload a
// remote device decoded.  The event goes through the same
// at-most-one-in-flight gate as local decodes: while a check-in is
// being processed the submission is dropped and the device told so,
// mirroring the lossy-burst semantics of the camera loop.  202 means
// accepted for processing, not that the check-in succeeded; devices
// learn the outcome from the status endpoint like everyone else.
func (h *StationHandler) SubmitScan(c echo.Context) error {
	var body struct {
		Payload string `json:"payload"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Payload == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payload is required"})
	}
	if !h.Coordinator.Offer(body.Payload) {
		return c.JSON(http.StatusConflict, echo.Map{
			"accepted": false,
			"reason":   "a scan is already being processed",
		})
	}
	return c.JSON(http.StatusAccepted, echo.Map{"accepted": true})
}

// StationStatus handles GET /v1/station.  It reports the scanner state,
// whether the processing lock is held, the current overlay, and the
// station's accepted/rejected tallies so the operator screen can render
// itself from one poll.
func (h *StationHandler) StationStatus(c echo.Context) error {
	resp := echo.Map{
		"station":       h.Station,
		"scanner_state": h.Driver.State().String(),
		"processing":    h.Coordinator.Busy(),
		"overlay":       h.Overlay.State(),
	}
	if h.Events != nil {
		ctx := c.Request().Context()
		accepted, err := h.Events.CountByStatus(ctx, h.Station, checkin.StatusAccepted)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		rejected, err := h.Events.CountByStatus(ctx, h.Station, checkin.StatusRejected)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		resp["accepted_total"] = accepted
		resp["rejected_total"] = rejected
	}
	return c.JSON(http.StatusOK, resp)
}

// ListEvents handles GET /v1/events.  Recent scan events for this
// station, newest first, with limit/offset paging.
func (h *StationHandler) ListEvents(c echo.Context) error {
	if h.Events == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "audit store disabled"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	events, err := h.Events.ListRecent(c.Request().Context(), h.Station, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}
