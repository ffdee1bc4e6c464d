package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrgate/checkin-gateway/internal/checkin"
	"github.com/qrgate/checkin-gateway/internal/model"
	"github.com/qrgate/checkin-gateway/internal/scanner"
)

// stubAPI answers every check-in with success; when hold is non-nil the
// call blocks on it so a test can keep the processing lock occupied.
type stubAPI struct {
	hold    chan struct{}
	entered chan struct{}
}

func (a *stubAPI) CheckInByQR(ctx context.Context, req model.CheckInRequest) (*model.CheckInResult, error) {
	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.hold != nil {
		<-a.hold
	}
	return &model.CheckInResult{Success: true, Message: "OK"}, nil
}

func (a *stubAPI) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (a *stubAPI) SearchSchedules(ctx context.Context, date string, programID uint64) ([]model.Schedule, error) {
	return nil, nil
}

func newTestHandler(t *testing.T, api *stubAPI) *StationHandler {
	t.Helper()
	drv := scanner.New(scanner.NoDevice{}, scanner.DecodeConfig{})
	if err := drv.Initialize(); err != nil {
		t.Fatal(err)
	}
	overlay := checkin.NewOverlay()
	coord := checkin.New(api, drv, overlay, checkin.Options{
		Cooldown:      2 * time.Millisecond,
		RetryFallback: time.Millisecond,
	})
	if err := coord.Run(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(coord.Close)
	return NewStationHandler("gate-1", coord, drv, overlay, nil)
}

func doJSON(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestSubmitScanAccepted(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	e := echo.New()
	rec, c := doJSON(e, http.MethodPost, "/v1/scan", `{"payload":"QR123"}`)

	if err := h.SubmitScan(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestSubmitScanConflictWhileProcessing(t *testing.T) {
	api := &stubAPI{hold: make(chan struct{}), entered: make(chan struct{}, 1)}
	h := newTestHandler(t, api)
	e := echo.New()

	rec, c := doJSON(e, http.MethodPost, "/v1/scan", `{"payload":"QR123"}`)
	if err := h.SubmitScan(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first submission status = %d, want 202", rec.Code)
	}
	<-api.entered // check-in now in flight

	rec2, c2 := doJSON(e, http.MethodPost, "/v1/scan", `{"payload":"QR456"}`)
	if err := h.SubmitScan(c2); err != nil {
		t.Fatal(err)
	}
	if rec2.Code != http.StatusConflict {
		t.Fatalf("second submission status = %d, want 409", rec2.Code)
	}
	close(api.hold)
}

func TestSubmitScanRequiresPayload(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	e := echo.New()
	rec, c := doJSON(e, http.MethodPost, "/v1/scan", `{}`)

	if err := h.SubmitScan(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStationStatus(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	e := echo.New()
	rec, c := doJSON(e, http.MethodGet, "/v1/station", "")

	if err := h.StationStatus(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["station"] != "gate-1" {
		t.Fatalf("station = %v", body["station"])
	}
	if body["scanner_state"] != "SCANNING" {
		t.Fatalf("scanner_state = %v, want SCANNING", body["scanner_state"])
	}
	if body["processing"] != false {
		t.Fatalf("processing = %v, want false", body["processing"])
	}
}

func TestListEventsWithoutStore(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	e := echo.New()
	rec, c := doJSON(e, http.MethodGet, "/v1/events", "")

	if err := h.ListEvents(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
