package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qrgate/checkin-gateway/internal/model"
)

func TestCheckInByQRSendsRequest(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody model.CheckInRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(model.CheckInResult{Success: true, Message: "OK", Data: json.RawMessage(`{"id":1}`)})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok-1"), time.Second)
	sched := uint64(7)
	res, err := c.CheckInByQR(context.Background(), model.CheckInRequest{QRCode: "QR123", ScheduleID: &sched})
	if err != nil {
		t.Fatalf("CheckInByQR: %v", err)
	}
	if gotPath != "/bookings/checkin-by-qr" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if gotBody.QRCode != "QR123" || gotBody.ScheduleID == nil || *gotBody.ScheduleID != 7 {
		t.Fatalf("body = %+v", gotBody)
	}
	if !res.Success || res.Message != "OK" || string(res.Data) != `{"id":1}` {
		t.Fatalf("result = %+v", res)
	}
}

func TestCheckInByQROmitsEmptyScheduleID(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_ = json.NewEncoder(w).Encode(model.CheckInResult{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"), time.Second)
	if _, err := c.CheckInByQR(context.Background(), model.CheckInRequest{QRCode: "QR"}); err != nil {
		t.Fatal(err)
	}
	if _, present := raw["schedule_id"]; present {
		t.Fatalf("schedule_id serialized when unresolved: %v", raw)
	}
}

func TestCheckInByQRNoToken(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = true }))
	defer srv.Close()

	c := New(srv.URL, StaticToken(""), time.Second)
	_, err := c.CheckInByQR(context.Background(), model.CheckInRequest{QRCode: "QR"})
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
	if hit {
		t.Fatal("request was sent despite missing token")
	}
}

func TestCheckInByQRRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"), time.Second)
	_, err := c.CheckInByQR(context.Background(), model.CheckInRequest{QRCode: "QR"})
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want RateLimitedError", err)
	}
	if rl.RetryAfter != 3*time.Second {
		t.Fatalf("RetryAfter = %s, want 3s", rl.RetryAfter)
	}
}

func TestCheckInByQRRejectionWithErrorStatus(t *testing.T) {
	// Some deployments answer application rejections with 4xx plus the
	// regular body; that must surface as a result, not an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(model.CheckInResult{Success: false, Message: "invalid code"})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"), time.Second)
	res, err := c.CheckInByQR(context.Background(), model.CheckInRequest{QRCode: "QR"})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if res.Success || res.Message != "invalid code" {
		t.Fatalf("result = %+v", res)
	}
}

func TestGetBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings/55" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":55,"schedule":{"id":13},"date":"2025-01-01","program_id":3}`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"), time.Second)
	b, err := c.GetBooking(context.Background(), 55)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if b.Schedule == nil || b.Schedule.ID != 13 || b.Date != "2025-01-01" || b.ProgramID == nil || *b.ProgramID != 3 {
		t.Fatalf("booking = %+v", b)
	}
}

func TestSearchSchedules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("date") != "2025-01-01" || q.Get("program_id") != "3" || q.Get("paginate") != "false" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`[{"id":9},{"id":11}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"), time.Second)
	schedules, err := c.SearchSchedules(context.Background(), "2025-01-01", 3)
	if err != nil {
		t.Fatalf("SearchSchedules: %v", err)
	}
	if len(schedules) != 2 || schedules[0].ID != 9 {
		t.Fatalf("schedules = %+v", schedules)
	}
}

func TestGetJSONErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"), time.Second)
	if _, err := c.GetBooking(context.Background(), 1); err == nil {
		t.Fatal("expected error on 500")
	}
}
