// Package upstream is the HTTP client for the central booking API.  The
// gateway holds no booking state of its own; check-ins, booking lookups
// and schedule searches all go through this client.  Every request
// carries the operator's bearer token, and the absence of a token is a
// precondition failure surfaced before any request is sent.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/qrgate/checkin-gateway/internal/model"
)

// ErrNoToken indicates that no upstream bearer token is available.  No
// request is attempted; the operator sees a "login required" overlay and
// an administrator has to re-provision the station.
var ErrNoToken = errors.New("upstream: no auth token")

// RateLimitedError is returned when the API answers 429.  RetryAfter is
// taken from the Retry-After header when the server provided one and is
// zero otherwise; the coordinator substitutes its configured fallback
// delay in that case.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("upstream: rate limited (retry after %s)", e.RetryAfter)
}

// TokenSource supplies the bearer token for upstream calls.  The static
// implementation reads it from config; other implementations may refresh
// it out of band.  An empty return means no token is available.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource around a fixed string.
type StaticToken string

// Token returns the wrapped token.
func (s StaticToken) Token() string { return string(s) }

// Client talks to the booking API.  BaseURL must not end with a slash.
// The embedded http.Client carries the request timeout; a timed-out call
// surfaces as a plain transport error, never as a held lock.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// New builds a Client.  A zero timeout falls back to 15 seconds so that
// no request can hold the coordinator's processing lock indefinitely.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
	}
}

// CheckInByQR submits a scan payload to POST /bookings/checkin-by-qr.
// A 429 answer maps to *RateLimitedError.  Any other status with a
// decodable body is returned as the server's CheckInResult, so
// application-level rejections ({success:false}) reach the caller as a
// result rather than an error; undecodable bodies are transport errors.
func (c *Client) CheckInByQR(ctx context.Context, req model.CheckInRequest) (*model.CheckInResult, error) {
	tok := c.tokens.Token()
	if tok == "" {
		return nil, ErrNoToken
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings/checkin-by-qr", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitedError{RetryAfter: retryAfter(resp)}
	}

	var result model.CheckInResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("upstream: decode check-in response (status %d): %w", resp.StatusCode, err)
	}
	return &result, nil
}

// GetBooking fetches GET /bookings/{id} for the schedule-resolution
// fallback chain.
func (c *Client) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	if err := c.getJSON(ctx, fmt.Sprintf("/bookings/%d", id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SearchSchedules queries GET /schedules by date and program id with
// pagination disabled.  The caller takes the first element of a
// non-empty result.
func (c *Client) SearchSchedules(ctx context.Context, date string, programID uint64) ([]model.Schedule, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("program_id", strconv.FormatUint(programID, 10))
	q.Set("paginate", "false")
	var schedules []model.Schedule
	if err := c.getJSON(ctx, "/schedules?"+q.Encode(), &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// getJSON performs an authenticated GET and decodes a 2xx JSON body into
// out.  Non-2xx statuses, including 429, are transport errors here: the
// retry policy applies only to the check-in submission itself.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	tok := c.tokens.Token()
	if tok == "" {
		return ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upstream: GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out)
}

// retryAfter parses the Retry-After header as delay seconds.  HTTP-date
// values and garbage both map to zero, letting the caller apply its
// fallback delay.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
