// Package config loads gateway configuration from environment variables.
package config

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time for duration-valued settings
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Upstream settings point the gateway at
// the central booking API; the remaining fields configure the gateway's
// own HTTP surface, audit database and scan timing.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	StationName string // name this gateway reports in audit records

	UpstreamBaseURL string // booking API base URL, no trailing slash
	UpstreamToken   string // bearer token for the booking API (empty = unprovisioned)

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret string // secret used to verify operator JWTs

	// Scan context the station is pinned to.  A gate serving a single
	// showing sets ScheduleID; a booking-desk station may set BookingID
	// instead and let the coordinator resolve the schedule.  Both nil
	// means check-ins are submitted unscoped.
	ScheduleID *uint64
	BookingID  *uint64

	Cooldown       time.Duration // overlay display window before scanning resumes
	RequestTimeout time.Duration // per-request timeout for upstream calls
	RetryFallback  time.Duration // rate-limit retry delay when no Retry-After is sent
	ScheduleTTL    time.Duration // TTL for cached schedule resolutions
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.  Timing
// values are optional and fall back to production defaults.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		StationName: envStr("STATION_NAME", "gate-1"),

		UpstreamBaseURL: must("UPSTREAM_BASE_URL"),
		UpstreamToken:   os.Getenv("UPSTREAM_TOKEN"), // empty allowed: scans surface "login required"

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret: must("JWT_SECRET"),

		ScheduleID: envU64Ptr("STATION_SCHEDULE_ID"),
		BookingID:  envU64Ptr("STATION_BOOKING_ID"),

		Cooldown:       envDur("SCAN_COOLDOWN", 3*time.Second),
		RequestTimeout: envDur("UPSTREAM_TIMEOUT", 15*time.Second),
		RetryFallback:  envDur("RATE_LIMIT_RETRY_FALLBACK", 2*time.Second),
		ScheduleTTL:    envDur("SCHEDULE_CACHE_TTL", 5*time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envU64Ptr parses an optional unsigned-integer variable, returning nil
// when it is unset.  A malformed value is fatal rather than silently
// ignored: a station pinned to the wrong schedule would check people
// into the wrong showing.
func envU64Ptr(key string) *uint64 {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid uint for %s: %q", key, v)
	}
	return &n
}
