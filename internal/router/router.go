// Package router defines how HTTP routes are registered for the gateway.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/qrgate/checkin-gateway/internal/config"
	"github.com/qrgate/checkin-gateway/internal/handler"
	"github.com/qrgate/checkin-gateway/internal/middleware"
	"github.com/qrgate/checkin-gateway/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterStation wires the scan pipeline's HTTP surface.
//
// POST /v1/scan is for scanner devices: it is gated by the station
// API-key check (when the audit database is available) and by the
// Redis token bucket, not by operator JWTs; devices hold a
// provisioning key, not a session.
//
// The operator endpoints under /v1 (station status, event list) require
// a valid operator bearer token.
func RegisterStation(e *echo.Echo, h *handler.StationHandler, jwtSecret string, stations *repository.StationRepo, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	scan := e.Group("/v1/scan")
	if stations != nil {
		scan.Use(middleware.StationKey(stations))
	}
	scan.Use(middleware.NewScanRateLimit(rlCfg, rdb))
	scan.POST("", h.SubmitScan)

	ops := e.Group("/v1")
	ops.Use(middleware.JWTAuth(jwtSecret))
	ops.GET("/station", h.StationStatus)
	ops.GET("/events", h.ListEvents)
}
