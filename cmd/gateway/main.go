// Command gateway runs the check-in station: it drives the attached
// barcode decoder (when there is one), accepts scan submissions from
// networked devices, and forwards every decoded payload to the central
// booking API through the check-in coordinator.
package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/qrgate/checkin-gateway/internal/checkin"
	"github.com/qrgate/checkin-gateway/internal/config"
	"github.com/qrgate/checkin-gateway/internal/database"
	"github.com/qrgate/checkin-gateway/internal/handler"
	"github.com/qrgate/checkin-gateway/internal/queue"
	"github.com/qrgate/checkin-gateway/internal/repository"
	"github.com/qrgate/checkin-gateway/internal/router"
	"github.com/qrgate/checkin-gateway/internal/scanner"
	queue_publisher "github.com/qrgate/checkin-gateway/internal/service"
	"github.com/qrgate/checkin-gateway/internal/upstream"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	// Audit database.  The gateway keeps scanning without it: rows are
	// simply not written and the event endpoints report the store as
	// disabled.
	var eventRepo *repository.ScanEventRepo
	var stationRepo *repository.StationRepo
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("audit database unavailable, continuing without it: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		cancel()
		eventRepo = repository.NewScanEventRepo(db)
		stationRepo = repository.NewStationRepo(db)
	}

	// Redis backs the scan rate limiter and the schedule resolution
	// cache; nil disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and schedule caching disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	// Tail confirmed check-ins from the broker into logs/checkin.log.
	go func() {
		if err := queue.StartCheckInConsumer(); err != nil {
			log.Printf("checkin consumer stopped: %v", err)
		}
	}()

	api := upstream.New(cfg.UpstreamBaseURL, upstream.StaticToken(cfg.UpstreamToken), cfg.RequestTimeout)

	driver := scanner.New(scanner.NoDevice{}, scanner.DecodeConfig{FPS: 30})
	if err := driver.Initialize(); err != nil {
		log.Fatalf("scanner init: %v", err)
	}

	overlay := checkin.NewOverlay()
	opts := checkin.Options{
		Cooldown:      cfg.Cooldown,
		RetryFallback: cfg.RetryFallback,
		ScheduleID:    cfg.ScheduleID,
		BookingID:     cfg.BookingID,
		OnResult: func(data json.RawMessage) {
			log.Printf("check-in confirmed: %s", string(data))
		},
		OnOutcome: func(o checkin.Outcome) {
			recordOutcome(cfg.StationName, eventRepo, o)
		},
	}
	if cache := checkin.NewRedisScheduleCache(rdb, cfg.ScheduleTTL); cache != nil {
		opts.Cache = cache
	}
	coord := checkin.New(api, driver, overlay, opts)
	defer coord.Close()
	defer func() { _ = driver.Teardown() }()

	if err := coord.Run(); err != nil {
		log.Fatalf("start scanning: %v", err)
	}

	e := echo.New()
	router.RegisterRoutes(e)
	h := handler.NewStationHandler(cfg.StationName, coord, driver, overlay, eventRepo)
	router.RegisterStation(e, h, cfg.JWTSecret, stationRepo, rlCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s station=%s)", addr, cfg.Env, cfg.StationName)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// recordOutcome writes the audit row and, for confirmed check-ins,
// publishes the broker event.  Both are best-effort; a failure must not
// stall the scan loop.
func recordOutcome(station string, repo *repository.ScanEventRepo, o checkin.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if repo != nil {
		ev := repository.ScanEvent{
			Station:    station,
			Payload:    o.Payload,
			ScheduleID: o.ScheduleID,
			Status:     o.Status,
			Message:    o.Message,
		}
		if err := repo.Create(ctx, &ev); err != nil {
			log.Printf("audit write failed: %v", err)
		}
	}

	if o.Status == checkin.StatusAccepted {
		_ = queue_publisher.PublishCheckInCompleted(ctx, queue.CheckInCompletedEvent{
			Station:     station,
			Payload:     o.Payload,
			ScheduleID:  o.ScheduleID,
			Message:     o.Message,
			CompletedAt: o.At.Format(time.RFC3339),
		})
	}
}
