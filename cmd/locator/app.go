package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"saferoom-locator/internal/adapters/mapview"
	"saferoom-locator/internal/adapters/position"
	"saferoom-locator/internal/adapters/repositories"
	"saferoom-locator/internal/adapters/shelters"
	"saferoom-locator/internal/adapters/ui"
	"saferoom-locator/internal/api"
	"saferoom-locator/internal/config"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/platform/db"
	"saferoom-locator/internal/ports"
	"saferoom-locator/internal/services"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// app is the composition root: concrete adapters behind ports, the sync
// engine, and the local API server.
type app struct {
	log     *zap.Logger
	db      *sql.DB
	replay  *position.ReplaySource
	tracker *services.LocationTracker
	surface *mapview.Surface
	engine  *services.MapSync
	server  *http.Server
}

func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// newShelterSource picks the backend adapter named by backend.source. The
// returned *sql.DB is nil unless the SQL registry is used.
func newShelterSource(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (ports.ShelterSource, *sql.DB, error) {
	switch cfg.Backend.Source {
	case "http":
		src, err := shelters.NewHTTPSource(shelters.HTTPOptions{
			BaseURL:      cfg.Backend.BaseURL,
			RoomsPath:    cfg.Backend.RoomsPath,
			SendLocation: cfg.Backend.SendLocation,
			Timeout:      millis(cfg.Backend.TimeoutMS),
			MaxAttempts:  cfg.Backend.MaxAttempts,
			Logger:       log,
		})
		return src, nil, err

	case "static":
		src, err := shelters.LoadStaticSource(cfg.Database.SeedPath)
		return src, nil, err

	case "sql":
		conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return repositories.NewSQLShelterRepository(conn, cfg.Database.Driver), conn, nil

	default:
		return nil, nil, fmt.Errorf("unknown shelter source %q", cfg.Backend.Source)
	}
}

func newPositionSource(cfg config.TrackingConfig, log *zap.Logger) (*position.ReplaySource, error) {
	opts := position.ReplayOptions{
		Interval: millis(cfg.ReplayIntervalMS),
		Loop:     cfg.Loop,
		Deny:     cfg.SimulateDenied,
		Logger:   log,
	}
	if cfg.SimulateDenied {
		return position.NewReplaySource(position.Track{}, opts), nil
	}

	track, err := position.LoadTrack(cfg.TrackPath)
	if err != nil {
		return nil, err
	}
	return position.NewReplaySource(track, opts), nil
}

func newApp(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (*app, error) {
	source, conn, err := newShelterSource(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("shelter source: %w", err)
	}

	replay, err := newPositionSource(cfg.Tracking, log)
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, fmt.Errorf("position source: %w", err)
	}

	a := &app{log: log, db: conn, replay: replay}

	a.tracker = services.NewLocationTracker(replay, cfg.Tracking.HighAccuracy, log)
	a.surface = mapview.NewSurface(millis(cfg.Map.ReadyDelayMS), log)

	session := services.NewMapSession(a.surface, log)
	viewport := domain.DefaultViewportOptions()
	viewport.Zoom = cfg.Map.InitialZoom
	if err := session.Open(cfg.Map.Container, viewport); err != nil {
		a.Close()
		return nil, err
	}

	router := ui.NewDetailRouter(log)
	status := ui.NewStatusBoard(log)
	fetcher := services.NewShelterFetcher(source, millis(cfg.Backend.TimeoutMS), log)

	a.engine = services.NewMapSync(a.tracker, session, fetcher, services.MapSyncOptions{
		FollowZoom: cfg.Map.FollowZoom,
		Selection:  router,
		Status:     status,
		Logger:     log,
	})

	a.server = &http.Server{
		Addr: cfg.API.Addr,
		Handler: api.NewRouter(api.Deps{
			Engine: a.engine,
			View:   a.surface,
			Routes: router,
			Status: status,
			Logger: log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run drives the engine loop and serves the API until ctx ends or either
// of them fails.
func (a *app) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.engine.Run(gctx)
	})

	g.Go(func() error {
		a.log.Info("api listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *app) Close() {
	if a.tracker != nil {
		a.tracker.Close()
	}
	if a.replay != nil {
		a.replay.Close()
	}
	if a.surface != nil {
		a.surface.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
