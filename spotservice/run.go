// Package spotservice boots the tidy-spot HTTP service and blocks until
// shutdown.
package spotservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tidyspot/internal/api"
	"tidyspot/internal/camera"
	"tidyspot/internal/config"
	"tidyspot/internal/dream"
	"tidyspot/internal/logger"
	"tidyspot/internal/schedule"
	"tidyspot/internal/service"
	"tidyspot/internal/settings"
	"tidyspot/internal/vision"

	sqlitestore "tidyspot/internal/store/sqlite"
)

// Run starts the tidy-spot service and blocks until shutdown or error.
func Run() error {
	log := logger.New("tidyspot")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.HTTPPort).
		Str("db_path", cfg.DBPath).
		Str("gemini_model", cfg.GeminiModel).
		Msg("Tidy-spot service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := sqlitestore.New(ctx, cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Msg("Store unavailable")
		return err
	}
	defer func() { _ = st.Close() }()

	svcSettings := settings.New(st)

	onvif := camera.NewONVIFAdapter(st.Cameras(),
		time.Duration(cfg.DiscoveryTimeoutSeconds)*time.Second, log)
	cams := camera.NewManager(
		camera.NewHubAdapter(svcSettings, log),
		camera.NewRTSPAdapter(st.Cameras(), log),
		camera.NewMJPEGAdapter(st.Cameras(), log),
		onvif,
		log,
	)
	analyzer := vision.NewAnalyzer(svcSettings, cfg.GeminiModel, log)
	generator := dream.New(svcSettings, cfg.DreamStateDir(), log)

	svc := service.New(st, svcSettings, cams, analyzer, generator, log)

	var sched *schedule.Scheduler
	if cfg.SchedulerEnabled {
		sched = schedule.New(svc.ScheduledCheck, log)
		svc.AttachScheduler(sched)
		if err := svc.ReloadSchedules(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to restore spot schedules")
			return err
		}
		sched.Start()
	}

	handler := api.NewHandler(api.Deps{
		Service:   svc,
		Store:     st,
		Settings:  svcSettings,
		Cameras:   cams,
		Snapshots: cams,
		Discovery: onvif,
		Analyzer:  analyzer,
		DreamDir:  cfg.DreamStateDir(),
		Log:       log,
	})
	router := api.NewRouter(handler)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		if sched != nil {
			// Stop firing new checks before the HTTP server goes away.
			<-sched.Stop().Done()
		}
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Analyze calls can block on the vision API for a long time.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
