// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/camwatch/docs"
	"github.com/tomtom215/camwatch/internal/api"
	"github.com/tomtom215/camwatch/internal/cameras"
	"github.com/tomtom215/camwatch/internal/config"
	"github.com/tomtom215/camwatch/internal/logging"
	"github.com/tomtom215/camwatch/internal/motion"
	"github.com/tomtom215/camwatch/internal/notify"
	"github.com/tomtom215/camwatch/internal/store"
	"github.com/tomtom215/camwatch/internal/supervisor"
	"github.com/tomtom215/camwatch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Version: version,
	})

	logging.Info().Msg("Starting camwatch with supervisor tree")

	settings, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open settings store")
	}

	seeded, err := settings.Seed(cfg.Motion.Endpoint, cfg.Raspberry.Host)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to seed settings from environment")
	} else if len(seeded) > 0 {
		logging.Info().Strs("keys", seeded).Msg("Settings seeded from environment")
	}

	endpoint, apiHost, err := settings.Snapshot()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read stored settings")
	}
	logging.Info().
		Str("endpoint", endpoint).
		Str("api_host", apiHost).
		Bool("in_memory", cfg.Store.InMemory).
		Msg("Configuration loaded")

	var hub *notify.Hub
	if cfg.Notify.HubEnabled {
		hub = notify.NewHub()
	}
	notifier := buildNotifier(cfg, hub)
	logging.Info().Strs("notifiers", notifier.Names()).Msg("Motion alert notifiers configured")

	transport := motion.NewWebsocketTransport(motion.WebsocketConfig{
		HandshakeTimeout: cfg.Motion.HandshakeTimeout,
		PingInterval:     cfg.Motion.PingInterval,
		PongWait:         cfg.Motion.PongWait,
	})
	motionSup := motion.NewSupervisor(motion.Config{
		Port:              cfg.Motion.Port,
		Path:              cfg.Motion.Path,
		WatchdogInterval:  cfg.Motion.WatchdogInterval,
		NotificationTitle: cfg.Motion.NotificationTitle,
	}, transport, motion.TickerScheduler{}, settings, notifier)
	if hub != nil {
		motionSup.SetTransitionHook(func(from, to motion.State) {
			hub.PublishState(from.String(), to.String())
		})
	}

	cameraHolder := cameras.NewHolder(cameras.NewBuilder(cfg.Raspberry), apiHost)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Store.GCInterval > 0 && !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(settings, cfg.Store.GCInterval, store.ErrClosed))
	}
	tree.AddMotionService(motion.NewBootService(motionSup, settings))
	if hub != nil {
		tree.AddMessagingService(services.NewAlertHubService(hub))
	}

	if cfg.Server.Enabled {
		handler := api.NewHandler(api.Dependencies{
			Motion:       motionSup,
			Settings:     settings,
			Cameras:      cameraHolder,
			Alerts:       hub,
			Raspberry:    cfg.Raspberry,
			Version:      version,
			AlertOrigins: cfg.Server.CORSOrigins,
		})
		router := api.NewRouter(handler, api.MiddlewareConfigFromServer(&cfg.Server))

		server := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router.Setup(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Server.Timeout,
			WriteTimeout:      cfg.Server.Timeout,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Supervisor.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("Control API enabled")

		if cfg.Server.RateLimitDisabled {
			logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		}
	} else {
		logging.Info().Msg("Control API disabled (HTTP_ENABLED=false)")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	motionSup.Close()
	transport.Wait()
	if err := settings.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing settings store")
	}

	logging.Info().Msg("camwatch stopped gracefully")
}

// buildNotifier assembles the enabled alert sinks in delivery order.
func buildNotifier(cfg *config.Config, hub *notify.Hub) *notify.Fanout {
	var targets []notify.Target
	if cfg.Notify.LogEnabled {
		targets = append(targets, notify.Target{Name: "log", Notifier: notify.NewLog()})
	}
	if hub != nil {
		targets = append(targets, notify.Target{Name: "hub", Notifier: hub})
	}
	if cfg.Notify.Webhook.Enabled {
		targets = append(targets, notify.Target{Name: "webhook", Notifier: notify.NewWebhook(cfg.Notify.Webhook)})
	}
	return notify.NewFanout(targets...)
}
