package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MattHurst33/replit-calander-sub000/internal/api"
	meetings_module "github.com/MattHurst33/replit-calander-sub000/internal/api/modules/meetings"
	reports_module "github.com/MattHurst33/replit-calander-sub000/internal/api/modules/reports"
	"github.com/MattHurst33/replit-calander-sub000/internal/gsuite"
	store "github.com/MattHurst33/replit-calander-sub000/internal/stores/grooming"
	"github.com/MattHurst33/replit-calander-sub000/pkg/groomstats"
	"github.com/MattHurst33/replit-calander-sub000/pkg/invites"
	"github.com/MattHurst33/replit-calander-sub000/pkg/mailqueue"
	"github.com/MattHurst33/replit-calander-sub000/pkg/qualify"
	"github.com/MattHurst33/replit-calander-sub000/pkg/reschedule"
	"github.com/MattHurst33/replit-calander-sub000/pkg/scheduler"
	"github.com/MattHurst33/replit-calander-sub000/pkg/slots"
	"github.com/MattHurst33/replit-calander-sub000/pkg/utils"
)

func main() {
	// Load global configuration
	cfg := utils.NewConfigFromEnv(".env")

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.GetWithDefault("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}
	if cfg.GetBool("LOG_JSON") {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database-backed store
	if !cfg.Has("DATABASE_URL") {
		log.Fatal("DATABASE_URL is required")
	}
	groomingStore, err := store.NewStore(cfg.Get("DATABASE_URL"))
	if err != nil {
		log.WithError(err).Fatal("failed to initialize grooming store")
	}

	// Initialize Google integrations
	accounts, err := gsuite.LoadAccounts(cfg.GetWithDefault("GOOGLE_ACCOUNTS_YAML", "accounts.yaml"), log)
	if err != nil {
		log.WithError(err).Fatal("failed to load google accounts")
	}
	calendarProvider := gsuite.NewCalendarProvider(accounts)
	mailSender := gsuite.NewMailSender(accounts)

	// Initialize engine components
	queue := mailqueue.New(groomingStore, mailSender, log)
	engine := qualify.NewEngine(groomingStore, groomingStore, groomingStore, calendarProvider, queue, log)
	finder := slots.NewFinder(groomingStore)
	coordinator := reschedule.NewCoordinator(groomingStore, groomingStore, finder, queue, log)
	invitePoller := invites.NewPoller(groomingStore, calendarProvider, log)
	aggregator := groomstats.NewAggregator(groomingStore, groomingStore, log)

	// Register pollers with the supervisor
	supervisor := scheduler.NewSupervisor(log)
	pollers := []struct {
		poller   scheduler.Poller
		key      string
		fallback int // minutes
	}{
		{queue, "EMAIL_QUEUE_INTERVAL_MINUTES", 2},
		{coordinator, "RESCHEDULE_INTERVAL_MINUTES", 15},
		{invitePoller, "INVITE_INTERVAL_MINUTES", 30},
		{aggregator, "METRICS_INTERVAL_MINUTES", 30},
	}
	for _, entry := range pollers {
		interval := time.Duration(cfg.GetIntWithDefault(entry.key, entry.fallback)) * time.Minute
		if err := supervisor.Register(entry.poller, interval); err != nil {
			log.WithError(err).Fatal("failed to register poller")
		}
	}
	supervisor.Start()

	// Start the driver API
	server := api.NewServer(cfg, &api.Services{
		Meetings: meetings_module.NewController(engine, coordinator, invitePoller, groomingStore, groomingStore),
		Reports:  reports_module.NewController(aggregator, groomingStore),
	})

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()
	log.WithField("addr", server.Addr).Info("grooming engine started")

	// Wait for shutdown signal, then stop pollers before the API
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	supervisor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}
