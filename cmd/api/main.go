package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/donazulmira/moradores-backend/api/routes"
	"github.com/donazulmira/moradores-backend/internal/ai"
	"github.com/donazulmira/moradores-backend/internal/auth"
	"github.com/donazulmira/moradores-backend/internal/doctors"
	"github.com/donazulmira/moradores-backend/internal/doses"
	"github.com/donazulmira/moradores-backend/internal/evolutions"
	"github.com/donazulmira/moradores-backend/internal/medications"
	"github.com/donazulmira/moradores-backend/internal/prescriptions"
	"github.com/donazulmira/moradores-backend/internal/reports"
	"github.com/donazulmira/moradores-backend/internal/residents"
	"github.com/donazulmira/moradores-backend/internal/users"
	"github.com/donazulmira/moradores-backend/pkg/auth/session"
	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/db"
	"github.com/donazulmira/moradores-backend/pkg/gemini"
	"github.com/donazulmira/moradores-backend/pkg/instance"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"github.com/donazulmira/moradores-backend/pkg/mailer"
	"github.com/donazulmira/moradores-backend/pkg/metrics"
	"github.com/donazulmira/moradores-backend/pkg/migrate"
	"github.com/donazulmira/moradores-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.AutoRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisClient *redis.Client
		sessions    auth.SessionManager
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()

		manager, err := session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			return err
		}
		sessions = manager
	} else {
		logg.Warn(ctx, "redis disabled: rate limits, idempotency and refresh revocation are off")
	}

	mail, err := mailer.NewSMTP(cfg.Mail)
	if err != nil {
		return err
	}

	var generator gemini.Generator
	if cfg.AI.Enabled() {
		client, err := gemini.New(ctx, cfg.AI, logg)
		if err != nil {
			return err
		}
		generator = client
	} else {
		logg.Warn(ctx, "gemini api key missing: ai report generation disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Metrics:  m,
		Gatherer: reg,
		DB:       dbClient,
		Redis:    redisClient,
		Users:    userRepo,
	}

	if deps.AuthService, err = auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		Mailer:         mail,
		Metrics:        m,
		Logger:         logg,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		ResetConfig:    cfg.PasswordReset,
		MailConfig:     cfg.Mail,
	}); err != nil {
		return err
	}
	if deps.UserService, err = users.NewService(users.ServiceParams{
		Repo:           userRepo,
		PasswordConfig: cfg.Password,
	}); err != nil {
		return err
	}
	if deps.ResidentService, err = residents.NewService(residents.ServiceParams{
		Repo: residents.NewRepository(gdb),
	}); err != nil {
		return err
	}
	if deps.DoctorService, err = doctors.NewService(doctors.ServiceParams{
		Repo: doctors.NewRepository(gdb),
	}); err != nil {
		return err
	}
	if deps.MedicationService, err = medications.NewService(medications.ServiceParams{
		Repo: medications.NewRepository(gdb),
	}); err != nil {
		return err
	}
	prescriptionRepo := prescriptions.NewRepository(gdb)
	if deps.PrescriptionService, err = prescriptions.NewService(prescriptions.ServiceParams{
		Tx:   dbClient,
		Repo: prescriptionRepo,
	}); err != nil {
		return err
	}
	if deps.PrescriptionItems, err = prescriptions.NewItemService(prescriptionRepo); err != nil {
		return err
	}
	if deps.DoseService, err = doses.NewService(doses.ServiceParams{
		Repo: doses.NewRepository(gdb),
	}); err != nil {
		return err
	}
	if deps.EvolutionService, err = evolutions.NewService(evolutions.ServiceParams{
		Repo: evolutions.NewRepository(gdb),
	}); err != nil {
		return err
	}
	if deps.ReportService, err = reports.NewService(reports.ServiceParams{
		Repo: reports.NewRepository(gdb),
	}); err != nil {
		return err
	}
	if deps.AIService, err = ai.NewService(ai.ServiceParams{
		Entries:   ai.NewEntryRepository(gdb),
		Generator: generator,
		Metrics:   m,
		Logger:    logg,
		Location:  cfg.App.Location(),
	}); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
