package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dayflow/dayflow-backend/internal/hr/client"
	"github.com/dayflow/dayflow-backend/internal/hr/credential"
	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/feed"
	"github.com/dayflow/dayflow-backend/internal/hr/handler"
	"github.com/dayflow/dayflow-backend/internal/hr/jwt"
	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/internal/hr/store"
	"github.com/dayflow/dayflow-backend/pkg/config"
	"github.com/dayflow/dayflow-backend/pkg/database"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
	"github.com/dayflow/dayflow-backend/pkg/messaging"
)

const serviceName = "hr-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithLevel(serviceName, cfg.Server.Environment, cfg.Server.LogLevel)
	log.Info().Str("store", cfg.Store.Backend).Msg("starting HR Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store
	var (
		backing store.Store
		db      *database.DB
	)
	switch cfg.Store.Backend {
	case config.StoreFile:
		fs, err := store.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Store.DataDir).Msg("failed to open file store")
		}
		backing = fs
	case config.StorePostgres:
		db, err = database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		pg := store.NewPostgresStore(db)
		if err := pg.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		backing = pg
	default:
		backing = store.NewMemoryStore()
	}

	// Events
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.Publisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err = events.NewRabbitPublisher(rmq, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		publisher = events.NewPublisher(messaging.NopPublisher{}, log)
	}

	// Repositories
	s := store.WithNotify(backing, publisher.CollectionChanged)
	repos := repository.NewRepositories(s, repository.DefaultSeed(), cfg.Store.MaxRetries, log)

	hasher := credential.NewHasher(cfg.Auth.HashCredentials)
	jwtManager := jwt.NewManager(&cfg.JWT)
	workflow := registration.NewWorkflow(repos, hasher, publisher, log)

	var (
		registrations registration.API = workflow
		remote        *client.RegistrationClient
	)
	if cfg.Services.RegistrationURL != "" {
		token, err := jwtManager.Generate(repository.Session{
			ID:    service.AdminID,
			Email: "admin@dayflow.com",
			Name:  serviceName,
			Role:  repository.RoleAdmin,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to sign registration client token")
		}
		remote = client.NewRegistrationClient(cfg.Services.RegistrationURL, token.AccessToken, log)
		registrations = remote
		log.Info().Str("url", cfg.Services.RegistrationURL).Msg("using remote registration workflow")
	}

	// Initialize services
	employeeService := service.NewEmployeeService(repos, publisher, log)
	attendanceService := service.NewAttendanceService(repos, publisher, log)
	leaveService := service.NewLeaveService(repos, publisher, log)
	payrollService := service.NewPayrollService(repos, publisher, log)
	authService := service.NewAuthService(repos, workflow, hasher, jwtManager, &cfg.Auth, log)
	reportService := service.NewReportService(repos)
	if remote != nil {
		authService.WithRemote(remote)
	}

	// Dashboard feed
	dashboard := feed.NewPoller[service.Dashboard](reportService.Dashboard, cfg.Feed.PollInterval, log)
	go dashboard.Run(ctx)

	if rmq != nil {
		// Each replica listens on its own queue so every dashboard cache refreshes
		consumer, err := feed.NewChangeConsumer(rmq, "", log, dashboard)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create change consumer")
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start change consumer")
		}
	}

	// Initialize handlers
	handlers := &handler.Handlers{
		Auth:          handler.NewAuthHandler(authService, jwtManager, log),
		Registrations: handler.NewRegistrationHandler(registrations, log),
		Employees:     handler.NewEmployeeHandler(employeeService, log),
		Attendance:    handler.NewAttendanceHandler(attendanceService, log),
		Leave:         handler.NewLeaveHandler(leaveService, log),
		Payroll:       handler.NewPayrollHandler(payrollService, log),
		Reports:       handler.NewReportHandler(reportService, dashboard, employeeService, attendanceService, payrollService, log),
	}

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
			"store":   cfg.Store.Backend,
		}
		if db != nil {
			health["database"] = db.Health(r.Context())
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	handlers.Mount(r)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
