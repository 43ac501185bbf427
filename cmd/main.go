package main

import (
	"context"
	"errors"
	"fmt"
	"loan-service/internal/api"
	"loan-service/internal/api/middleware"
	"loan-service/internal/batch"
	"loan-service/internal/config"
	"loan-service/internal/domain/loan"
	"loan-service/internal/event"
	"loan-service/internal/infrastructure/database/memory"
	"loan-service/internal/infrastructure/database/postgres"
	"loan-service/internal/infrastructure/database/redisstore"
	"loan-service/internal/infrastructure/logging"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "loan-service/docs"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/robfig/cron/v3"
)

// @title Loan Service API
// @version 1.0
// @description CRUD API for personal, car and home loans with per-type validation and monthly payment calculation.
// @termsOfService http://loan-service.com/terms/

// @contact.name API Support
// @contact.url http://loan-service.com/support
// @contact.email support@loan-service.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	redisClient := initializeRedisClient(cfg, logger)
	loanRepo, closeStore := initializeRepository(cfg, redisClient, logger)
	defer closeStore()
	rabbitMQConn, err := setupRabbitMQ(cfg, logger)
	if err != nil {
		logger.Warn("Domain events disabled", slog.Any("error", err))
	}
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger)
	loanService := initializeServices(cfg, loanRepo, rabbitMQConn, logger)

	loanBookJob := batch.NewLoanBookJob(loanRepo, logger)
	cronScheduler := startBatchJobs(cfg, logger, loanBookJob)
	router := api.SetupRouter(loanService, rateLimiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, rateLimiter, rabbitMQConn, redisClient, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "config_source", cfg.Source, "storage", cfg.Storage.Driver)

	return cfg, logger
}

// initializeRepository opens the configured store and returns it with its closer.
func initializeRepository(cfg *config.Config, redisClient redis.UniversalClient, logger *slog.Logger) (loan.Repository, func()) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Info("Using in-memory loan store; data is lost on exit.")
		return memory.NewLoanRepository(), func() {}

	case config.StorageDriverRedis:
		if redisClient == nil {
			logger.Error("Redis storage selected but no Redis client is available")
			os.Exit(1)
		}
		return redisstore.NewLoanRepository(redisClient, cfg.Redis.KeyPrefix, logger), func() {}

	case config.StorageDriverPostgres, "":
		logger.Info("Initializing database connection pool...")
		dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
		if err != nil {
			logger.Error("Failed to initialize database connection pool", "error", err)
			os.Exit(1)
		}
		repo := postgres.NewLoanRepository(dbPool, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to ensure loan schema", "error", err)
			dbPool.Close()
			os.Exit(1)
		}
		return repo, func() {
			logger.Info("Closing database connection pool...")
			dbPool.Close()
		}

	default:
		logger.Error("Unknown storage driver", "driver", cfg.Storage.Driver)
		os.Exit(1)
		return nil, nil
	}
}

func initializeServices(cfg *config.Config, loanRepo loan.Repository, rabbitConn *amqp.Connection, logger *slog.Logger) loan.LoanService {
	logger.Info("Initializing application components...")

	var publisher event.LoanEventPublisher
	if rabbitConn != nil {
		p, err := event.NewRabbitMQEventPublisher(rabbitConn, cfg.RabbitMQ.ExchangeName, logger)
		if err != nil {
			logger.Error("Failed to create event publisher, events disabled", slog.Any("error", err))
		} else {
			publisher = p
		}
	}

	validator := loan.NewValidator(rangeTable(cfg.Loan.Validation), logger)
	terms := loan.NewTermResolver(loan.TermTable(cfg.Loan.Terms))
	return loan.NewLoanService(loanRepo, validator, terms, publisher, logger)
}

func rangeTable(cfg config.LoanValidationConfig) loan.RangeTable {
	toRange := func(c config.LoanRangeConfig) loan.Range {
		return loan.Range{
			MinAmount:       c.MinAmount,
			MaxAmount:       c.MaxAmount,
			MinInterestRate: c.MinInterestRate,
			MaxInterestRate: c.MaxInterestRate,
		}
	}
	return loan.RangeTable{
		loan.TypePersonal: toRange(cfg.PersonalLoan),
		loan.TypeCar:      toRange(cfg.CarLoan),
		loan.TypeHome:     toRange(cfg.HomeLoan),
	}
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, rateLimiter *middleware.RateLimiterMiddleware, rabbitConn *amqp.Connection,
	redisClient redis.UniversalClient, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason := waitForShutdownTrigger(shutdownChan, serverErrors, logger)

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	stopCronScheduler(cronScheduler, logger)
	shutdownHTTPServer(srv, serverErrors, logger)
	if rateLimiter != nil {
		rateLimiter.Close()
	}
	closeRabbitMQConnection(rabbitConn, logger)
	closeRedisClient(redisClient, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) string {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.", "error", err)
		return "server exited"
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
		return
	}
	if rabbitConn.IsClosed() {
		logger.Info("RabbitMQ connection already closed, skipping close.")
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := rabbitConn.Close(); err != nil {
		logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
	} else {
		logger.Info("RabbitMQ connection closed.")
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}

func needsRedis(cfg *config.Config) bool {
	if cfg.Storage.Driver == config.StorageDriverRedis {
		return true
	}
	return cfg.Server.RateLimit.Enabled && cfg.Server.RateLimit.Backend == config.RateLimitBackendRedis
}

// initializeRedisClient returns nil when neither storage nor rate limiting uses Redis.
func initializeRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !needsRedis(cfg) {
		logger.Info("Redis is not required by configuration, skipping client setup.")
		return nil
	}

	logger.Info("Initializing central Redis client...")
	if cfg.Redis.Addr == "" {
		logger.Error("Redis address (addr) is not configured.")
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if status := rdb.Ping(ctx); status.Err() != nil {
		logger.Error("Failed to connect to Redis", "error", status.Err(), "addr", cfg.Redis.Addr)
		_ = rdb.Close()
		os.Exit(1)
	}

	logger.Info("Central Redis client connected successfully.", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb
}

func closeRedisClient(redisClient redis.UniversalClient, logger *slog.Logger) {
	if redisClient == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	logger.Info("Closing central Redis client connection...")
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close central Redis client connection gracefully", "error", err)
	} else {
		logger.Info("Central Redis client connection closed.")
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, loanBookJob *batch.LoanBookJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.LoanBookSchedule
	if scheduleSpec == "" {
		scheduleSpec = "*/15 * * * *"
		logger.Warn("Loan book schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.LoanBookTimeout
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "LoanBook")
		jobLogger.Info("Cron triggered: Running loan book job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := loanBookJob.Run(ctx); runErr != nil {
			jobLogger.Error("Loan book job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Loan book job finished successfully.")
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule loan book job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled loan book job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func connectRabbitMQ(uri string, logger *slog.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	retryCount := 5
	for i := 1; i <= retryCount; i++ {
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")

			go func() {
				blockChan := conn.NotifyBlocked(make(chan amqp.Blocking))
				closeChan := conn.NotifyClose(make(chan *amqp.Error))

				select {
				case b := <-blockChan:
					logger.Warn("RabbitMQ Connection Blocked", "reason", b.Reason)
				case e := <-closeChan:
					if e != nil {
						logger.Error("RabbitMQ Connection Closed", slog.Any("error", e))
					}
				}
			}()

			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", retryCount),
			slog.Any("error", err),
		)
		time.Sleep(time.Duration(i*2) * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", retryCount, err)
}

func rabbitMQURI(cfg config.RabbitMQConfig) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("RabbitMQ host is not configured")
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return "", fmt.Errorf("RabbitMQ username and password must be provided together")
	}
	port := cfg.Port
	if port == 0 {
		port = 5672
	}

	uri := url.URL{
		Scheme: "amqp",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
	}
	if cfg.Username != "" {
		uri.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return uri.String(), nil
}

// setupRabbitMQ returns a nil connection when events are disabled.
func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ is disabled via configuration.")
		return nil, nil
	}

	uri, err := rabbitMQURI(cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	conn, err := connectRabbitMQ(uri, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		return nil, err
	}
	return conn, nil
}
