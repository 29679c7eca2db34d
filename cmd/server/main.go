package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appstore.backend/internal/config"
	"appstore.backend/internal/infrastructure/datasources/postgres"
	"appstore.backend/internal/infrastructure/jobs"
	"appstore.backend/internal/infrastructure/mail"
	"appstore.backend/internal/infrastructure/metrics"
	"appstore.backend/internal/infrastructure/queue"
	"appstore.backend/internal/infrastructure/repositories"
	"appstore.backend/internal/interfaces/http/handlers"
	"appstore.backend/internal/interfaces/http/middleware"
	"appstore.backend/internal/usecases"
	"appstore.backend/pkg/jwt"
	"appstore.backend/pkg/logger"
	"appstore.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

var (
	loadDotenv    = godotenv.Load
	loadCfg       = config.Load
	initLog       = logger.Init
	initRedis     = redis.Init
	openDB        = postgres.NewConnection
	runMigrations = postgres.RunMigrations
	newMailSender = queue.NewMailSender
	runServer     = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB      = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }

	startMailWorker = func(cfg *config.Config) (func(), error) {
		opt, err := queue.RedisOptions(cfg.Redis.URL, cfg.Redis.PASSWORD)
		if err != nil {
			return nil, err
		}
		srv, mux := queue.NewServer(opt, queue.NewSMTPSender(cfg.Mail))
		if err := srv.Start(mux); err != nil {
			return nil, err
		}
		return srv.Shutdown, nil
	}

	shutdownSignal = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	redisEnabled := cfg.Redis.URL != ""
	if redisEnabled {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "REDIS_URL not set, resend cooldown and sweep lock disabled")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info(ctx, "Database migrations applied")
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL")

	sender, senderCloser, err := newMailSender(cfg.Mail, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to configure mail transport: %w", err)
	}
	defer senderCloser.Close()

	if cfg.Mail.Transport == config.MailTransportQueue {
		stopWorker, err := startMailWorker(cfg)
		if err != nil {
			return fmt.Errorf("failed to start mail worker: %w", err)
		}
		defer stopWorker()
		logger.Info(ctx, "Mail queue worker started")
	}

	mailer, err := mail.NewAccountMailer(sender, cfg.Mail.SubjectPrefix, cfg.Mail.SiteName)
	if err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	accountRepo := repositories.NewAccountRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	uow := repositories.NewUnitOfWork(db)

	codeUsecase := usecases.NewVerificationCodeUsecase(codeRepo, uow, mailer, usecases.CodePolicy{
		Length:        cfg.OTP.Length,
		MaxAttempts:   cfg.OTP.MaxAttempts,
		TTL:           cfg.OTP.TTL,
		ActivationTTL: cfg.OTP.ActivationTTL,
	})
	codeUsecase.SetMetrics(collector)
	if redisEnabled && cfg.OTP.ResendCooldown > 0 {
		codeUsecase.SetThrottle(redis.NewCooldown(redis.GetClient(), "otp:cooldown:", cfg.OTP.ResendCooldown))
	}

	authUsecase := usecases.NewAuthUsecase(accountRepo, uow, codeUsecase, jwtService)
	resetUsecase := usecases.NewPasswordResetUsecase(accountRepo, uow, codeUsecase, mailer)
	resetUsecase.SetMetrics(collector)
	deletionUsecase := usecases.NewAccountDeletionUsecase(accountRepo, uow, codeUsecase, mailer, cfg.Deletion.GracePeriod)
	deletionUsecase.SetMetrics(collector)
	sweepUsecase := usecases.NewDeletionSweepUsecase(accountRepo, uow, mailer, cfg.Sweeper.BatchSize)
	sweepUsecase.SetMetrics(collector)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	defer rateLimiter.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r, metrics.Handler(registry))
	registerAPIV1Routes(r, routeDeps{
		authHandler:          handlers.NewAuthHandler(authUsecase),
		passwordResetHandler: handlers.NewPasswordResetHandler(resetUsecase),
		deletionHandler:      handlers.NewAccountDeletionHandler(deletionUsecase),
		authMiddleware:       middleware.AuthMiddleware(jwtService),
		rateLimitMiddleware:  rateLimiter.Middleware(),
	})

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Sweeper.Enabled {
		sweepJob := jobs.NewAccountDeletionSweepJob(sweepUsecase, codeUsecase, cfg.Sweeper.Schedule)
		if redisEnabled {
			sweepJob.SetLock(redis.NewLock(redis.GetClient(), "lock:account-deletion-sweep", cfg.Sweeper.LockTTL))
		}
		if err := sweepJob.Start(jobCtx); err != nil {
			return err
		}
		defer sweepJob.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-shutdownSignal()
		logger.Info(ctx, "Shutting down server")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "App store backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
