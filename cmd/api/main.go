package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusvote/halalan/internal/app/elections"
	"github.com/campusvote/halalan/internal/app/httpapi"
	"github.com/campusvote/halalan/internal/app/notify"
	"github.com/campusvote/halalan/internal/app/registry"
	"github.com/campusvote/halalan/internal/app/voterroll"
	"github.com/campusvote/halalan/internal/app/voting"
	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/clock"
	"github.com/campusvote/halalan/internal/platform/config"
	"github.com/campusvote/halalan/internal/platform/health"
	"github.com/campusvote/halalan/internal/platform/ids"
	"github.com/campusvote/halalan/internal/platform/logger"
	"github.com/campusvote/halalan/internal/platform/migrations"
	"github.com/campusvote/halalan/internal/platform/ratelimit"
	"github.com/campusvote/halalan/internal/platform/storage/objectstore"
	"github.com/campusvote/halalan/internal/platform/storage/postgres"
	redisstore "github.com/campusvote/halalan/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("api: load config", "error", err)
	}

	db, err := postgres.Open(ctx, cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("api: open postgres", "error", err)
	}

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("api: run migrations", "error", err)
		}
	}

	redisClient, err := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("api: connect redis", "error", err)
	}
	defer redisClient.Close()

	store, err := objectstore.NewLocal(cfg.ObjectStoreDir, cfg.ObjectStoreBaseURL)
	if err != nil {
		logger.Fatal("api: init object store", "error", err)
	}

	var (
		sysClock = clock.SystemClock{}
		idsGen   = ids.DefaultGenerator()

		electionRepo     = postgres.NewElectionRepository(db)
		positionRepo     = postgres.NewPositionRepository(db)
		collegeRepo      = postgres.NewCollegeRepository(db)
		partylistRepo    = postgres.NewPartylistRepository(db)
		profileRepo      = postgres.NewProfileRepository(db)
		candidacyRepo    = postgres.NewCandidacyRepository(db)
		voterRepo        = postgres.NewVoterRepository(db)
		voteRepo         = postgres.NewVoteRepository(db)
		notificationRepo = postgres.NewNotificationRepository(db)

		taskQueue = redisstore.NewTaskQueue(redisClient, cfg.TaskQueueKey)
		tally     = redisstore.NewTally(redisClient, cfg.TallyKeyPrefix)
	)

	var limiter domain.VoteLimiter = ratelimit.NewNoop()
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewRedisLimiter(
			redisClient,
			cfg.RateLimitMaxActions,
			time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
			cfg.RateLimitKeyPrefix,
		)
	}

	electionsSvc := elections.NewService(electionRepo, sysClock, idsGen)
	registrySvc := registry.NewService(
		positionRepo, collegeRepo, partylistRepo, candidacyRepo, profileRepo, electionRepo,
		store, taskQueue, sysClock, idsGen,
		domain.ProfileID(cfg.AdminRecipientID),
	)
	votersSvc := voterroll.NewService(voterRepo, sysClock, idsGen)
	votingSvc := voting.NewService(voteRepo, voterRepo, candidacyRepo, profileRepo, tally, limiter, sysClock, idsGen)
	notifySvc := notify.NewService(notificationRepo, profileRepo)

	mux := http.NewServeMux()
	httpapi.New(electionsSvc, registrySvc, votersSvc, votingSvc, notifySvc).Register(mux)

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("api: get sql.DB", "error", err)
	}
	checker := health.NewChecker(sqlDB, redisClient)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api: listening", "address", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api: server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("api: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api: shutdown", "error", err)
	}
}
