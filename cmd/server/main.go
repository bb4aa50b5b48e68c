package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"murdermystery/config"
	"murdermystery/internal/cache"
	"murdermystery/internal/logger"
	"murdermystery/internal/repository"
	"murdermystery/internal/service"
	"murdermystery/internal/transport/rest"
	"murdermystery/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", true)
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	ctx := context.Background()

	// Game store
	var repo repository.GameRepo
	switch cfg.StoreBackend {
	case config.BackendMemory:
		repo = repository.NewMemoryGameRepo()
		log.Warn().Msg("using in-memory game store; games are lost on restart")
	default:
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer mongoClient.Disconnect(context.Background())

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal().Err(err).Msg("failed to ping MongoDB")
		}

		db := mongoClient.Database(cfg.MongoDB)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to create indexes")
		}
		repo = repository.NewGameRepo(db)
		log.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr()).Msg("failed to ping Redis")
	}
	log.Info().Str("addr", cfg.RedisAddr()).Msg("connected to Redis")

	// Initialize caches
	votes := cache.NewVoteCache(rdb)
	snapshots := cache.NewSnapshotCache(rdb, cfg.SnapshotTTL)

	// Initialize services
	codes := service.NewCodeService(cfg.PlayerCodeSecret)
	gameSvc := service.NewGameService(repo, votes, snapshots, codes)
	voteSvc := service.NewVoteService(gameSvc, votes)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	wsHub := ws.NewHub()
	gameSvc.SetBroadcaster(wsHub)
	voteSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		GameService: gameSvc,
		VoteService: voteSvc,
		WSHub:       wsHub,
		CORSOrigins: rest.ParseOrigins(cfg.CORSOrigins),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
