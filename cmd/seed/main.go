package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"murdermystery/config"
	"murdermystery/internal/logger"
	"murdermystery/internal/model"
	"murdermystery/internal/repository"
	"murdermystery/internal/service"
)

// Seeds a demo lobby so a host can start a game right away.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", true)
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// Lobby setup never touches votes or snapshots.
	games := service.NewGameService(repository.NewGameRepo(db), nil, nil, service.NewCodeService(cfg.PlayerCodeSecret))

	g, err := games.CreateLobby(ctx, model.GameSettings{
		Theme:         model.ThemeHoliday,
		MurdererCount: 1,
		SupportRoles:  []model.Role{model.RoleDetective, model.RoleReviver},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create lobby")
	}

	guests := []model.JoinRequest{
		{Name: "Scarlett", Email: "scarlett@example.com"},
		{Name: "Mustard"},
		{Name: "White", Phone: "+15550100"},
		{Name: "Green"},
		{Name: "Peacock", Email: "peacock@example.com"},
		{Name: "Plum"},
	}

	fmt.Printf("Lobby %s\n", g.Code)
	for _, guest := range guests {
		resp, err := games.JoinLobby(ctx, g.Code, guest)
		if err != nil {
			log.Fatal().Err(err).Str("player", guest.Name).Msg("failed to join lobby")
		}
		fmt.Printf("  %-10s %s\n", guest.Name, resp.Code)
	}

	log.Info().Str("game", g.Code).Int("players", len(guests)).Msg("demo lobby seeded")
}
