package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"murdermystery/internal/model"
)

var (
	ErrVersionConflict = errors.New("game was modified concurrently")
	ErrDuplicateCode   = errors.New("game code already exists")
)

// GameRepo stores a game and its players as one record. Getters return nil, nil
// when nothing matches.
type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	GetByCode(ctx context.Context, code string) (*model.Game, error)
	GetByPlayerCode(ctx context.Context, playerCode string) (*model.Game, error)
	// Save replaces the stored game if its version still matches and bumps the version
	Save(ctx context.Context, game *model.Game) error
	// Replace swaps prev's session for next under the same code in one write. It
	// fails with ErrVersionConflict when prev is no longer the stored session.
	Replace(ctx context.Context, prev, next *model.Game) error
	List(ctx context.Context) ([]*model.Game, error)
	Delete(ctx context.Context, code string) error
}

type gameRepo struct {
	collection *mongo.Collection
}

// NewGameRepo creates a Mongo-backed game repository
func NewGameRepo(db *mongo.Database) GameRepo {
	return &gameRepo{
		collection: db.Collection("games"),
	}
}

// EnsureIndexes creates the lookups the repository relies on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("games").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "players.code", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}},
	})
	return err
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	_, err := r.collection.InsertOne(ctx, game)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

func (r *gameRepo) findOne(ctx context.Context, filter bson.M) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, filter).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) GetByCode(ctx context.Context, code string) (*model.Game, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *gameRepo) GetByPlayerCode(ctx context.Context, playerCode string) (*model.Game, error) {
	return r.findOne(ctx, bson.M{"players.code": playerCode})
}

func (r *gameRepo) Save(ctx context.Context, game *model.Game) error {
	next := *game
	next.Version = game.Version + 1

	res, err := r.collection.ReplaceOne(ctx, bson.M{"id": game.ID, "version": game.Version}, &next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	game.Version = next.Version
	return nil
}

func (r *gameRepo) Replace(ctx context.Context, prev, next *model.Game) error {
	filter := bson.M{"code": prev.Code, "id": prev.ID, "version": prev.Version}
	res, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *gameRepo) List(ctx context.Context) ([]*model.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var games []*model.Game
	if err = cursor.All(ctx, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepo) Delete(ctx context.Context, code string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	return err
}
