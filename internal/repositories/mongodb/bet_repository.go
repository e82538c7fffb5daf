package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure BetRepository implements the interface
var _ repositories.BetRepository = (*BetRepository)(nil)

// BetRepository handles MongoDB operations for Bet
type BetRepository struct {
	collection *mongo.Collection
}

// NewBetRepository creates a new BetRepository
func NewBetRepository(db *mongo.Database) *BetRepository {
	return &BetRepository{
		collection: db.Collection("bets"),
	}
}

// Create inserts a new bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	bet.ID = primitive.NewObjectID()
	bet.CreatedAt = time.Now()
	bet.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, bet)
	return err
}

// FindByID finds a bet by ID
func (r *BetRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error) {
	var bet models.Bet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("bet %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// FindByGroup retrieves all bets in a group, newest first
func (r *BetRepository) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Bet, error) {
	var bets []*models.Bet
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &bets); err != nil {
		return nil, err
	}
	if bets == nil {
		bets = []*models.Bet{}
	}
	return bets, nil
}

// Update updates an existing bet
func (r *BetRepository) Update(ctx context.Context, bet *models.Bet) error {
	bet.UpdatedAt = time.Now()
	filter := bson.M{"_id": bet.ID}
	update := bson.M{"$set": bet}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}
