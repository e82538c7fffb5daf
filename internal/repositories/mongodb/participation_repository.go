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
)

// Compile-time check to ensure ParticipationRepository implements the interface
var _ repositories.ParticipationRepository = (*ParticipationRepository)(nil)

// ParticipationRepository handles MongoDB operations for BetParticipation
type ParticipationRepository struct {
	collection *mongo.Collection
}

// NewParticipationRepository creates a new ParticipationRepository
func NewParticipationRepository(db *mongo.Database) *ParticipationRepository {
	return &ParticipationRepository{
		collection: db.Collection("bet_participations"),
	}
}

// Create inserts a new participation. The unique (betId, userId) index makes
// a second stake by the same user on the same bet fail here rather than in a
// racy existence pre-check.
func (r *ParticipationRepository) Create(ctx context.Context, participation *models.BetParticipation) error {
	participation.ID = primitive.NewObjectID()
	participation.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, participation)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateParticipation
	}
	return err
}

// FindByBet retrieves all participations on a bet
func (r *ParticipationRepository) FindByBet(ctx context.Context, betID primitive.ObjectID) ([]*models.BetParticipation, error) {
	return r.find(ctx, bson.M{"betId": betID})
}

// FindByUser retrieves all participations of a user
func (r *ParticipationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.BetParticipation, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *ParticipationRepository) find(ctx context.Context, filter bson.M) ([]*models.BetParticipation, error) {
	var participations []*models.BetParticipation
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &participations); err != nil {
		return nil, err
	}
	if participations == nil {
		participations = []*models.BetParticipation{}
	}
	return participations, nil
}

// FindByIdempotencyKey finds the participation a retried write already created
func (r *ParticipationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*models.BetParticipation, error) {
	var participation models.BetParticipation
	err := r.collection.FindOne(ctx, bson.M{"idempotencyKey": key}).Decode(&participation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("participation with idempotency key %s: %w", key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

// SettleByBet flips all active participations on a bet to their terminal
// status in two bulk updates: won for the winning option, lost for the rest.
// Callers run this inside a transaction together with the bet status change.
func (r *ParticipationRepository) SettleByBet(ctx context.Context, betID, winningOptionID primitive.ObjectID) error {
	won := bson.M{"betId": betID, "optionId": winningOptionID}
	if _, err := r.collection.UpdateMany(ctx, won, bson.M{"$set": bson.M{"status": models.ParticipationStatusWon}}); err != nil {
		return err
	}
	lost := bson.M{"betId": betID, "optionId": bson.M{"$ne": winningOptionID}}
	if _, err := r.collection.UpdateMany(ctx, lost, bson.M{"$set": bson.M{"status": models.ParticipationStatusLost}}); err != nil {
		return err
	}
	return nil
}
