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

// Compile-time check to ensure ChallengeRepository implements the interface
var _ repositories.ChallengeRepository = (*ChallengeRepository)(nil)

// ChallengeRepository handles MongoDB operations for Challenge and its
// participant, justification and vote collections
type ChallengeRepository struct {
	challenges     *mongo.Collection
	participants   *mongo.Collection
	justifications *mongo.Collection
	votes          *mongo.Collection
}

// NewChallengeRepository creates a new ChallengeRepository
func NewChallengeRepository(db *mongo.Database) *ChallengeRepository {
	return &ChallengeRepository{
		challenges:     db.Collection("challenges"),
		participants:   db.Collection("challenge_participations"),
		justifications: db.Collection("challenge_justifications"),
		votes:          db.Collection("challenge_votes"),
	}
}

// Create inserts a new challenge
func (r *ChallengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	challenge.ID = primitive.NewObjectID()
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = time.Now()
	_, err := r.challenges.InsertOne(ctx, challenge)
	return err
}

// FindByID finds a challenge by ID
func (r *ChallengeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.challenges.FindOne(ctx, bson.M{"_id": id}).Decode(&challenge)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("challenge %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FindByGroup retrieves all challenges in a group, newest first
func (r *ChallengeRepository) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.challenges.Find(ctx, bson.M{"groupId": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &challenges); err != nil {
		return nil, err
	}
	if challenges == nil {
		challenges = []*models.Challenge{}
	}
	return challenges, nil
}

// Update updates an existing challenge
func (r *ChallengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	challenge.UpdatedAt = time.Now()
	filter := bson.M{"_id": challenge.ID}
	update := bson.M{"$set": challenge}
	_, err := r.challenges.UpdateOne(ctx, filter, update)
	return err
}

// IncrementPrize atomically adds amount to the challenge's total prize
func (r *ChallengeRepository) IncrementPrize(ctx context.Context, challengeID primitive.ObjectID, amount int64) error {
	filter := bson.M{"_id": challengeID}
	update := bson.M{
		"$inc": bson.M{"totalPrize": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.challenges.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("challenge %s: %w", challengeID.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

// AddParticipant inserts a participant record. The unique
// (challengeId, userId) index rejects a second join.
func (r *ChallengeRepository) AddParticipant(ctx context.Context, participant *models.ChallengeParticipant) error {
	participant.ID = primitive.NewObjectID()
	participant.CreatedAt = time.Now()
	_, err := r.participants.InsertOne(ctx, participant)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrAlreadyParticipating
	}
	return err
}

// FindParticipants retrieves all participants of a challenge
func (r *ChallengeRepository) FindParticipants(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeParticipant, error) {
	var participants []*models.ChallengeParticipant
	cursor, err := r.participants.Find(ctx, bson.M{"challengeId": challengeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []*models.ChallengeParticipant{}
	}
	return participants, nil
}

// FindParticipant returns the participant record for (challenge, user)
func (r *ChallengeRepository) FindParticipant(ctx context.Context, challengeID, userID primitive.ObjectID) (*models.ChallengeParticipant, error) {
	var participant models.ChallengeParticipant
	filter := bson.M{"challengeId": challengeID, "userId": userID}
	err := r.participants.FindOne(ctx, filter).Decode(&participant)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("challenge participant: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// AddJustification inserts a justification. The unique (challengeId, userId)
// index rejects a second submission by the same participant.
func (r *ChallengeRepository) AddJustification(ctx context.Context, justification *models.ChallengeJustification) error {
	justification.ID = primitive.NewObjectID()
	justification.CreatedAt = time.Now()
	_, err := r.justifications.InsertOne(ctx, justification)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateSubmission
	}
	return err
}

// FindJustifications retrieves all justifications of a challenge
func (r *ChallengeRepository) FindJustifications(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeJustification, error) {
	var justifications []*models.ChallengeJustification
	cursor, err := r.justifications.Find(ctx, bson.M{"challengeId": challengeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &justifications); err != nil {
		return nil, err
	}
	if justifications == nil {
		justifications = []*models.ChallengeJustification{}
	}
	return justifications, nil
}

// FindJustificationByID finds a justification by ID
func (r *ChallengeRepository) FindJustificationByID(ctx context.Context, id primitive.ObjectID) (*models.ChallengeJustification, error) {
	var justification models.ChallengeJustification
	err := r.justifications.FindOne(ctx, bson.M{"_id": id}).Decode(&justification)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("justification %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &justification, nil
}

// AddVote inserts a vote. The unique (justificationId, userId) index rejects
// a second vote by the same user.
func (r *ChallengeRepository) AddVote(ctx context.Context, vote *models.ChallengeVote) error {
	vote.ID = primitive.NewObjectID()
	vote.CreatedAt = time.Now()
	_, err := r.votes.InsertOne(ctx, vote)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateVote
	}
	return err
}

// FindVotes retrieves all votes on a justification
func (r *ChallengeRepository) FindVotes(ctx context.Context, justificationID primitive.ObjectID) ([]models.ChallengeVote, error) {
	var votes []models.ChallengeVote
	cursor, err := r.votes.Find(ctx, bson.M{"justificationId": justificationID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &votes); err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []models.ChallengeVote{}
	}
	return votes, nil
}
