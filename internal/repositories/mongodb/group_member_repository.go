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

// Compile-time check to ensure GroupMemberRepository implements the interface
var _ repositories.GroupMemberRepository = (*GroupMemberRepository)(nil)

// GroupMemberRepository handles MongoDB operations for GroupMember. Balance
// mutations use guarded $inc updates so each credit or debit is a single
// atomic document operation.
type GroupMemberRepository struct {
	collection *mongo.Collection
}

// NewGroupMemberRepository creates a new GroupMemberRepository
func NewGroupMemberRepository(db *mongo.Database) *GroupMemberRepository {
	return &GroupMemberRepository{
		collection: db.Collection("group_members"),
	}
}

// Create inserts a membership record. The unique (groupId, userId) index
// rejects a second join.
func (r *GroupMemberRepository) Create(ctx context.Context, member *models.GroupMember) error {
	member.ID = primitive.NewObjectID()
	member.JoinedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, member)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateMembership
	}
	return err
}

// Find returns the membership record for (group, user)
func (r *GroupMemberRepository) Find(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMember, error) {
	var member models.GroupMember
	filter := bson.M{"groupId": groupID, "userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByGroup retrieves all members of a group
func (r *GroupMemberRepository) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.GroupMember, error) {
	return r.find(ctx, bson.M{"groupId": groupID})
}

// FindByUser retrieves all memberships of a user
func (r *GroupMemberRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.GroupMember, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *GroupMemberRepository) find(ctx context.Context, filter bson.M) ([]*models.GroupMember, error) {
	var members []*models.GroupMember
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.GroupMember{}
	}
	return members, nil
}

// Credit atomically adds amount to the member's group-coin balance
func (r *GroupMemberRepository) Credit(ctx context.Context, groupID, userID primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive: %w", apperrors.ErrValidation)
	}
	filter := bson.M{"groupId": groupID, "userId": userID}
	update := bson.M{"$inc": bson.M{"groupCoins": amount}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}

// Debit atomically subtracts amount from the member's balance. The balance
// guard is part of the update filter, so a concurrent debit can never drive
// the balance negative.
func (r *GroupMemberRepository) Debit(ctx context.Context, groupID, userID primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive: %w", apperrors.ErrValidation)
	}
	filter := bson.M{
		"groupId":    groupID,
		"userId":     userID,
		"groupCoins": bson.M{"$gte": amount},
	}
	update := bson.M{"$inc": bson.M{"groupCoins": -amount}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing member from an uncovered debit
		if _, findErr := r.Find(ctx, groupID, userID); findErr != nil {
			return findErr
		}
		return apperrors.ErrInsufficientBalance
	}
	return nil
}
