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

// Compile-time check to ensure GroupRepository implements the interface
var _ repositories.GroupRepository = (*GroupRepository)(nil)

// GroupRepository handles MongoDB operations for Group
type GroupRepository struct {
	collection *mongo.Collection
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{
		collection: db.Collection("groups"),
	}
}

// Create inserts a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID()
	group.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, group)
	if mongo.IsDuplicateKeyError(err) {
		// invite code collision, caller may regenerate and retry
		return fmt.Errorf("invite code taken: %w", apperrors.ErrDuplicate)
	}
	return err
}

// FindByID finds a group by ID
func (r *GroupRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("group %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByInviteCode finds a group by its invite code
func (r *GroupRepository) FindByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"inviteCode": code}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("group with invite code %s: %w", code, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}
