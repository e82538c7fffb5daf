package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/repositories"
	"github.com/betmates/betmates-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// inviteCodeAttempts bounds retries when a generated invite code collides
// with an existing group.
const inviteCodeAttempts = 5

// Compile-time check to ensure groupService implements GroupService
var _ GroupService = (*groupService)(nil)

type groupService struct {
	groupRepo  repositories.GroupRepository
	memberRepo repositories.GroupMemberRepository
	txn        TxnRunner
}

// NewGroupService creates a new GroupService implementation
func NewGroupService(groupRepo repositories.GroupRepository, memberRepo repositories.GroupMemberRepository, txn TxnRunner) GroupService {
	return &groupService{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		txn:        txn,
	}
}

// CreateGroup creates a group and enrolls the creator as its first member
func (s *groupService) CreateGroup(ctx context.Context, createdBy primitive.ObjectID, name, description string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required: %w", apperrors.ErrValidation)
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}

	// Group plus creator membership is one atomic unit; a code collision
	// aborts the transaction and retries with a fresh code.
	var created bool
	for attempt := 0; attempt < inviteCodeAttempts && !created; attempt++ {
		code, err := utils.GenerateInviteCode(models.InviteCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		group.InviteCode = code

		err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.groupRepo.Create(ctx, group); err != nil {
				return err
			}
			member := &models.GroupMember{
				GroupID:    group.ID,
				UserID:     createdBy,
				GroupCoins: models.InitialGroupCoins,
				JoinedAt:   time.Now(),
			}
			return s.memberRepo.Create(ctx, member)
		})
		if errors.Is(err, apperrors.ErrDuplicate) {
			slog.Warn("Invite code collision, retrying", "code", code)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create group: %w", err)
		}
		created = true
	}
	if !created {
		return nil, errors.New("failed to allocate a unique invite code")
	}

	slog.Info("Group created", "groupId", group.ID, "createdBy", createdBy, "inviteCode", group.InviteCode)
	return group, nil
}

// JoinGroup adds the user to the group matching the invite code
func (s *groupService) JoinGroup(ctx context.Context, userID primitive.ObjectID, inviteCode string) (*models.Group, error) {
	group, err := s.groupRepo.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	member := &models.GroupMember{
		GroupID:    group.ID,
		UserID:     userID,
		GroupCoins: models.InitialGroupCoins,
		JoinedAt:   time.Now(),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	slog.Info("User joined group", "groupId", group.ID, "userId", userID)
	return group, nil
}

// GetGroupByID retrieves a group by ID
func (s *groupService) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	return s.groupRepo.FindByID(ctx, id)
}

// GetMembers retrieves all members of a group
func (s *groupService) GetMembers(ctx context.Context, groupID primitive.ObjectID) ([]*models.GroupMember, error) {
	return s.memberRepo.FindByGroup(ctx, groupID)
}

// GetUserGroups retrieves all groups the user belongs to
func (s *groupService) GetUserGroups(ctx context.Context, userID primitive.ObjectID) ([]*models.Group, error) {
	memberships, err := s.memberRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups := make([]*models.Group, 0, len(memberships))
	for _, m := range memberships {
		group, err := s.groupRepo.FindByID(ctx, m.GroupID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Balance returns the user's group-coin balance
func (s *groupService) Balance(ctx context.Context, groupID, userID primitive.ObjectID) (int64, error) {
	member, err := s.memberRepo.Find(ctx, groupID, userID)
	if err != nil {
		return 0, err
	}
	return member.GroupCoins, nil
}
