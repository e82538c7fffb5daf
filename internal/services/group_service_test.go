package services

import (
	"context"
	"errors"
	"testing"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newGroupTestEnv() (GroupService, *fakeGroupRepo, *fakeMemberRepo) {
	groupRepo := newFakeGroupRepo()
	memberRepo := newFakeMemberRepo()
	txn := &fakeTxn{stores: []snapshotter{groupRepo, memberRepo}}
	return NewGroupService(groupRepo, memberRepo, txn), groupRepo, memberRepo
}

func TestCreateGroupEnrollsCreator(t *testing.T) {
	service, _, _ := newGroupTestEnv()
	creator := primitive.NewObjectID()

	group, err := service.CreateGroup(context.Background(), creator, "Poker Night", "weekly games")
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if len(group.InviteCode) != models.InviteCodeLength {
		t.Errorf("invite code %q has length %d, want %d", group.InviteCode, len(group.InviteCode), models.InviteCodeLength)
	}

	balance, err := service.Balance(context.Background(), group.ID, creator)
	if err != nil {
		t.Fatalf("Balance returned error: %v", err)
	}
	if balance != models.InitialGroupCoins {
		t.Errorf("creator balance = %d, want %d", balance, models.InitialGroupCoins)
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	service, _, _ := newGroupTestEnv()

	_, err := service.CreateGroup(context.Background(), primitive.NewObjectID(), "", "")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("CreateGroup with empty name: got %v, want ErrValidation", err)
	}
}

func TestJoinGroupByInviteCode(t *testing.T) {
	service, _, memberRepo := newGroupTestEnv()
	creator := primitive.NewObjectID()
	joiner := primitive.NewObjectID()

	group, err := service.CreateGroup(context.Background(), creator, "Poker Night", "")
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}

	joined, err := service.JoinGroup(context.Background(), joiner, group.InviteCode)
	if err != nil {
		t.Fatalf("JoinGroup returned error: %v", err)
	}
	if joined.ID != group.ID {
		t.Errorf("joined group %s, want %s", joined.ID.Hex(), group.ID.Hex())
	}

	member, err := memberRepo.Find(context.Background(), group.ID, joiner)
	if err != nil {
		t.Fatalf("Find member returned error: %v", err)
	}
	if member.GroupCoins != models.InitialGroupCoins {
		t.Errorf("joiner balance = %d, want %d", member.GroupCoins, models.InitialGroupCoins)
	}
}

func TestJoinGroupTwice(t *testing.T) {
	service, _, memberRepo := newGroupTestEnv()
	creator := primitive.NewObjectID()
	joiner := primitive.NewObjectID()

	group, err := service.CreateGroup(context.Background(), creator, "Poker Night", "")
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if _, err := service.JoinGroup(context.Background(), joiner, group.InviteCode); err != nil {
		t.Fatalf("first JoinGroup returned error: %v", err)
	}

	_, err = service.JoinGroup(context.Background(), joiner, group.InviteCode)
	if !errors.Is(err, apperrors.ErrDuplicate) {
		t.Errorf("second JoinGroup: got %v, want ErrDuplicate", err)
	}

	members, err := memberRepo.FindByGroup(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("FindByGroup returned error: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("group has %d members, want 2 (creator + joiner)", len(members))
	}
}

func TestJoinGroupUnknownCode(t *testing.T) {
	service, _, _ := newGroupTestEnv()

	_, err := service.JoinGroup(context.Background(), primitive.NewObjectID(), "ZZZZZZ")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("JoinGroup with unknown code: got %v, want ErrNotFound", err)
	}
}

func TestBalanceNonMember(t *testing.T) {
	service, _, _ := newGroupTestEnv()
	creator := primitive.NewObjectID()

	group, err := service.CreateGroup(context.Background(), creator, "Poker Night", "")
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}

	_, err = service.Balance(context.Background(), group.ID, primitive.NewObjectID())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Balance for non-member: got %v, want ErrNotFound", err)
	}
}

func TestGetUserGroups(t *testing.T) {
	service, _, _ := newGroupTestEnv()
	user := primitive.NewObjectID()

	first, err := service.CreateGroup(context.Background(), user, "First", "")
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	second, err := service.CreateGroup(context.Background(), primitive.NewObjectID(), "Second", "")
	if err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if _, err := service.JoinGroup(context.Background(), user, second.InviteCode); err != nil {
		t.Fatalf("JoinGroup returned error: %v", err)
	}

	groups, err := service.GetUserGroups(context.Background(), user)
	if err != nil {
		t.Fatalf("GetUserGroups returned error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("user belongs to %d groups, want 2", len(groups))
	}
	seen := map[primitive.ObjectID]bool{}
	for _, g := range groups {
		seen[g.ID] = true
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Errorf("GetUserGroups missing an expected group: got %v", seen)
	}
}
