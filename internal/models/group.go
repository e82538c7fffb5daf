package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InitialGroupCoins is the balance every member starts with when creating or
// joining a group.
const InitialGroupCoins int64 = 1000

// InviteCodeLength is the length of the human-shareable group invite code.
const InviteCodeLength = 6

// Group represents a named collection of members sharing a virtual economy
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Avatar      string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	InviteCode  string             `bson:"inviteCode" json:"inviteCode"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// GroupMember is the join record between a user and a group. GroupCoins is the
// group-scoped balance, independent of User.Coins. One record per (group, user).
type GroupMember struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID    primitive.ObjectID `bson:"groupId" json:"groupId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	GroupCoins int64              `bson:"groupCoins" json:"groupCoins"`
	JoinedAt   time.Time          `bson:"joinedAt" json:"joinedAt"`
}
