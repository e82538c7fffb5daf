package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChallengeStatus represents the lifecycle status of a challenge
type ChallengeStatus string

const (
	ChallengeStatusOpen      ChallengeStatus = "open"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

// JustificationType describes the kind of proof a participant submitted
type JustificationType string

const (
	JustificationTypeText  JustificationType = "text"
	JustificationTypeImage JustificationType = "image"
)

// Blind stake bounds for joining a challenge, inclusive.
const (
	MinBlindStake int64 = 50
	MaxBlindStake int64 = 100
)

// ChallengeTask is a sub-goal of a challenge, embedded in the challenge document
type ChallengeTask struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Completed   bool                `bson:"completed" json:"completed"`
	CompletedBy *primitive.ObjectID `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Challenge represents a group-scoped contest. TotalPrize is InitialPrize plus
// the sum of all participants' blind stakes.
type Challenge struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID      primitive.ObjectID  `bson:"groupId" json:"groupId"`
	Title        string              `bson:"title" json:"title"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	InitialPrize int64               `bson:"initialPrize" json:"initialPrize"`
	TotalPrize   int64               `bson:"totalPrize" json:"totalPrize"`
	EndDate      time.Time           `bson:"endDate" json:"endDate"`
	CreatedBy    primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	Status       ChallengeStatus     `bson:"status" json:"status"`
	Winner       *primitive.ObjectID `bson:"winner,omitempty" json:"winner,omitempty"`
	Tasks        []ChallengeTask     `bson:"tasks,omitempty" json:"tasks,omitempty"`
	Progress     int                 `bson:"progress" json:"progress"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsExpired reports whether the challenge end date has passed. Expiry is
// display-only; it never flips the persisted status.
func (c *Challenge) IsExpired(now time.Time) bool {
	return now.After(c.EndDate)
}

// ChallengeParticipant records one user's entry into a challenge with their
// blind stake. One record per (challenge, user).
type ChallengeParticipant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ChallengeID primitive.ObjectID `bson:"challengeId" json:"challengeId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	BlindAmount int64              `bson:"blindAmount" json:"blindAmount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ChallengeJustification is one participant's proof submission. One record per
// (challenge, user).
type ChallengeJustification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ChallengeID primitive.ObjectID `bson:"challengeId" json:"challengeId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Type        JustificationType  `bson:"type" json:"type"`
	Content     string             `bson:"content" json:"content"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ChallengeVote is one voter's yes/no on one justification. One record per
// (justification, user); authors cannot vote on their own submission.
type ChallengeVote struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	JustificationID primitive.ObjectID `bson:"justificationId" json:"justificationId"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Approved        bool               `bson:"approved" json:"approved"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
