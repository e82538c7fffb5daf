package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BetStatus represents the lifecycle status of a bet
type BetStatus string

const (
	BetStatusOpen    BetStatus = "open"
	BetStatusClosed  BetStatus = "closed"
	BetStatusSettled BetStatus = "settled"
)

// BetType describes the option cardinality of a bet
type BetType string

const (
	BetTypeBinary   BetType = "binary"
	BetTypeMultiple BetType = "multiple"
	BetTypeCustom   BetType = "custom"
)

// ParticipationStatus represents the lifecycle status of a participation
type ParticipationStatus string

const (
	ParticipationStatusActive ParticipationStatus = "active"
	ParticipationStatusWon    ParticipationStatus = "won"
	ParticipationStatusLost   ParticipationStatus = "lost"
)

// BetOption is one of a bet's mutually exclusive outcomes. Options are
// embedded in the bet document and immutable after creation.
type BetOption struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Text string             `bson:"text" json:"text"`
	Name string             `bson:"name,omitempty" json:"name,omitempty"`
	Odds float64            `bson:"odds,omitempty" json:"odds,omitempty"`
}

// Bet represents a proposition bet created inside a group
type Bet struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	GroupID       primitive.ObjectID  `bson:"groupId" json:"groupId"`
	CreatedBy     primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	Type          BetType             `bson:"type" json:"type"`
	Options       []BetOption         `bson:"options" json:"options"`
	EndDate       time.Time           `bson:"endDate" json:"endDate"`
	Status        BetStatus           `bson:"status" json:"status"`
	SettledOption *primitive.ObjectID `bson:"settledOption,omitempty" json:"settledOption,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsAcceptingParticipation reports whether new participations may be placed.
// The closed state is time-derived, not persisted: a bet past its end date
// stops accepting stakes even while its status field still reads open.
func (b *Bet) IsAcceptingParticipation(now time.Time) bool {
	return b.Status == BetStatusOpen && now.Before(b.EndDate)
}

// HasOption reports whether id is one of the bet's options
func (b *Bet) HasOption(id primitive.ObjectID) bool {
	for _, opt := range b.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// BetParticipation is one user's stake on one bet. At most one participation
// exists per (bet, user); the storage layer enforces this with a unique index.
type BetParticipation struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	BetID          primitive.ObjectID  `bson:"betId" json:"betId"`
	UserID         primitive.ObjectID  `bson:"userId" json:"userId"`
	OptionID       primitive.ObjectID  `bson:"optionId" json:"optionId"`
	Amount         int64               `bson:"amount" json:"amount"`
	Status         ParticipationStatus `bson:"status" json:"status"`
	IdempotencyKey string              `bson:"idempotencyKey,omitempty" json:"-"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}
