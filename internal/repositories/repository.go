package repositories

import (
	"context"

	"github.com/betmates/betmates-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Group, error)
}

// GroupMemberRepository is the group ledger: membership records and their
// group-coin balances. Credit and Debit must be atomic per (group, user) so
// concurrent stakes cannot produce lost updates; implementations enforce this
// with conditional writes, not read-modify-write at the application level.
type GroupMemberRepository interface {
	// Create inserts a membership record. Returns
	// apperrors.ErrDuplicateMembership if the user already belongs to the group.
	Create(ctx context.Context, member *models.GroupMember) error
	// Find returns apperrors.ErrMemberNotFound when no record exists; an
	// absent member is distinct from a member with balance 0.
	Find(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMember, error)
	FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.GroupMember, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.GroupMember, error)
	// Credit adds amount to the member's balance. Returns
	// apperrors.ErrMemberNotFound if no record exists.
	Credit(ctx context.Context, groupID, userID primitive.ObjectID, amount int64) error
	// Debit subtracts amount if and only if the current balance covers it.
	// Returns apperrors.ErrInsufficientBalance or apperrors.ErrMemberNotFound.
	Debit(ctx context.Context, groupID, userID primitive.ObjectID, amount int64) error
}

// BetRepository defines the interface for bet data operations
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error)
	FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Bet, error)
	Update(ctx context.Context, bet *models.Bet) error
}

// ParticipationRepository defines the interface for bet participation data
// operations. Create must reject a second participation for the same
// (bet, user) pair atomically (unique constraint, not check-then-insert).
type ParticipationRepository interface {
	// Create returns apperrors.ErrDuplicateParticipation if the user already
	// has a participation on the bet.
	Create(ctx context.Context, participation *models.BetParticipation) error
	FindByBet(ctx context.Context, betID primitive.ObjectID) ([]*models.BetParticipation, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.BetParticipation, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.BetParticipation, error)
	// SettleByBet flips every participation on the bet to won when it picked
	// the winning option and lost otherwise, in one bulk operation.
	SettleByBet(ctx context.Context, betID, winningOptionID primitive.ObjectID) error
}

// ChallengeRepository defines the interface for challenge data operations,
// covering the challenge document and its participant, justification and vote
// records. The Add methods enforce their uniqueness invariants atomically.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error)
	FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Challenge, error)
	Update(ctx context.Context, challenge *models.Challenge) error
	// IncrementPrize adds amount to the challenge's total prize atomically.
	IncrementPrize(ctx context.Context, challengeID primitive.ObjectID, amount int64) error

	// AddParticipant returns apperrors.ErrAlreadyParticipating on a second
	// join by the same user.
	AddParticipant(ctx context.Context, participant *models.ChallengeParticipant) error
	FindParticipants(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeParticipant, error)
	FindParticipant(ctx context.Context, challengeID, userID primitive.ObjectID) (*models.ChallengeParticipant, error)

	// AddJustification returns apperrors.ErrDuplicateSubmission on a second
	// submission by the same participant.
	AddJustification(ctx context.Context, justification *models.ChallengeJustification) error
	FindJustifications(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeJustification, error)
	FindJustificationByID(ctx context.Context, id primitive.ObjectID) (*models.ChallengeJustification, error)

	// AddVote returns apperrors.ErrDuplicateVote on a second vote by the same
	// user on the same justification.
	AddVote(ctx context.Context, vote *models.ChallengeVote) error
	FindVotes(ctx context.Context, justificationID primitive.ObjectID) ([]models.ChallengeVote, error)
}
