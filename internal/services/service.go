package services

import (
	"context"
	"time"

	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/pot"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TxnRunner runs a function as one atomic, all-or-nothing unit against the
// data store. pkg/mongodb.Client satisfies this with a session transaction.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error) // Returns JWT token
}

// GroupService defines the interface for group and ledger operations
type GroupService interface {
	// CreateGroup creates a group with a fresh invite code and enrolls the
	// creator as its first member with the initial group-coin balance.
	CreateGroup(ctx context.Context, createdBy primitive.ObjectID, name, description string) (*models.Group, error)

	// JoinGroup adds the user to the group matching the invite code with the
	// initial group-coin balance. Joining the same group twice fails.
	JoinGroup(ctx context.Context, userID primitive.ObjectID, inviteCode string) (*models.Group, error)

	// GetGroupByID retrieves a group by its ID
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)

	// GetMembers retrieves all members of a group with their balances
	GetMembers(ctx context.Context, groupID primitive.ObjectID) ([]*models.GroupMember, error)

	// GetUserGroups retrieves all groups the user belongs to
	GetUserGroups(ctx context.Context, userID primitive.ObjectID) ([]*models.Group, error)

	// Balance returns the user's group-coin balance. An absent membership is
	// an error, distinct from a balance of 0.
	Balance(ctx context.Context, groupID, userID primitive.ObjectID) (int64, error)
}

// BetStats bundles the derived pot statistics for one bet
type BetStats struct {
	TotalPot     int64            `json:"totalPot"`
	AverageStake float64          `json:"averageStake"`
	HighestStake int64            `json:"highestStake"`
	Distribution []pot.OptionStat `json:"distribution"`
}

// BetService defines the interface for the bet lifecycle: creation,
// participation and settlement
type BetService interface {
	// CreateBet creates an open bet with at least two non-empty options
	CreateBet(ctx context.Context, groupID, createdBy primitive.ObjectID, title, description string, betType models.BetType, optionTexts []string, endDate time.Time) (*models.Bet, error)

	// PlaceParticipation stakes amount on an option. The stake is debited
	// from the caller's group balance at placement time, and the debit plus
	// insert happen as one atomic unit. A non-empty idempotencyKey
	// deduplicates retries of the same logical stake.
	PlaceParticipation(ctx context.Context, betID, userID, optionID primitive.ObjectID, amount int64, idempotencyKey string) (*models.BetParticipation, error)

	// SettleBet resolves the bet: records the winning option, flips every
	// participation to won or lost, and credits winners their proportional
	// share of the pot, all in one transaction. Only the bet creator may
	// settle; settling twice fails.
	SettleBet(ctx context.Context, betID, winningOptionID, settledBy primitive.ObjectID) (*models.Bet, error)

	// GetBetByID retrieves a bet by its ID
	GetBetByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error)

	// GetGroupBets retrieves all bets in a group
	GetGroupBets(ctx context.Context, groupID primitive.ObjectID) ([]*models.Bet, error)

	// GetParticipations retrieves all participations on a bet
	GetParticipations(ctx context.Context, betID primitive.ObjectID) ([]*models.BetParticipation, error)

	// GetBetStats computes pot statistics for a bet
	GetBetStats(ctx context.Context, betID primitive.ObjectID) (*BetStats, error)
}

// JustificationStatus reports where a justification stands against the
// approval threshold
type JustificationStatus struct {
	Approvals int  `json:"approvals"`
	Threshold int  `json:"threshold"`
	Approved  bool `json:"approved"`
}

// ChallengeService defines the interface for the challenge lifecycle:
// creation, joining, justification voting and completion
type ChallengeService interface {
	// CreateChallenge creates an open challenge; totalPrize starts at
	// initialPrize and grows with each participant's blind stake
	CreateChallenge(ctx context.Context, groupID, createdBy primitive.ObjectID, title, description string, initialPrize int64, endDate time.Time, taskTitles []string) (*models.Challenge, error)

	// JoinChallenge enrolls the user with a blind stake in [50, 100],
	// debiting the stake and growing the prize pool atomically
	JoinChallenge(ctx context.Context, challengeID, userID primitive.ObjectID, blindAmount int64) error

	// SubmitJustification records a participant's proof, at most one per
	// participant
	SubmitJustification(ctx context.Context, challengeID, userID primitive.ObjectID, jType models.JustificationType, content string) (*models.ChallengeJustification, error)

	// VoteJustification records a peer vote. Authors cannot vote on their own
	// justification and nobody votes twice.
	VoteJustification(ctx context.Context, justificationID, voterID primitive.ObjectID, approved bool) error

	// GetJustificationStatus reports the vote tally against the approval
	// threshold. Completion is never triggered implicitly; callers act on
	// this and invoke CompleteFromJustification.
	GetJustificationStatus(ctx context.Context, justificationID primitive.ObjectID) (*JustificationStatus, error)

	// CompleteFromJustification completes the challenge in favour of the
	// justification's author, provided the justification met the approval
	// threshold
	CompleteFromJustification(ctx context.Context, challengeID, justificationID primitive.ObjectID) (*models.Challenge, error)

	// CompleteTask marks a task complete and recomputes challenge progress;
	// reaching 100% completes the challenge in favour of the user who
	// finished the last task
	CompleteTask(ctx context.Context, challengeID, taskID, userID primitive.ObjectID) (*models.Challenge, error)

	// GetChallengeByID retrieves a challenge by its ID
	GetChallengeByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error)

	// GetGroupChallenges retrieves all challenges in a group
	GetGroupChallenges(ctx context.Context, groupID primitive.ObjectID) ([]*models.Challenge, error)

	// GetJustifications retrieves all justifications of a challenge
	GetJustifications(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeJustification, error)
}
