package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/pot"
	"github.com/betmates/betmates-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure betService implements BetService
var _ BetService = (*betService)(nil)

type betService struct {
	betRepo           repositories.BetRepository
	participationRepo repositories.ParticipationRepository
	memberRepo        repositories.GroupMemberRepository
	txn               TxnRunner
	now               func() time.Time
}

// NewBetService creates a new BetService implementation
func NewBetService(
	betRepo repositories.BetRepository,
	participationRepo repositories.ParticipationRepository,
	memberRepo repositories.GroupMemberRepository,
	txn TxnRunner,
) BetService {
	return &betService{
		betRepo:           betRepo,
		participationRepo: participationRepo,
		memberRepo:        memberRepo,
		txn:               txn,
		now:               time.Now,
	}
}

// CreateBet creates an open bet with at least two non-empty options
func (s *betService) CreateBet(ctx context.Context, groupID, createdBy primitive.ObjectID, title, description string, betType models.BetType, optionTexts []string, endDate time.Time) (*models.Bet, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("bet title is required: %w", apperrors.ErrValidation)
	}
	if len(optionTexts) < 2 {
		return nil, fmt.Errorf("a bet needs at least 2 options: %w", apperrors.ErrValidation)
	}
	for _, text := range optionTexts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("option text must not be empty: %w", apperrors.ErrValidation)
		}
	}

	// Only group members create bets in their group
	if _, err := s.memberRepo.Find(ctx, groupID, createdBy); err != nil {
		return nil, err
	}

	if betType == "" {
		if len(optionTexts) == 2 {
			betType = models.BetTypeBinary
		} else {
			betType = models.BetTypeMultiple
		}
	}

	options := make([]models.BetOption, 0, len(optionTexts))
	for _, text := range optionTexts {
		options = append(options, models.BetOption{
			ID:   primitive.NewObjectID(),
			Text: text,
		})
	}

	bet := &models.Bet{
		Title:       title,
		Description: description,
		GroupID:     groupID,
		CreatedBy:   createdBy,
		Type:        betType,
		Options:     options,
		EndDate:     endDate,
		Status:      models.BetStatusOpen,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		slog.Error("Failed to create bet", "error", err, "groupId", groupID)
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	slog.Info("Bet created", "betId", bet.ID, "groupId", groupID, "options", len(options))
	return bet, nil
}

// PlaceParticipation stakes amount on an option of an open bet
func (s *betService) PlaceParticipation(ctx context.Context, betID, userID, optionID primitive.ObjectID, amount int64, idempotencyKey string) (*models.BetParticipation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("stake amount must be positive: %w", apperrors.ErrValidation)
	}

	// A retried request with the same key returns the participation the
	// first attempt created instead of double-charging.
	if idempotencyKey != "" {
		existing, err := s.participationRepo.FindByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	bet, err := s.betRepo.FindByID(ctx, betID)
	if err != nil {
		return nil, err
	}
	if !bet.IsAcceptingParticipation(s.now()) {
		return nil, apperrors.ErrBetClosed
	}
	if !bet.HasOption(optionID) {
		return nil, apperrors.ErrInvalidOption
	}

	participation := &models.BetParticipation{
		BetID:          betID,
		UserID:         userID,
		OptionID:       optionID,
		Amount:         amount,
		Status:         models.ParticipationStatusActive,
		IdempotencyKey: idempotencyKey,
	}

	// Debit and insert form one atomic unit: a duplicate stake rolls the
	// debit back, and a failed debit never leaves a participation behind.
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.memberRepo.Debit(ctx, bet.GroupID, userID, amount); err != nil {
			return err
		}
		return s.participationRepo.Create(ctx, participation)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Participation placed", "betId", betID, "userId", userID, "amount", amount)
	return participation, nil
}

// SettleBet resolves a bet and pays out the pot to the winners
func (s *betService) SettleBet(ctx context.Context, betID, winningOptionID, settledBy primitive.ObjectID) (*models.Bet, error) {
	bet, err := s.betRepo.FindByID(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.Status == models.BetStatusSettled {
		return nil, apperrors.ErrAlreadySettled
	}
	if bet.CreatedBy != settledBy {
		return nil, fmt.Errorf("only the bet creator can settle: %w", apperrors.ErrValidation)
	}
	if !bet.HasOption(winningOptionID) {
		return nil, apperrors.ErrInvalidOption
	}

	// Status flip, participation transitions and payout credits are one
	// transaction so settlement is never observable half-applied. The
	// participations are read inside it so a stake that lands while
	// settlement is underway is paid out, not just flipped.
	var payouts map[primitive.ObjectID]int64
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		participations, err := s.participationRepo.FindByBet(ctx, betID)
		if err != nil {
			return err
		}
		payouts = settlementPayouts(participations, winningOptionID)

		bet.Status = models.BetStatusSettled
		bet.SettledOption = &winningOptionID
		if err := s.betRepo.Update(ctx, bet); err != nil {
			return err
		}
		if err := s.participationRepo.SettleByBet(ctx, betID, winningOptionID); err != nil {
			return err
		}
		for userID, payout := range payouts {
			if err := s.memberRepo.Credit(ctx, bet.GroupID, userID, payout); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to settle bet", "error", err, "betId", betID)
		return nil, fmt.Errorf("failed to settle bet: %w", err)
	}

	slog.Info("Bet settled", "betId", betID, "winningOption", winningOptionID, "winners", len(payouts))
	return bet, nil
}

// settlementPayouts splits the full pot among the winners proportionally to
// their stakes, using integer arithmetic. The rounding remainder goes to the
// highest-staked winner so every coin staked is paid back out. If nobody
// picked the winning option, all stakes are refunded.
func settlementPayouts(participations []*models.BetParticipation, winningOptionID primitive.ObjectID) map[primitive.ObjectID]int64 {
	payouts := make(map[primitive.ObjectID]int64)
	if len(participations) == 0 {
		return payouts
	}

	var totalPot, winnersPot int64
	for _, p := range participations {
		totalPot += p.Amount
		if p.OptionID == winningOptionID {
			winnersPot += p.Amount
		}
	}

	if winnersPot == 0 {
		// No winners: refund everyone their stake
		for _, p := range participations {
			payouts[p.UserID] += p.Amount
		}
		return payouts
	}

	var paid int64
	var topWinner primitive.ObjectID
	var topStake int64
	for _, p := range participations {
		if p.OptionID != winningOptionID {
			continue
		}
		payout := totalPot * p.Amount / winnersPot
		payouts[p.UserID] += payout
		paid += payout
		if p.Amount > topStake {
			topStake = p.Amount
			topWinner = p.UserID
		}
	}
	if remainder := totalPot - paid; remainder > 0 {
		payouts[topWinner] += remainder
	}
	return payouts
}

// GetBetByID retrieves a bet by ID
func (s *betService) GetBetByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error) {
	return s.betRepo.FindByID(ctx, id)
}

// GetGroupBets retrieves all bets in a group
func (s *betService) GetGroupBets(ctx context.Context, groupID primitive.ObjectID) ([]*models.Bet, error) {
	return s.betRepo.FindByGroup(ctx, groupID)
}

// GetParticipations retrieves all participations on a bet
func (s *betService) GetParticipations(ctx context.Context, betID primitive.ObjectID) ([]*models.BetParticipation, error) {
	return s.participationRepo.FindByBet(ctx, betID)
}

// GetBetStats computes pot statistics for a bet
func (s *betService) GetBetStats(ctx context.Context, betID primitive.ObjectID) (*BetStats, error) {
	bet, err := s.betRepo.FindByID(ctx, betID)
	if err != nil {
		return nil, err
	}
	participations, err := s.participationRepo.FindByBet(ctx, betID)
	if err != nil {
		return nil, err
	}

	values := make([]models.BetParticipation, 0, len(participations))
	for _, p := range participations {
		values = append(values, *p)
	}
	return &BetStats{
		TotalPot:     pot.TotalPot(values),
		AverageStake: pot.AverageStake(values),
		HighestStake: pot.HighestStake(values),
		Distribution: pot.OptionDistribution(values, bet.Options),
	}, nil
}
