package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/repositories"
	"github.com/betmates/betmates-backend/internal/voting"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure challengeService implements ChallengeService
var _ ChallengeService = (*challengeService)(nil)

type challengeService struct {
	challengeRepo repositories.ChallengeRepository
	memberRepo    repositories.GroupMemberRepository
	txn           TxnRunner
}

// NewChallengeService creates a new ChallengeService implementation
func NewChallengeService(
	challengeRepo repositories.ChallengeRepository,
	memberRepo repositories.GroupMemberRepository,
	txn TxnRunner,
) ChallengeService {
	return &challengeService{
		challengeRepo: challengeRepo,
		memberRepo:    memberRepo,
		txn:           txn,
	}
}

// CreateChallenge creates an open challenge
func (s *challengeService) CreateChallenge(ctx context.Context, groupID, createdBy primitive.ObjectID, title, description string, initialPrize int64, endDate time.Time, taskTitles []string) (*models.Challenge, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("challenge title is required: %w", apperrors.ErrValidation)
	}
	if initialPrize < 0 {
		return nil, fmt.Errorf("initial prize must not be negative: %w", apperrors.ErrValidation)
	}

	// Only group members create challenges in their group
	if _, err := s.memberRepo.Find(ctx, groupID, createdBy); err != nil {
		return nil, err
	}

	tasks := make([]models.ChallengeTask, 0, len(taskTitles))
	for _, t := range taskTitles {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("task title must not be empty: %w", apperrors.ErrValidation)
		}
		tasks = append(tasks, models.ChallengeTask{
			ID:    primitive.NewObjectID(),
			Title: t,
		})
	}

	challenge := &models.Challenge{
		GroupID:      groupID,
		Title:        title,
		Description:  description,
		InitialPrize: initialPrize,
		TotalPrize:   initialPrize,
		EndDate:      endDate,
		CreatedBy:    createdBy,
		Status:       models.ChallengeStatusOpen,
		Tasks:        tasks,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		slog.Error("Failed to create challenge", "error", err, "groupId", groupID)
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	slog.Info("Challenge created", "challengeId", challenge.ID, "groupId", groupID, "initialPrize", initialPrize)
	return challenge, nil
}

// JoinChallenge enrolls the user with a blind stake
func (s *challengeService) JoinChallenge(ctx context.Context, challengeID, userID primitive.ObjectID, blindAmount int64) error {
	if blindAmount < models.MinBlindStake || blindAmount > models.MaxBlindStake {
		return apperrors.ErrInvalidStake
	}

	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge.Status != models.ChallengeStatusOpen {
		return apperrors.ErrChallengeCompleted
	}

	participant := &models.ChallengeParticipant{
		ChallengeID: challengeID,
		UserID:      userID,
		BlindAmount: blindAmount,
	}

	// Enrollment, stake debit and prize growth are one atomic unit
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.challengeRepo.AddParticipant(ctx, participant); err != nil {
			return err
		}
		if err := s.memberRepo.Debit(ctx, challenge.GroupID, userID, blindAmount); err != nil {
			return err
		}
		return s.challengeRepo.IncrementPrize(ctx, challengeID, blindAmount)
	})
	if err != nil {
		return err
	}

	slog.Info("User joined challenge", "challengeId", challengeID, "userId", userID, "blind", blindAmount)
	return nil
}

// SubmitJustification records a participant's proof of completion
func (s *challengeService) SubmitJustification(ctx context.Context, challengeID, userID primitive.ObjectID, jType models.JustificationType, content string) (*models.ChallengeJustification, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != models.ChallengeStatusOpen {
		return nil, apperrors.ErrChallengeCompleted
	}

	if err := s.requireParticipant(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	switch jType {
	case models.JustificationTypeText:
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("text justification must not be empty: %w", apperrors.ErrValidation)
		}
	case models.JustificationTypeImage:
		u, err := url.Parse(content)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("image justification must be a resolvable URL: %w", apperrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("unknown justification type %q: %w", jType, apperrors.ErrValidation)
	}

	justification := &models.ChallengeJustification{
		ChallengeID: challengeID,
		UserID:      userID,
		Type:        jType,
		Content:     content,
	}
	if err := s.challengeRepo.AddJustification(ctx, justification); err != nil {
		return nil, err
	}

	slog.Info("Justification submitted", "challengeId", challengeID, "userId", userID, "type", jType)
	return justification, nil
}

// VoteJustification records a peer vote on a justification
func (s *challengeService) VoteJustification(ctx context.Context, justificationID, voterID primitive.ObjectID, approved bool) error {
	justification, err := s.challengeRepo.FindJustificationByID(ctx, justificationID)
	if err != nil {
		return err
	}
	if justification.UserID == voterID {
		return apperrors.ErrSelfVote
	}

	challenge, err := s.challengeRepo.FindByID(ctx, justification.ChallengeID)
	if err != nil {
		return err
	}
	if challenge.Status != models.ChallengeStatusOpen {
		return apperrors.ErrChallengeCompleted
	}

	if err := s.requireParticipant(ctx, justification.ChallengeID, voterID); err != nil {
		return err
	}

	vote := &models.ChallengeVote{
		JustificationID: justificationID,
		UserID:          voterID,
		Approved:        approved,
	}
	if err := s.challengeRepo.AddVote(ctx, vote); err != nil {
		return err
	}

	slog.Info("Vote recorded", "justificationId", justificationID, "voterId", voterID, "approved", approved)
	return nil
}

// GetJustificationStatus reports the vote tally against the approval threshold
func (s *challengeService) GetJustificationStatus(ctx context.Context, justificationID primitive.ObjectID) (*JustificationStatus, error) {
	justification, err := s.challengeRepo.FindJustificationByID(ctx, justificationID)
	if err != nil {
		return nil, err
	}
	votes, err := s.challengeRepo.FindVotes(ctx, justificationID)
	if err != nil {
		return nil, err
	}
	participants, err := s.challengeRepo.FindParticipants(ctx, justification.ChallengeID)
	if err != nil {
		return nil, err
	}

	return &JustificationStatus{
		Approvals: voting.ApprovedVotes(votes),
		Threshold: voting.ApprovalThreshold(len(participants)),
		Approved:  voting.IsApproved(votes, len(participants)),
	}, nil
}

// CompleteFromJustification completes the challenge in favour of the
// justification's author once the approval threshold is met
func (s *challengeService) CompleteFromJustification(ctx context.Context, challengeID, justificationID primitive.ObjectID) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != models.ChallengeStatusOpen {
		return nil, apperrors.ErrChallengeCompleted
	}

	justification, err := s.challengeRepo.FindJustificationByID(ctx, justificationID)
	if err != nil {
		return nil, err
	}
	if justification.ChallengeID != challengeID {
		return nil, fmt.Errorf("justification does not belong to challenge: %w", apperrors.ErrValidation)
	}

	votes, err := s.challengeRepo.FindVotes(ctx, justificationID)
	if err != nil {
		return nil, err
	}
	participants, err := s.challengeRepo.FindParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !voting.IsApproved(votes, len(participants)) {
		return nil, fmt.Errorf("justification has not met the approval threshold: %w", apperrors.ErrStateConflict)
	}

	if err := s.completeChallenge(ctx, challenge, justification.UserID); err != nil {
		return nil, err
	}
	return challenge, nil
}

// CompleteTask marks a task complete and recomputes challenge progress
func (s *challengeService) CompleteTask(ctx context.Context, challengeID, taskID, userID primitive.ObjectID) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.Status != models.ChallengeStatusOpen {
		return nil, apperrors.ErrChallengeCompleted
	}

	if err := s.requireParticipant(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	taskIndex := -1
	for i, task := range challenge.Tasks {
		if task.ID == taskID {
			taskIndex = i
			break
		}
	}
	if taskIndex < 0 {
		return nil, fmt.Errorf("task %s: %w", taskID.Hex(), apperrors.ErrNotFound)
	}
	if challenge.Tasks[taskIndex].Completed {
		return nil, fmt.Errorf("task already completed: %w", apperrors.ErrStateConflict)
	}

	now := time.Now()
	challenge.Tasks[taskIndex].Completed = true
	challenge.Tasks[taskIndex].CompletedBy = &userID
	challenge.Tasks[taskIndex].CompletedAt = &now

	completed := 0
	for _, task := range challenge.Tasks {
		if task.Completed {
			completed++
		}
	}
	challenge.Progress = int(math.Round(float64(completed) / float64(len(challenge.Tasks)) * 100))

	// Finishing the last task is the second completion trigger; the user who
	// closed it out takes the prize. The task update rides in the completion
	// transaction so a failed payout leaves the task re-playable instead of a
	// fully-progressed challenge stuck open.
	if challenge.Progress >= 100 {
		if err := s.completeChallenge(ctx, challenge, userID); err != nil {
			return nil, err
		}
		return challenge, nil
	}

	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to update task progress: %w", err)
	}
	return challenge, nil
}

// completeChallenge is the single authoritative completion trigger: both the
// task-progress path and the justification-approval path end up here, so the
// status flip, winner record and prize payout never diverge.
func (s *challengeService) completeChallenge(ctx context.Context, challenge *models.Challenge, winnerID primitive.ObjectID) error {
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		challenge.Status = models.ChallengeStatusCompleted
		challenge.Winner = &winnerID
		if err := s.challengeRepo.Update(ctx, challenge); err != nil {
			return err
		}
		return s.memberRepo.Credit(ctx, challenge.GroupID, winnerID, challenge.TotalPrize)
	})
	if err != nil {
		slog.Error("Failed to complete challenge", "error", err, "challengeId", challenge.ID)
		return fmt.Errorf("failed to complete challenge: %w", err)
	}

	slog.Info("Challenge completed", "challengeId", challenge.ID, "winner", winnerID, "prize", challenge.TotalPrize)
	return nil
}

func (s *challengeService) requireParticipant(ctx context.Context, challengeID, userID primitive.ObjectID) error {
	if _, err := s.challengeRepo.FindParticipant(ctx, challengeID, userID); err != nil {
		return apperrors.ErrNotParticipating
	}
	return nil
}

// GetChallengeByID retrieves a challenge by ID
func (s *challengeService) GetChallengeByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	return s.challengeRepo.FindByID(ctx, id)
}

// GetGroupChallenges retrieves all challenges in a group
func (s *challengeService) GetGroupChallenges(ctx context.Context, groupID primitive.ObjectID) ([]*models.Challenge, error) {
	return s.challengeRepo.FindByGroup(ctx, groupID)
}

// GetJustifications retrieves all justifications of a challenge
func (s *challengeService) GetJustifications(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeJustification, error) {
	return s.challengeRepo.FindJustifications(ctx, challengeID)
}
