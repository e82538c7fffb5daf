package services

import (
	"context"
	"fmt"
	"time"

	"github.com/betmates/betmates-backend/internal/apperrors"
	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The fakes below are in-memory repository implementations with value
// semantics: reads return copies, writes store copies. snapshot returns a
// restore closure so fakeTxn can roll a failed transaction back, matching the
// all-or-nothing behavior of the real store.

type snapshotter interface {
	snapshot() func()
}

type fakeTxn struct {
	stores []snapshotter
}

func (t *fakeTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// --- group members / ledger ---

type memberKey struct {
	group primitive.ObjectID
	user  primitive.ObjectID
}

type fakeMemberRepo struct {
	members map[memberKey]models.GroupMember
}

var _ repositories.GroupMemberRepository = (*fakeMemberRepo)(nil)

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[memberKey]models.GroupMember)}
}

func (r *fakeMemberRepo) snapshot() func() {
	saved := make(map[memberKey]models.GroupMember, len(r.members))
	for k, v := range r.members {
		saved[k] = v
	}
	return func() { r.members = saved }
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *models.GroupMember) error {
	key := memberKey{member.GroupID, member.UserID}
	if _, ok := r.members[key]; ok {
		return apperrors.ErrDuplicateMembership
	}
	member.ID = primitive.NewObjectID()
	member.JoinedAt = time.Now()
	r.members[key] = *member
	return nil
}

func (r *fakeMemberRepo) Find(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupMember, error) {
	member, ok := r.members[memberKey{groupID, userID}]
	if !ok {
		return nil, apperrors.ErrMemberNotFound
	}
	return &member, nil
}

func (r *fakeMemberRepo) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.GroupMember, error) {
	var members []*models.GroupMember
	for key, m := range r.members {
		if key.group == groupID {
			member := m
			members = append(members, &member)
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.GroupMember, error) {
	var members []*models.GroupMember
	for key, m := range r.members {
		if key.user == userID {
			member := m
			members = append(members, &member)
		}
	}
	return members, nil
}

func (r *fakeMemberRepo) Credit(ctx context.Context, groupID, userID primitive.ObjectID, amount int64) error {
	key := memberKey{groupID, userID}
	member, ok := r.members[key]
	if !ok {
		return apperrors.ErrMemberNotFound
	}
	member.GroupCoins += amount
	r.members[key] = member
	return nil
}

func (r *fakeMemberRepo) Debit(ctx context.Context, groupID, userID primitive.ObjectID, amount int64) error {
	key := memberKey{groupID, userID}
	member, ok := r.members[key]
	if !ok {
		return apperrors.ErrMemberNotFound
	}
	if member.GroupCoins < amount {
		return apperrors.ErrInsufficientBalance
	}
	member.GroupCoins -= amount
	r.members[key] = member
	return nil
}

// --- groups ---

type fakeGroupRepo struct {
	groups map[primitive.ObjectID]models.Group
}

var _ repositories.GroupRepository = (*fakeGroupRepo)(nil)

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[primitive.ObjectID]models.Group)}
}

func (r *fakeGroupRepo) snapshot() func() {
	saved := make(map[primitive.ObjectID]models.Group, len(r.groups))
	for k, v := range r.groups {
		saved[k] = v
	}
	return func() { r.groups = saved }
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	for _, g := range r.groups {
		if g.InviteCode == group.InviteCode {
			return fmt.Errorf("invite code taken: %w", apperrors.ErrDuplicate)
		}
	}
	group.ID = primitive.NewObjectID()
	group.CreatedAt = time.Now()
	r.groups[group.ID] = *group
	return nil
}

func (r *fakeGroupRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return &group, nil
}

func (r *fakeGroupRepo) FindByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	for _, g := range r.groups {
		if g.InviteCode == code {
			group := g
			return &group, nil
		}
	}
	return nil, fmt.Errorf("group with invite code %s: %w", code, apperrors.ErrNotFound)
}

// --- bets ---

type fakeBetRepo struct {
	bets map[primitive.ObjectID]models.Bet
}

var _ repositories.BetRepository = (*fakeBetRepo)(nil)

func newFakeBetRepo() *fakeBetRepo {
	return &fakeBetRepo{bets: make(map[primitive.ObjectID]models.Bet)}
}

func (r *fakeBetRepo) snapshot() func() {
	saved := make(map[primitive.ObjectID]models.Bet, len(r.bets))
	for k, v := range r.bets {
		saved[k] = v
	}
	return func() { r.bets = saved }
}

func (r *fakeBetRepo) Create(ctx context.Context, bet *models.Bet) error {
	bet.ID = primitive.NewObjectID()
	bet.CreatedAt = time.Now()
	bet.UpdatedAt = time.Now()
	r.bets[bet.ID] = *bet
	return nil
}

func (r *fakeBetRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Bet, error) {
	bet, ok := r.bets[id]
	if !ok {
		return nil, fmt.Errorf("bet %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return &bet, nil
}

func (r *fakeBetRepo) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Bet, error) {
	var bets []*models.Bet
	for _, b := range r.bets {
		if b.GroupID == groupID {
			bet := b
			bets = append(bets, &bet)
		}
	}
	return bets, nil
}

func (r *fakeBetRepo) Update(ctx context.Context, bet *models.Bet) error {
	if _, ok := r.bets[bet.ID]; !ok {
		return fmt.Errorf("bet %s: %w", bet.ID.Hex(), apperrors.ErrNotFound)
	}
	bet.UpdatedAt = time.Now()
	r.bets[bet.ID] = *bet
	return nil
}

// --- bet participations ---

type fakeParticipationRepo struct {
	participations []models.BetParticipation
}

var _ repositories.ParticipationRepository = (*fakeParticipationRepo)(nil)

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{}
}

func (r *fakeParticipationRepo) snapshot() func() {
	saved := make([]models.BetParticipation, len(r.participations))
	copy(saved, r.participations)
	return func() { r.participations = saved }
}

func (r *fakeParticipationRepo) Create(ctx context.Context, participation *models.BetParticipation) error {
	for _, p := range r.participations {
		if p.BetID == participation.BetID && p.UserID == participation.UserID {
			return apperrors.ErrDuplicateParticipation
		}
	}
	participation.ID = primitive.NewObjectID()
	participation.CreatedAt = time.Now()
	r.participations = append(r.participations, *participation)
	return nil
}

func (r *fakeParticipationRepo) FindByBet(ctx context.Context, betID primitive.ObjectID) ([]*models.BetParticipation, error) {
	var out []*models.BetParticipation
	for _, p := range r.participations {
		if p.BetID == betID {
			participation := p
			out = append(out, &participation)
		}
	}
	return out, nil
}

func (r *fakeParticipationRepo) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.BetParticipation, error) {
	var out []*models.BetParticipation
	for _, p := range r.participations {
		if p.UserID == userID {
			participation := p
			out = append(out, &participation)
		}
	}
	return out, nil
}

func (r *fakeParticipationRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.BetParticipation, error) {
	for _, p := range r.participations {
		if p.IdempotencyKey == key {
			participation := p
			return &participation, nil
		}
	}
	return nil, fmt.Errorf("participation with idempotency key %s: %w", key, apperrors.ErrNotFound)
}

func (r *fakeParticipationRepo) SettleByBet(ctx context.Context, betID, winningOptionID primitive.ObjectID) error {
	for i, p := range r.participations {
		if p.BetID != betID {
			continue
		}
		if p.OptionID == winningOptionID {
			r.participations[i].Status = models.ParticipationStatusWon
		} else {
			r.participations[i].Status = models.ParticipationStatusLost
		}
	}
	return nil
}

// --- challenges ---

type fakeChallengeRepo struct {
	challenges     map[primitive.ObjectID]models.Challenge
	participants   []models.ChallengeParticipant
	justifications []models.ChallengeJustification
	votes          []models.ChallengeVote
}

var _ repositories.ChallengeRepository = (*fakeChallengeRepo)(nil)

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: make(map[primitive.ObjectID]models.Challenge)}
}

// cloneChallenge copies a challenge including its Tasks slice, so stored
// values never share a backing array with values handed to the service.
func cloneChallenge(c models.Challenge) models.Challenge {
	tasks := make([]models.ChallengeTask, len(c.Tasks))
	copy(tasks, c.Tasks)
	c.Tasks = tasks
	return c
}

func (r *fakeChallengeRepo) snapshot() func() {
	savedChallenges := make(map[primitive.ObjectID]models.Challenge, len(r.challenges))
	for k, v := range r.challenges {
		savedChallenges[k] = v
	}
	savedParticipants := make([]models.ChallengeParticipant, len(r.participants))
	copy(savedParticipants, r.participants)
	savedJustifications := make([]models.ChallengeJustification, len(r.justifications))
	copy(savedJustifications, r.justifications)
	savedVotes := make([]models.ChallengeVote, len(r.votes))
	copy(savedVotes, r.votes)
	return func() {
		r.challenges = savedChallenges
		r.participants = savedParticipants
		r.justifications = savedJustifications
		r.votes = savedVotes
	}
}

func (r *fakeChallengeRepo) Create(ctx context.Context, challenge *models.Challenge) error {
	challenge.ID = primitive.NewObjectID()
	challenge.CreatedAt = time.Now()
	challenge.UpdatedAt = time.Now()
	r.challenges[challenge.ID] = cloneChallenge(*challenge)
	return nil
}

func (r *fakeChallengeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	challenge, ok := r.challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	challenge = cloneChallenge(challenge)
	return &challenge, nil
}

func (r *fakeChallengeRepo) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Challenge, error) {
	var out []*models.Challenge
	for _, c := range r.challenges {
		if c.GroupID == groupID {
			challenge := cloneChallenge(c)
			out = append(out, &challenge)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) Update(ctx context.Context, challenge *models.Challenge) error {
	if _, ok := r.challenges[challenge.ID]; !ok {
		return fmt.Errorf("challenge %s: %w", challenge.ID.Hex(), apperrors.ErrNotFound)
	}
	challenge.UpdatedAt = time.Now()
	r.challenges[challenge.ID] = cloneChallenge(*challenge)
	return nil
}

func (r *fakeChallengeRepo) IncrementPrize(ctx context.Context, challengeID primitive.ObjectID, amount int64) error {
	challenge, ok := r.challenges[challengeID]
	if !ok {
		return fmt.Errorf("challenge %s: %w", challengeID.Hex(), apperrors.ErrNotFound)
	}
	challenge.TotalPrize += amount
	r.challenges[challengeID] = challenge
	return nil
}

func (r *fakeChallengeRepo) AddParticipant(ctx context.Context, participant *models.ChallengeParticipant) error {
	for _, p := range r.participants {
		if p.ChallengeID == participant.ChallengeID && p.UserID == participant.UserID {
			return apperrors.ErrAlreadyParticipating
		}
	}
	participant.ID = primitive.NewObjectID()
	participant.CreatedAt = time.Now()
	r.participants = append(r.participants, *participant)
	return nil
}

func (r *fakeChallengeRepo) FindParticipants(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeParticipant, error) {
	var out []*models.ChallengeParticipant
	for _, p := range r.participants {
		if p.ChallengeID == challengeID {
			participant := p
			out = append(out, &participant)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) FindParticipant(ctx context.Context, challengeID, userID primitive.ObjectID) (*models.ChallengeParticipant, error) {
	for _, p := range r.participants {
		if p.ChallengeID == challengeID && p.UserID == userID {
			participant := p
			return &participant, nil
		}
	}
	return nil, fmt.Errorf("challenge participant: %w", apperrors.ErrNotFound)
}

func (r *fakeChallengeRepo) AddJustification(ctx context.Context, justification *models.ChallengeJustification) error {
	for _, j := range r.justifications {
		if j.ChallengeID == justification.ChallengeID && j.UserID == justification.UserID {
			return apperrors.ErrDuplicateSubmission
		}
	}
	justification.ID = primitive.NewObjectID()
	justification.CreatedAt = time.Now()
	r.justifications = append(r.justifications, *justification)
	return nil
}

func (r *fakeChallengeRepo) FindJustifications(ctx context.Context, challengeID primitive.ObjectID) ([]*models.ChallengeJustification, error) {
	var out []*models.ChallengeJustification
	for _, j := range r.justifications {
		if j.ChallengeID == challengeID {
			justification := j
			out = append(out, &justification)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) FindJustificationByID(ctx context.Context, id primitive.ObjectID) (*models.ChallengeJustification, error) {
	for _, j := range r.justifications {
		if j.ID == id {
			justification := j
			return &justification, nil
		}
	}
	return nil, fmt.Errorf("justification %s: %w", id.Hex(), apperrors.ErrNotFound)
}

func (r *fakeChallengeRepo) AddVote(ctx context.Context, vote *models.ChallengeVote) error {
	for _, v := range r.votes {
		if v.JustificationID == vote.JustificationID && v.UserID == vote.UserID {
			return apperrors.ErrDuplicateVote
		}
	}
	vote.ID = primitive.NewObjectID()
	vote.CreatedAt = time.Now()
	r.votes = append(r.votes, *vote)
	return nil
}

func (r *fakeChallengeRepo) FindVotes(ctx context.Context, justificationID primitive.ObjectID) ([]models.ChallengeVote, error) {
	var out []models.ChallengeVote
	for _, v := range r.votes {
		if v.JustificationID == justificationID {
			out = append(out, v)
		}
	}
	return out, nil
}

// addMember seeds a membership with the given balance
func (r *fakeMemberRepo) addMember(groupID, userID primitive.ObjectID, coins int64) {
	r.members[memberKey{groupID, userID}] = models.GroupMember{
		ID:         primitive.NewObjectID(),
		GroupID:    groupID,
		UserID:     userID,
		GroupCoins: coins,
		JoinedAt:   time.Now(),
	}
}
