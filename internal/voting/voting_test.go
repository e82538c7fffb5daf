package voting

import (
	"testing"

	"github.com/betmates/betmates-backend/internal/models"
)

func TestApprovalThreshold(t *testing.T) {
	cases := []struct {
		participants int
		want         int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{5, 3},
		{6, 4},
		{10, 6},
		{11, 6},
	}
	for _, c := range cases {
		if got := ApprovalThreshold(c.participants); got != c.want {
			t.Errorf("ApprovalThreshold(%d) = %d, want %d", c.participants, got, c.want)
		}
	}
}

func votes(approved, rejected int) []models.ChallengeVote {
	vs := make([]models.ChallengeVote, 0, approved+rejected)
	for i := 0; i < approved; i++ {
		vs = append(vs, models.ChallengeVote{Approved: true})
	}
	for i := 0; i < rejected; i++ {
		vs = append(vs, models.ChallengeVote{Approved: false})
	}
	return vs
}

func TestIsApprovedFiveParticipants(t *testing.T) {
	// 5 participants need 3 approvals
	if IsApproved(votes(2, 2), 5) {
		t.Error("2 of 5 approvals should not pass")
	}
	if !IsApproved(votes(3, 1), 5) {
		t.Error("3 of 5 approvals should pass")
	}
}

func TestIsApprovedIgnoresRejections(t *testing.T) {
	// rejections never count toward the threshold
	if IsApproved(votes(1, 10), 4) {
		t.Error("1 approval with many rejections should not pass for 4 participants")
	}
}

func TestIsApprovedNoVotes(t *testing.T) {
	if IsApproved(nil, 0) {
		t.Error("no votes should never pass, even with zero participants")
	}
}
