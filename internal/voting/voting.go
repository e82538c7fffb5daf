// Package voting implements the peer-approval rules for challenge
// justifications: a justification passes once a majority of the challenge's
// participants approve it.
package voting

import "github.com/betmates/betmates-backend/internal/models"

// ApprovalThreshold returns the number of approving votes a justification
// needs given the total participant count: floor(N/2)+1, never below 1 so the
// degenerate single-voter case still requires one approval.
func ApprovalThreshold(totalParticipants int) int {
	if totalParticipants < 1 {
		return 1
	}
	return totalParticipants/2 + 1
}

// ApprovedVotes counts the approving votes in the given list
func ApprovedVotes(votes []models.ChallengeVote) int {
	count := 0
	for _, v := range votes {
		if v.Approved {
			count++
		}
	}
	return count
}

// IsApproved reports whether the votes meet the approval threshold for a
// challenge with the given participant count
func IsApproved(votes []models.ChallengeVote, totalParticipants int) bool {
	return ApprovedVotes(votes) >= ApprovalThreshold(totalParticipants)
}
