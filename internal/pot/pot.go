// Package pot computes derived statistics over the participations of a single
// bet: total pot, average and highest stake, and per-option distribution.
// All functions are pure and tolerate empty input.
package pot

import (
	"math"

	"github.com/betmates/betmates-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OptionStat is the participation count and rounded percentage for one option
type OptionStat struct {
	OptionID   primitive.ObjectID `json:"optionId"`
	Count      int                `json:"count"`
	Percentage int                `json:"percentage"`
}

// TotalPot returns the sum of all stake amounts, 0 for no participations
func TotalPot(participations []models.BetParticipation) int64 {
	var total int64
	for _, p := range participations {
		total += p.Amount
	}
	return total
}

// AverageStake returns the mean stake, 0 for no participations
func AverageStake(participations []models.BetParticipation) float64 {
	if len(participations) == 0 {
		return 0
	}
	return float64(TotalPot(participations)) / float64(len(participations))
}

// HighestStake returns the largest single stake, 0 for no participations
func HighestStake(participations []models.BetParticipation) int64 {
	var highest int64
	for _, p := range participations {
		if p.Amount > highest {
			highest = p.Amount
		}
	}
	return highest
}

// OptionDistribution returns, for every option, how many participations picked
// it and what rounded percentage of all participations that is. Options nobody
// picked get a zero bucket; participations referencing an unknown option are
// counted in the total but surface in no bucket.
func OptionDistribution(participations []models.BetParticipation, options []models.BetOption) []OptionStat {
	counts := make(map[primitive.ObjectID]int, len(options))
	for _, p := range participations {
		counts[p.OptionID]++
	}

	total := len(participations)
	stats := make([]OptionStat, 0, len(options))
	for _, opt := range options {
		stat := OptionStat{OptionID: opt.ID, Count: counts[opt.ID]}
		if total > 0 {
			stat.Percentage = int(math.Round(float64(stat.Count) / float64(total) * 100))
		}
		stats = append(stats, stat)
	}
	return stats
}
