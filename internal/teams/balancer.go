// Package teams splits an event roster into two rating-balanced teams and
// coordinates loading rosters and storing results for events.
package teams

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultRating = 3
	MinRating     = 1
	MaxRating     = 5
)

const (
	warningNoGoalkeepers  = "Não há guarda-redes marcados."
	warningOneGoalkeeper  = "Só existe 1 guarda-redes."
	warningGoalkeepersFmt = "Existem %d GR. Só 2 foram usados."
)

// Player is a confirmed participant of an event. Rating and IsGoalkeeper are
// nil when nothing has been recorded for the player yet.
type Player struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Rating       *int   `json:"rating,omitempty"`
	IsGoalkeeper *bool  `json:"isGoalkeeper,omitempty"`
}

// EffectiveRating returns the recorded rating, or DefaultRating when unrated.
func (p Player) EffectiveRating() int {
	if p.Rating == nil {
		return DefaultRating
	}
	return *p.Rating
}

func (p Player) Goalkeeper() bool {
	return p.IsGoalkeeper != nil && *p.IsGoalkeeper
}

type Stats struct {
	SumA int     `json:"sumA"`
	SumB int     `json:"sumB"`
	AvgA float64 `json:"avgA"`
	AvgB float64 `json:"avgB"`
	Diff int     `json:"diff"`
}

type BalanceResult struct {
	TeamA    []Player `json:"teamA"`
	TeamB    []Player `json:"teamB"`
	Stats    Stats    `json:"stats"`
	Warnings []string `json:"warnings"`
}

// Balance assigns every player to team A or B. One goalkeeper goes to each
// team when available; everyone else is placed greedily on the team with the
// lower rating sum, highest rated first. The input slice is not modified and
// the same input always yields the same result.
func Balance(players []Player) BalanceResult {
	warnings := []string{}

	var goalkeepers, fieldPlayers []Player
	for _, p := range players {
		if p.Goalkeeper() {
			goalkeepers = append(goalkeepers, p)
		} else {
			fieldPlayers = append(fieldPlayers, p)
		}
	}
	sortByRatingDesc(goalkeepers)
	sortByRatingDesc(fieldPlayers)

	teamA := []Player{}
	teamB := []Player{}

	switch {
	case len(goalkeepers) >= 2:
		teamA = append(teamA, goalkeepers[0])
		teamB = append(teamB, goalkeepers[1])
		if len(goalkeepers) > 2 {
			warnings = append(warnings, fmt.Sprintf(warningGoalkeepersFmt, len(goalkeepers)))
			fieldPlayers = append(fieldPlayers, goalkeepers[2:]...)
		}
	case len(goalkeepers) == 1:
		teamA = append(teamA, goalkeepers[0])
		warnings = append(warnings, warningOneGoalkeeper)
	default:
		warnings = append(warnings, warningNoGoalkeepers)
	}

	sumA, sumB := ratingSum(teamA), ratingSum(teamB)
	for _, p := range fieldPlayers {
		rating := p.EffectiveRating()
		switch {
		case sumA < sumB:
			teamA = append(teamA, p)
			sumA += rating
		case sumB < sumA:
			teamB = append(teamB, p)
			sumB += rating
		case len(teamA) <= len(teamB):
			teamA = append(teamA, p)
			sumA += rating
		default:
			teamB = append(teamB, p)
			sumB += rating
		}
	}

	return BalanceResult{
		TeamA: teamA,
		TeamB: teamB,
		Stats: Stats{
			SumA: sumA,
			SumB: sumB,
			AvgA: average(sumA, len(teamA)),
			AvgB: average(sumB, len(teamB)),
			Diff: absInt(sumA - sumB),
		},
		Warnings: warnings,
	}
}

func sortByRatingDesc(players []Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].EffectiveRating() > players[j].EffectiveRating()
	})
}

func ratingSum(players []Player) int {
	total := 0
	for _, p := range players {
		total += p.EffectiveRating()
	}
	return total
}

// average rounds to two decimals, half away from zero.
func average(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*100) / 100
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
