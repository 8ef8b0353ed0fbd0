package tichu

const (
	standardBidPoints = 100
	bonusBidPoints    = 200
)

// Tally is what a single player contributes to the round score
type Tally struct {
	TrickPoints int
	StandardBid bool
	BonusBid    bool
	// OutOrder is 1 for the first player out, 0 if the player never went out
	OutOrder int
}

// RoundScore is the score of each team for a round
type RoundScore struct {
	Teams [2]int
	// DoubleWin is the team whose players went out first and second, or -1
	DoubleWin int
}

func bidPoints(t Tally) int {
	points := 0
	wentOutFirst := t.OutOrder == 1

	if t.StandardBid {
		if wentOutFirst {
			points += standardBidPoints
		} else {
			points -= standardBidPoints
		}
	}

	if t.BonusBid {
		if wentOutFirst {
			points += bonusBidPoints
		} else {
			points -= bonusBidPoints
		}
	}

	return points
}

// CalculateRoundScore scores a round from the tallies of the four seats
func CalculateRoundScore(tallies [playerCount]Tally) RoundScore {
	score := RoundScore{DoubleWin: doubleWinTeam(tallies)}
	for seat, t := range tallies {
		score.Teams[teamOf(seat)] += t.TrickPoints + bidPoints(t)
	}

	if team := score.DoubleWin; team >= 0 {
		score.Teams[team], score.Teams[1-team] = applyDoubleWin(score.Teams[team], score.Teams[1-team])
	}

	return score
}

// doubleWinTeam returns the team whose members were first and second out, or -1
func doubleWinTeam(tallies [playerCount]Tally) int {
	first, second := -1, -1
	for seat, t := range tallies {
		switch t.OutOrder {
		case 1:
			first = seat
		case 2:
			second = seat
		}
	}

	if first < 0 || second < 0 || teamOf(first) != teamOf(second) {
		return -1
	}

	return teamOf(first)
}

// applyDoubleWin doubles the winning team's score when the opponents are negative,
// otherwise adds the opponents' score to it. The opponents get the exact negation.
func applyDoubleWin(own, opponent int) (int, int) {
	if opponent < 0 {
		own *= 2
	} else {
		own += opponent
	}

	return own, -own
}

// MatchWinner returns the winning team once either team reaches the target.
// If both teams reach it in the same round, the higher score wins. A tie keeps the match going.
func MatchWinner(totals [2]int, target int) (int, bool) {
	reached0, reached1 := totals[0] >= target, totals[1] >= target
	switch {
	case reached0 && reached1:
		if totals[0] == totals[1] {
			return -1, false
		}

		if totals[0] > totals[1] {
			return 0, true
		}

		return 1, true
	case reached0:
		return 0, true
	case reached1:
		return 1, true
	}

	return -1, false
}
