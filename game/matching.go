package game

import (
	"time"

	"wordrush/scoring"
)

// MatchingMode is a cooperative two-player rule set: each round both
// players submit one free-form word trying to think of the same thing.
// Equal normalized words end the game and award both players the match
// bonus; different words cost nothing and the next round begins. Lives
// are never consumed. Resubmitting before the round ends replaces the
// player's word.
type MatchingMode struct {
	matched bool
}

func (m *MatchingMode) Name() string { return ModeMatching }

func (m *MatchingMode) MinPlayers() int { return 2 }

func (m *MatchingMode) MaxPlayers() int { return 2 }

// StartRound produces no candidate words; any non-empty word is playable.
func (m *MatchingMode) StartRound(cfg Config, number int) *Round {
	return newRound(number, nil, time.Duration(cfg.RoundSeconds)*time.Second)
}

func (m *MatchingMode) ValidateSubmission(word string, round *Round) bool {
	return word != ""
}

func (m *MatchingMode) ApplySubmission(round *Round, playerID, word string) {
	round.Submissions[playerID] = []string{word}
}

// IsRoundComplete requires exactly one word from both players.
func (m *MatchingMode) IsRoundComplete(round *Round, players []*Player) bool {
	if len(players) != 2 {
		return false
	}
	for _, p := range players {
		if len(round.Submissions[p.ID]) != 1 {
			return false
		}
	}
	return true
}

func (m *MatchingMode) ResolveRound(round *Round, players []*Player) {
	if len(players) != 2 {
		return
	}

	first := playerWord(round, players[0].ID)
	second := playerWord(round, players[1].ID)
	if first == "" || first != second {
		return
	}

	for _, p := range players {
		p.Score += scoring.MatchBonus
	}
	m.matched = true
}

func (m *MatchingMode) IsGameOver(players []*Player) bool {
	return m.matched
}

// Winner is the higher-scoring player; on a tie the earliest-joined player
// wins, which is the first entry since players are kept in join order.
func (m *MatchingMode) Winner(players []*Player) *Player {
	var winner *Player
	for _, p := range players {
		if winner == nil || p.Score > winner.Score {
			winner = p
		}
	}
	return winner
}

func playerWord(round *Round, playerID string) string {
	words := round.Submissions[playerID]
	if len(words) == 0 {
		return ""
	}
	return scoring.Normalize(words[0])
}
