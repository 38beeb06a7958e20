package game

import (
	"time"

	"wordrush/scoring"
	"wordrush/wordbank"
)

// ClassicBatchSize is how many candidate words a classic round draws from
// the configured category.
const ClassicBatchSize = 12

// ClassicMode is the elimination rule set: each round every surviving
// player picks one word from the round's candidate batch. Words picked by
// more than one player are duplicates; duplicate pickers lose a life and
// take a score penalty, unique pickers earn points. Resubmitting before
// the round ends replaces the player's word. Last player standing wins
// and collects the win bonus.
type ClassicMode struct {
	bank *wordbank.Bank
}

func (m *ClassicMode) Name() string { return ModeClassic }

func (m *ClassicMode) MinPlayers() int { return 2 }

func (m *ClassicMode) MaxPlayers() int { return MaxSessionPlayers }

func (m *ClassicMode) StartRound(cfg Config, number int) *Round {
	words := m.bank.RandomSubset(cfg.Category, ClassicBatchSize)
	return newRound(number, words, time.Duration(cfg.RoundSeconds)*time.Second)
}

// ValidateSubmission requires the word to be one of the round's candidates.
func (m *ClassicMode) ValidateSubmission(word string, round *Round) bool {
	return round.HasWord(word)
}

// ApplySubmission keeps a single current word per player; a resubmission
// replaces the earlier one.
func (m *ClassicMode) ApplySubmission(round *Round, playerID, word string) {
	round.Submissions[playerID] = []string{word}
}

func (m *ClassicMode) IsRoundComplete(round *Round, players []*Player) bool {
	for _, p := range players {
		if p.Eliminated {
			continue
		}
		if len(round.Submissions[p.ID]) == 0 {
			return false
		}
	}
	return true
}

func (m *ClassicMode) ResolveRound(round *Round, players []*Player) {
	deltas := scoring.Resolve(round.Submissions)

	for _, p := range players {
		if p.Eliminated {
			continue
		}
		delta := deltas[p.ID]
		p.Score += delta.Score
		if delta.LoseLife {
			p.Lives--
			if p.Lives <= 0 {
				p.Lives = 0
				p.Eliminated = true
			}
		}
	}

	// Sole survivor takes the win bonus.
	if alive := alivePlayers(players); len(alive) == 1 {
		alive[0].Score += scoring.WinBonus
	}
}

func (m *ClassicMode) IsGameOver(players []*Player) bool {
	return len(alivePlayers(players)) <= 1
}

func (m *ClassicMode) Winner(players []*Player) *Player {
	alive := alivePlayers(players)
	if len(alive) == 1 {
		return alive[0]
	}
	return nil
}
