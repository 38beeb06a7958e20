package game

import (
	"fmt"

	"wordrush/wordbank"
)

// Mode identifiers accepted in Config.Mode.
const (
	ModeClassic  = "classic"
	ModeMatching = "matching"
)

// Mode encapsulates the rule set of a session: how rounds start, when they
// are complete, how submissions are validated and recorded, and how the
// game ends. A Mode instance belongs to exactly one session and is only
// called while that session's lock is held, so implementations may keep
// per-game state without their own synchronization.
type Mode interface {
	Name() string
	MinPlayers() int
	MaxPlayers() int

	// StartRound builds a fresh round with its candidate words and duration.
	StartRound(cfg Config, number int) *Round

	// ValidateSubmission decides whether a normalized, non-empty word is
	// acceptable for the round.
	ValidateSubmission(word string, round *Round) bool

	// ApplySubmission records the word under the mode's recording policy.
	ApplySubmission(round *Round, playerID, word string)

	// IsRoundComplete reports whether every required submission is in.
	IsRoundComplete(round *Round, players []*Player) bool

	// ResolveRound applies scoring and elimination for the finished round.
	ResolveRound(round *Round, players []*Player)

	IsGameOver(players []*Player) bool

	// Winner returns the winning player once the game is over, or nil.
	Winner(players []*Player) *Player
}

// NewMode builds the rule set for a mode identifier. The bank supplies
// candidate words for modes that draw from a category.
func NewMode(name string, bank *wordbank.Bank) (Mode, error) {
	switch name {
	case ModeClassic, "":
		return &ClassicMode{bank: bank}, nil
	case ModeMatching:
		return &MatchingMode{}, nil
	default:
		return nil, fmt.Errorf("unknown game mode %q", name)
	}
}

// ModeNames lists the supported mode identifiers.
func ModeNames() []string {
	return []string{ModeClassic, ModeMatching}
}

func alivePlayers(players []*Player) []*Player {
	alive := make([]*Player, 0, len(players))
	for _, p := range players {
		if !p.Eliminated {
			alive = append(alive, p)
		}
	}
	return alive
}
