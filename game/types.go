package game

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusOpen       Status = "open"        // lobby, accepting joins
	StatusActive     Status = "active"      // a round is running
	StatusRoundEnded Status = "round_ended" // transient, between rounds
	StatusGameEnded  Status = "game_ended"  // terminal
)

// Configuration bounds enforced at session creation.
const (
	MinRoundSeconds   = 10
	MaxRoundSeconds   = 120
	MinLives          = 1
	MaxLives          = 5
	MaxSessionPlayers = 8
)

// Config holds the session settings chosen at lobby creation. It is
// immutable once the session leaves the open state.
type Config struct {
	RoundSeconds int    `json:"round_seconds"`
	MaxPlayers   int    `json:"max_players"`
	Lives        int    `json:"lives"`
	Category     string `json:"category"`
	Mode         string `json:"mode"`
}

// Validate checks the configured ranges. Category fallback is handled by
// the word bank, not here.
func (c Config) Validate() error {
	if c.RoundSeconds < MinRoundSeconds || c.RoundSeconds > MaxRoundSeconds {
		return fmt.Errorf("round_seconds must be between %d and %d", MinRoundSeconds, MaxRoundSeconds)
	}
	if c.Lives < MinLives || c.Lives > MaxLives {
		return fmt.Errorf("lives must be between %d and %d", MinLives, MaxLives)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > MaxSessionPlayers {
		return fmt.Errorf("max_players must be between 2 and %d", MaxSessionPlayers)
	}
	return nil
}

// Player is one participant in a session. Owned by the session; mutated
// only while the session lock is held.
type Player struct {
	ID          string
	Name        string
	Score       int
	Lives       int
	Host        bool
	Eliminated  bool
	CurrentWord string // word held for the active round, cleared on round start
	JoinedAt    time.Time
}

// Round is one timed submission window. A round is never mutated into the
// next one; the mode constructs a fresh Round each time.
type Round struct {
	Number      int
	StartedAt   time.Time
	EndsAt      time.Time
	Words       []string            // candidate words, may be empty
	Submissions map[string][]string // player id -> submitted words
	resolved    bool
}

func newRound(number int, words []string, duration time.Duration) *Round {
	now := time.Now()
	return &Round{
		Number:      number,
		StartedAt:   now,
		EndsAt:      now.Add(duration),
		Words:       words,
		Submissions: make(map[string][]string),
	}
}

// HasWord reports whether the normalized word is in the round's candidate
// list.
func (r *Round) HasWord(word string) bool {
	for _, candidate := range r.Words {
		if candidate == word {
			return true
		}
	}
	return false
}

// Snapshot is a deep copy of a session's state, safe to hand across the
// boundary. It is what gets stored in Redis and broadcast to clients.
type Snapshot struct {
	Code       string           `json:"code"`
	Status     Status           `json:"status"`
	Config     Config           `json:"config"`
	HostID     string           `json:"host_id"`
	WinnerID   string           `json:"winner_id,omitempty"`
	RoundCount int              `json:"round_count"`
	Round      *RoundSnapshot   `json:"round,omitempty"`
	Players    []PlayerSnapshot `json:"players"`
}

type RoundSnapshot struct {
	Number      int                 `json:"number"`
	StartedAt   time.Time           `json:"started_at"`
	EndsAt      time.Time           `json:"ends_at"`
	Words       []string            `json:"words"`
	Submissions map[string][]string `json:"submissions"`
}

type PlayerSnapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Lives       int       `json:"lives"`
	Host        bool      `json:"host"`
	Eliminated  bool      `json:"eliminated"`
	CurrentWord string    `json:"current_word,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Player returns the snapshot entry for a player id, or nil.
func (s *Snapshot) Player(id string) *PlayerSnapshot {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}
