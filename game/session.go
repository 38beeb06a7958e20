package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"wordrush/scoring"
)

// Event types emitted on a session's event channel.
const (
	EventStateChanged = "state_changed"
	EventClosed       = "session_closed"
)

// Event carries a full session snapshot to the sync boundary. Events for
// one session are emitted in operation order. When the operation resolved
// a round, Resolved holds that round's final state, including every
// submission that counted.
type Event struct {
	Type     string         `json:"type"`
	Session  Snapshot       `json:"session"`
	Resolved *RoundSnapshot `json:"resolved_round,omitempty"`
}

const eventBuffer = 64

// Session is the authoritative state machine for one game. Every mutating
// operation runs under the session lock, so round completion, scoring and
// elimination always observe a fully-applied set of submissions. Sessions
// are independent of each other; there is no cross-session shared state.
type Session struct {
	mu sync.Mutex

	code       string
	cfg        Config
	mode       Mode
	status     Status
	players    []*Player // join order
	round      *Round
	roundCount int
	winnerID   string
	resolved   *RoundSnapshot // pending for the next emitted event

	events chan Event
	closed bool
}

// NewSession creates an open lobby with the given code, validated config
// and rule set.
func NewSession(code string, cfg Config, mode Mode) *Session {
	return &Session{
		code:   code,
		cfg:    cfg,
		mode:   mode,
		status: StatusOpen,
		events: make(chan Event, eventBuffer),
	}
}

// Code returns the session's join code.
func (s *Session) Code() string { return s.code }

// Events returns the ordered outbound event channel. The channel is closed
// when the session is torn down; the consumer must drain it promptly.
func (s *Session) Events() <-chan Event { return s.events }

// Join adds a player to an open lobby. The first player to join becomes
// host.
func (s *Session) Join(id, name string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOpen {
		return s.snapshotLocked(), ErrClosed
	}
	capacity := s.cfg.MaxPlayers
	if modeMax := s.mode.MaxPlayers(); modeMax < capacity {
		capacity = modeMax
	}
	if len(s.players) >= capacity {
		return s.snapshotLocked(), ErrSessionFull
	}
	for _, p := range s.players {
		if p.ID == id {
			return s.snapshotLocked(), ErrDuplicateID
		}
	}

	player := &Player{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Lives:    s.cfg.Lives,
		Host:     len(s.players) == 0,
		JoinedAt: time.Now(),
	}
	s.players = append(s.players, player)

	s.emitLocked(EventStateChanged)
	return s.snapshotLocked(), nil
}

// Leave removes a player. If the host leaves, the earliest-joined
// remaining player becomes host. When the last player leaves the session
// is torn down.
func (s *Session) Leave(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusGameEnded {
		return s.snapshotLocked(), ErrInvalidState
	}

	idx := -1
	for i, p := range s.players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.snapshotLocked(), fmt.Errorf("player %s: %w", id, ErrNotFound)
	}

	wasHost := s.players[idx].Host
	s.players = append(s.players[:idx], s.players[idx+1:]...)

	if len(s.players) == 0 {
		s.teardownLocked()
		return s.snapshotLocked(), nil
	}
	if wasHost {
		s.players[0].Host = true
	}

	// A running game cannot continue below the mode's minimum roster; the
	// remaining player wins by forfeit.
	if s.status == StatusActive && len(s.players) < s.mode.MinPlayers() {
		if winner := s.mode.Winner(s.players); winner != nil {
			s.winnerID = winner.ID
		}
		s.round = nil
		s.status = StatusGameEnded
		s.emitLocked(EventStateChanged)
		return s.snapshotLocked(), nil
	}

	// A departed player must not block round completion or count toward
	// duplicates.
	if s.round != nil {
		delete(s.round.Submissions, id)
	}
	if s.status == StatusActive {
		s.advanceLocked()
	}

	s.emitLocked(EventStateChanged)
	return s.snapshotLocked(), nil
}

// Start moves an open lobby into its first round.
func (s *Session) Start() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOpen {
		return s.snapshotLocked(), ErrInvalidState
	}
	if len(s.players) < s.mode.MinPlayers() {
		return s.snapshotLocked(), ErrNotEnoughPlayers
	}

	s.startRoundLocked()
	s.emitLocked(EventStateChanged)
	return s.snapshotLocked(), nil
}

// SubmitWord validates and records a word for the active round and
// advances the session if the submission completes the round.
func (s *Session) SubmitWord(playerID, word string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive || s.round == nil {
		return s.snapshotLocked(), ErrInvalidState
	}
	player := s.playerLocked(playerID)
	if player == nil {
		return s.snapshotLocked(), fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	if player.Eliminated {
		return s.snapshotLocked(), ErrPlayerEliminated
	}

	word = scoring.Normalize(word)
	if word == "" {
		return s.snapshotLocked(), fmt.Errorf("empty word: %w", ErrWordRejected)
	}
	if !s.mode.ValidateSubmission(word, s.round) {
		return s.snapshotLocked(), fmt.Errorf("%q: %w", word, ErrWordRejected)
	}

	s.mode.ApplySubmission(s.round, playerID, word)
	player.CurrentWord = word

	s.advanceLocked()
	s.emitLocked(EventStateChanged)
	return s.snapshotLocked(), nil
}

// ExpireRound resolves the round with the given number as complete,
// regardless of how many submissions arrived. A stale call, where the
// round already resolved through submissions, is a no-op returning false.
func (s *Session) ExpireRound(number int) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive || s.round == nil || s.round.Number != number {
		return s.snapshotLocked(), false
	}

	s.resolveRoundLocked()
	s.emitLocked(EventStateChanged)
	return s.snapshotLocked(), true
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close tears the session down and closes the event channel. Safe to call
// more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
}

func (s *Session) playerLocked(id string) *Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) startRoundLocked() {
	s.roundCount++
	s.round = s.mode.StartRound(s.cfg, s.roundCount)
	for _, p := range s.players {
		p.CurrentWord = ""
	}
	s.status = StatusActive
}

// advanceLocked resolves the round if the mode's completion predicate
// holds. Called after every mutation that can complete a round.
func (s *Session) advanceLocked() {
	if s.round == nil || !s.mode.IsRoundComplete(s.round, s.players) {
		return
	}
	s.resolveRoundLocked()
}

// resolveRoundLocked applies scoring and elimination exactly once, then
// either starts the next round or finalizes the game. Double resolution
// of one round is a programming fault, not a reachable state.
func (s *Session) resolveRoundLocked() {
	if s.round.resolved {
		panic(fmt.Sprintf("session %s: round %d resolved twice", s.code, s.round.Number))
	}
	s.round.resolved = true

	s.mode.ResolveRound(s.round, s.players)
	s.status = StatusRoundEnded
	s.resolved = roundSnapshot(s.round)

	if s.mode.IsGameOver(s.players) {
		if winner := s.mode.Winner(s.players); winner != nil {
			s.winnerID = winner.ID
		}
		s.round = nil
		s.status = StatusGameEnded
		return
	}

	s.startRoundLocked()
}

func (s *Session) teardownLocked() {
	if s.closed {
		return
	}
	s.status = StatusGameEnded
	s.round = nil
	s.emitLocked(EventClosed)
	s.closed = true
	close(s.events)
}

// emitLocked queues an event without blocking. Snapshots are full-state,
// so a consumer that fell behind only misses intermediate frames; channel
// close remains the terminal signal.
func (s *Session) emitLocked(eventType string) {
	if s.closed {
		return
	}
	event := Event{Type: eventType, Session: s.snapshotLocked(), Resolved: s.resolved}
	select {
	case s.events <- event:
		s.resolved = nil
	default:
		// Buffer full: the frame is lost, but a pending resolved round
		// stays queued and rides out on the next delivered event.
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Code:       s.code,
		Status:     s.status,
		Config:     s.cfg,
		WinnerID:   s.winnerID,
		RoundCount: s.roundCount,
		Players:    make([]PlayerSnapshot, len(s.players)),
	}

	for i, p := range s.players {
		if p.Host {
			snap.HostID = p.ID
		}
		snap.Players[i] = PlayerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			Lives:       p.Lives,
			Host:        p.Host,
			Eliminated:  p.Eliminated,
			CurrentWord: p.CurrentWord,
			JoinedAt:    p.JoinedAt,
		}
	}

	if s.round != nil {
		snap.Round = roundSnapshot(s.round)
	}

	return snap
}

func roundSnapshot(r *Round) *RoundSnapshot {
	words := make([]string, len(r.Words))
	copy(words, r.Words)
	subs := make(map[string][]string, len(r.Submissions))
	for id, list := range r.Submissions {
		cp := make([]string, len(list))
		copy(cp, list)
		subs[id] = cp
	}
	return &RoundSnapshot{
		Number:      r.Number,
		StartedAt:   r.StartedAt,
		EndsAt:      r.EndsAt,
		Words:       words,
		Submissions: subs,
	}
}
