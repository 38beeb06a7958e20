package game

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"wordrush/scoring"
)

func newTestSession(t *testing.T, modeName string, cfg Config) *Session {
	t.Helper()
	mode, err := NewMode(modeName, testBank(t))
	if err != nil {
		t.Fatalf("NewMode(%q) failed: %v", modeName, err)
	}
	return NewSession("test01", cfg, mode)
}

func mustJoin(t *testing.T, s *Session, id, name string) {
	t.Helper()
	if _, err := s.Join(id, name); err != nil {
		t.Fatalf("Join(%s) failed: %v", id, err)
	}
}

func mustStart(t *testing.T, s *Session) {
	t.Helper()
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
}

func mustSubmit(t *testing.T, s *Session, playerID, word string) Snapshot {
	t.Helper()
	snap, err := s.SubmitWord(playerID, word)
	if err != nil {
		t.Fatalf("SubmitWord(%s, %q) failed: %v", playerID, word, err)
	}
	return snap
}

func TestJoinRules(t *testing.T) {
	cfg := testConfig(ModeClassic)
	cfg.MaxPlayers = 2
	s := newTestSession(t, ModeClassic, cfg)

	mustJoin(t, s, "a", "Alice")
	if _, err := s.Join("a", "Alice again"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	mustJoin(t, s, "b", "Bob")
	if _, err := s.Join("c", "Carol"); !errors.Is(err, ErrSessionFull) {
		t.Errorf("expected ErrSessionFull, got %v", err)
	}

	snap := s.Snapshot()
	if snap.HostID != "a" {
		t.Errorf("first joiner should be host, got %q", snap.HostID)
	}

	mustStart(t, s)
	if _, err := s.Join("d", "Dave"); !errors.Is(err, ErrClosed) {
		t.Errorf("joining a running session should fail with ErrClosed, got %v", err)
	}
}

func TestStartRequiresEnoughPlayers(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))

	if _, err := s.Start(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("expected ErrNotEnoughPlayers, got %v", err)
	}

	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)

	snap := s.Snapshot()
	if snap.Status != StatusActive {
		t.Errorf("expected active status, got %s", snap.Status)
	}
	if snap.Round == nil || snap.Round.Number != 1 {
		t.Errorf("expected round 1, got %+v", snap.Round)
	}

	if _, err := s.Start(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("starting twice should fail with ErrInvalidState, got %v", err)
	}
}

func TestLeaveTransfersHost(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustJoin(t, s, "c", "Carol")

	if _, err := s.Leave("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	snap, err := s.Leave("a")
	if err != nil {
		t.Fatalf("Leave(a) failed: %v", err)
	}
	if snap.HostID != "b" {
		t.Errorf("host should transfer to the earliest-joined remaining player, got %q", snap.HostID)
	}
}

func TestLastLeaveTearsDown(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")

	snap, err := s.Leave("a")
	if err != nil {
		t.Fatalf("Leave(a) failed: %v", err)
	}
	if snap.Status != StatusGameEnded {
		t.Errorf("emptied session should be torn down, got status %s", snap.Status)
	}

	var last Event
	for event := range s.Events() {
		last = event
	}
	if last.Type != EventClosed {
		t.Errorf("expected terminal %s event, got %q", EventClosed, last.Type)
	}
}

func TestLeaveBelowMinimumEndsGame(t *testing.T) {
	for _, modeName := range []string{ModeClassic, ModeMatching} {
		t.Run(modeName, func(t *testing.T) {
			cfg := testConfig(modeName)
			cfg.MaxPlayers = 2
			s := newTestSession(t, modeName, cfg)
			mustJoin(t, s, "a", "Alice")
			mustJoin(t, s, "b", "Bob")
			mustStart(t, s)
			mustSubmit(t, s, "a", "cat")

			snap, err := s.Leave("b")
			if err != nil {
				t.Fatalf("Leave(b) failed: %v", err)
			}
			if snap.Status != StatusGameEnded {
				t.Fatalf("one player cannot keep playing alone, expected game over, got status %s", snap.Status)
			}
			if snap.WinnerID != "a" {
				t.Errorf("remaining player should win by forfeit, got %q", snap.WinnerID)
			}

			// The departed round's timer callback finds nothing to resolve.
			if _, ok := s.ExpireRound(1); ok {
				t.Error("expiry after a forfeit must be a no-op")
			}
			if _, err := s.SubmitWord("a", "cat"); !errors.Is(err, ErrInvalidState) {
				t.Errorf("submit after forfeit: expected ErrInvalidState, got %v", err)
			}
		})
	}
}

func TestSubmitValidation(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")

	if _, err := s.SubmitWord("a", "cat"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("submitting before start should fail with ErrInvalidState, got %v", err)
	}

	mustStart(t, s)

	tests := []struct {
		name     string
		playerID string
		word     string
		expected error
	}{
		{name: "unknown player", playerID: "zz", word: "cat", expected: ErrNotFound},
		{name: "empty word", playerID: "a", word: "   ", expected: ErrWordRejected},
		{name: "word outside candidates", playerID: "a", word: "zeppelin", expected: ErrWordRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SubmitWord(tt.playerID, tt.word); !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestClassicDuplicateRound(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)

	mustSubmit(t, s, "a", "cat")
	snap := mustSubmit(t, s, "b", "CAT")

	// Both picked cat: a life and the penalty each, and round 2 begins.
	for _, id := range []string{"a", "b"} {
		p := snap.Player(id)
		if p.Lives != 2 {
			t.Errorf("player %s lives = %d, expected 2", id, p.Lives)
		}
		if p.Score != scoring.DuplicatePenalty {
			t.Errorf("player %s score = %d, expected %d", id, p.Score, scoring.DuplicatePenalty)
		}
	}
	if snap.Status != StatusActive || snap.Round == nil || snap.Round.Number != 2 {
		t.Errorf("expected round 2 active, got status %s round %+v", snap.Status, snap.Round)
	}
	if snap.Player("a").CurrentWord != "" {
		t.Error("held words must be cleared when a new round starts")
	}
}

func TestClassicUniqueRound(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)

	mustSubmit(t, s, "a", "cat")
	snap := mustSubmit(t, s, "b", "dog")

	for _, id := range []string{"a", "b"} {
		p := snap.Player(id)
		if p.Score != scoring.UniqueReward {
			t.Errorf("player %s score = %d, expected %d", id, p.Score, scoring.UniqueReward)
		}
		if p.Lives != 3 {
			t.Errorf("player %s lives = %d, expected untouched 3", id, p.Lives)
		}
	}
}

func TestResubmissionReplaces(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)

	mustSubmit(t, s, "a", "cat")
	mustSubmit(t, s, "a", "dog")
	snap := mustSubmit(t, s, "b", "cat")

	// a ended up on dog, so nothing collided.
	if got := snap.Player("a").Score; got != scoring.UniqueReward {
		t.Errorf("player a score = %d, expected %d", got, scoring.UniqueReward)
	}
	if got := snap.Player("b").Score; got != scoring.UniqueReward {
		t.Errorf("player b score = %d, expected %d", got, scoring.UniqueReward)
	}
}

func TestEliminationAndWinBonus(t *testing.T) {
	cfg := testConfig(ModeClassic)
	cfg.Lives = 1
	s := newTestSession(t, ModeClassic, cfg)
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustJoin(t, s, "c", "Carol")
	mustStart(t, s)

	mustSubmit(t, s, "a", "cat")
	mustSubmit(t, s, "b", "cat")
	snap := mustSubmit(t, s, "c", "dog")

	if snap.Status != StatusGameEnded {
		t.Fatalf("expected game over, got status %s", snap.Status)
	}
	for _, id := range []string{"a", "b"} {
		p := snap.Player(id)
		if !p.Eliminated || p.Lives != 0 {
			t.Errorf("player %s should be eliminated with 0 lives, got %+v", id, p)
		}
	}
	if snap.WinnerID != "c" {
		t.Errorf("expected winner c, got %q", snap.WinnerID)
	}
	if got := snap.Player("c").Score; got != scoring.UniqueReward+scoring.WinBonus {
		t.Errorf("winner score = %d, expected %d", got, scoring.UniqueReward+scoring.WinBonus)
	}

	// Terminal state accepts nothing.
	if _, err := s.Join("d", "Dave"); !errors.Is(err, ErrClosed) {
		t.Errorf("join after game end: expected ErrClosed, got %v", err)
	}
	if _, err := s.SubmitWord("c", "cat"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("submit after game end: expected ErrInvalidState, got %v", err)
	}
	if _, err := s.Start(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("start after game end: expected ErrInvalidState, got %v", err)
	}
}

func TestEliminatedPlayerCannotSubmit(t *testing.T) {
	cfg := testConfig(ModeClassic)
	cfg.Lives = 1
	s := newTestSession(t, ModeClassic, cfg)
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustJoin(t, s, "c", "Carol")
	mustJoin(t, s, "d", "Dave")
	mustStart(t, s)

	// a and b collide and are both eliminated; c and d stay alive, so the
	// game continues into round 2.
	mustSubmit(t, s, "a", "cat")
	mustSubmit(t, s, "b", "cat")
	mustSubmit(t, s, "c", "dog")
	snap := mustSubmit(t, s, "d", "owl")

	if snap.Status != StatusActive || snap.Round.Number != 2 {
		t.Fatalf("expected round 2 active, got status %s round %+v", snap.Status, snap.Round)
	}

	if _, err := s.SubmitWord("a", "cat"); !errors.Is(err, ErrPlayerEliminated) {
		t.Errorf("expected ErrPlayerEliminated, got %v", err)
	}

	// Round 2 completes without the eliminated players.
	mustSubmit(t, s, "c", "cat")
	snap = mustSubmit(t, s, "d", "dog")
	if snap.Round == nil || snap.Round.Number != 3 {
		t.Errorf("round should advance without eliminated players, got %+v", snap.Round)
	}
}

func TestMatchingSessionFlow(t *testing.T) {
	cfg := testConfig(ModeMatching)
	cfg.MaxPlayers = 4 // mode capacity of 2 must win
	s := newTestSession(t, ModeMatching, cfg)
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")

	if _, err := s.Join("c", "Carol"); !errors.Is(err, ErrSessionFull) {
		t.Errorf("matching is two players, expected ErrSessionFull, got %v", err)
	}

	mustStart(t, s)

	// Round 1: no match, no penalty, next round.
	mustSubmit(t, s, "a", "blue")
	snap := mustSubmit(t, s, "b", "red")
	if snap.Status != StatusActive || snap.Round.Number != 2 {
		t.Fatalf("mismatch should start round 2, got status %s round %+v", snap.Status, snap.Round)
	}
	if got := snap.Player("a").Score; got != 0 {
		t.Errorf("mismatch must not change scores, got %d", got)
	}

	// Round 2: normalized match ends the game.
	mustSubmit(t, s, "a", "Green ")
	snap = mustSubmit(t, s, "b", "green")
	if snap.Status != StatusGameEnded {
		t.Fatalf("match should end the game, got status %s", snap.Status)
	}
	for _, id := range []string{"a", "b"} {
		if got := snap.Player(id).Score; got != scoring.MatchBonus {
			t.Errorf("player %s score = %d, expected %d", id, got, scoring.MatchBonus)
		}
	}
	if snap.WinnerID != "a" {
		t.Errorf("tie goes to the earliest-joined player, got %q", snap.WinnerID)
	}
}

func TestExpireRound(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)

	mustSubmit(t, s, "a", "cat")

	snap, ok := s.ExpireRound(1)
	if !ok {
		t.Fatal("expiry of the current round should resolve it")
	}
	if snap.Status != StatusActive || snap.Round.Number != 2 {
		t.Fatalf("expected round 2 after expiry, got status %s round %+v", snap.Status, snap.Round)
	}
	if got := snap.Player("a").Score; got != scoring.UniqueReward {
		t.Errorf("submitted word still scores on expiry, got %d", got)
	}
	if got := snap.Player("b").Score; got != 0 {
		t.Errorf("absent submission contributes nothing, got %d", got)
	}
	if got := snap.Player("b").Lives; got != 3 {
		t.Errorf("absent submission costs no life, got %d", got)
	}

	// A stale expiry for the already-resolved round is a no-op.
	if _, ok := s.ExpireRound(1); ok {
		t.Error("stale expiry must not resolve anything")
	}
}

func TestConcurrentSubmissionsResolveOnce(t *testing.T) {
	cfg := testConfig(ModeClassic)
	cfg.MaxPlayers = 4
	s := newTestSession(t, ModeClassic, cfg)

	ids := []string{"a", "b", "c", "d"}
	for i, id := range ids {
		mustJoin(t, s, id, fmt.Sprintf("Player %d", i+1))
	}
	mustStart(t, s)

	// All distinct words, submitted concurrently with concurrent stale
	// expiry signals racing them.
	words := map[string]string{"a": "cat", "b": "dog", "c": "owl", "d": "fox"}
	var wg sync.WaitGroup
	for id, word := range words {
		wg.Add(1)
		go func(id, word string) {
			defer wg.Done()
			if _, err := s.SubmitWord(id, word); err != nil {
				t.Errorf("SubmitWord(%s) failed: %v", id, err)
			}
		}(id, word)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ExpireRound(1)
		}()
	}
	wg.Wait()

	// Round 1 resolves exactly once, either by the last submission or by
	// the first expiry to land; submissions that lost the race count
	// toward the following round instead.
	snap := s.Snapshot()
	if snap.Status != StatusActive || snap.Round == nil || snap.Round.Number < 2 {
		t.Fatalf("expected play to have advanced past round 1, got status %s round %+v", snap.Status, snap.Round)
	}
	for _, id := range ids {
		p := snap.Player(id)
		// Scored exactly once: either as a submission before resolution or
		// not at all if an expiry won the race first.
		if p.Score != scoring.UniqueReward && p.Score != 0 {
			t.Errorf("player %s score = %d, expected 0 or %d", id, p.Score, scoring.UniqueReward)
		}
		if p.Lives != 3 {
			t.Errorf("player %s lives = %d, expected 3", id, p.Lives)
		}
	}
}

func TestDroppedEventKeepsResolvedRound(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)

	// Fill the outbound buffer without draining it; every pair of unique
	// submissions completes one round.
	for len(s.events) < eventBuffer {
		mustSubmit(t, s, "a", "cat")
		mustSubmit(t, s, "b", "dog")
	}

	// This round resolves against a full buffer, so its event is dropped.
	mustSubmit(t, s, "a", "cat")
	mustSubmit(t, s, "b", "dog")

	// With one frame drained, the next event must carry the resolved round
	// that the dropped frame could not deliver.
	<-s.Events()
	snap := mustSubmit(t, s, "a", "cat")
	want := snap.Round.Number - 1

	s.Close()
	var last Event
	for event := range s.Events() {
		last = event
	}
	if last.Type != EventStateChanged {
		t.Fatalf("last buffered event type = %q, expected %s", last.Type, EventStateChanged)
	}
	if last.Resolved == nil || last.Resolved.Number != want {
		t.Errorf("expected resolved round %d on the next delivered event, got %+v", want, last.Resolved)
	}
}

func TestEventsAreOrderedSnapshots(t *testing.T) {
	s := newTestSession(t, ModeClassic, testConfig(ModeClassic))
	mustJoin(t, s, "a", "Alice")
	mustJoin(t, s, "b", "Bob")
	mustStart(t, s)
	mustSubmit(t, s, "a", "cat")
	mustSubmit(t, s, "b", "dog")
	s.Close()

	var events []Event
	for event := range s.Events() {
		events = append(events, event)
	}

	if len(events) != 6 {
		t.Fatalf("expected 6 events (2 joins, start, 2 submissions, close), got %d", len(events))
	}
	for i, event := range events[:5] {
		if event.Type != EventStateChanged {
			t.Errorf("event %d type = %q, expected %s", i, event.Type, EventStateChanged)
		}
	}
	if events[5].Type != EventClosed {
		t.Errorf("last event type = %q, expected %s", events[5].Type, EventClosed)
	}

	// The second submission resolved round 1; its event must carry the
	// resolved round with both words.
	resolved := events[4].Resolved
	if resolved == nil || resolved.Number != 1 {
		t.Fatalf("expected resolved round 1 on the final submission event, got %+v", resolved)
	}
	if len(resolved.Submissions) != 2 {
		t.Errorf("resolved round should carry both submissions, got %v", resolved.Submissions)
	}
}
