package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"wordrush/game"
	"wordrush/models"
	"wordrush/scoring"
	"wordrush/wordbank"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// snapshotTTL bounds how long a finished or abandoned session snapshot
// lives in Redis.
const snapshotTTL = 2 * time.Hour

// SessionService owns the live game sessions. The game core is the single
// writer for gameplay state; this service is the sync boundary around it:
// it hands inbound actions to the core, and drains each session's event
// channel into Redis snapshots, Postgres rows, websocket broadcasts and
// the round-expiry timer.
type SessionService struct {
	db    *gorm.DB
	redis *redis.Client
	bank  *wordbank.Bank
	hub   *Hub

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

type liveSession struct {
	session *game.Session
	dbID    uint

	timerMu    sync.Mutex
	timer      *time.Timer
	timerRound int

	finishOnce sync.Once
}

func NewSessionService(db *gorm.DB, redisClient *redis.Client, bank *wordbank.Bank) *SessionService {
	return &SessionService{
		db:       db,
		redis:    redisClient,
		bank:     bank,
		sessions: make(map[string]*liveSession),
	}
}

// AttachHub wires the websocket hub in. Called once at startup, before any
// session exists.
func (s *SessionService) AttachHub(hub *Hub) {
	s.hub = hub
}

type CreateSessionRequest struct {
	Mode         string `json:"mode"`
	Category     string `json:"category" binding:"required"`
	RoundSeconds int    `json:"round_seconds" binding:"required"`
	MaxPlayers   int    `json:"max_players" binding:"required"`
	Lives        int    `json:"lives" binding:"required"`
}

type JoinSessionRequest struct {
	Name string `json:"name" binding:"required"`
}

type SubmitWordRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Word     string `json:"word" binding:"required"`
}

// JoinResult is what a joining player needs to keep playing: their id and
// the lobby as it looked right after the join.
type JoinResult struct {
	PlayerID string        `json:"player_id"`
	Session  game.Snapshot `json:"session"`
}

// CreateSession opens a new lobby for the given user and starts its event
// consumer. The creator joins through JoinSession like everyone else; the
// first player to join becomes host.
func (s *SessionService) CreateSession(userID uint, req *CreateSessionRequest) (game.Snapshot, error) {
	cfg := game.Config{
		RoundSeconds: req.RoundSeconds,
		MaxPlayers:   req.MaxPlayers,
		Lives:        req.Lives,
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		Mode:         strings.ToLower(strings.TrimSpace(req.Mode)),
	}
	if cfg.Mode == "" {
		cfg.Mode = game.ModeClassic
	}
	if err := cfg.Validate(); err != nil {
		return game.Snapshot{}, err
	}

	bank := s.resolveBank(userID, cfg.Category)
	mode, err := game.NewMode(cfg.Mode, bank)
	if err != nil {
		return game.Snapshot{}, err
	}

	code := s.generateCode()

	record := models.GameSession{
		UserID:       userID,
		Code:         code,
		Mode:         cfg.Mode,
		Category:     cfg.Category,
		RoundSeconds: cfg.RoundSeconds,
		MaxPlayers:   cfg.MaxPlayers,
		Lives:        cfg.Lives,
		Status:       string(game.StatusOpen),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return game.Snapshot{}, err
	}

	session := game.NewSession(code, cfg, mode)
	live := &liveSession{session: session, dbID: record.ID}

	s.mu.Lock()
	s.sessions[code] = live
	s.mu.Unlock()

	go s.consumeEvents(live)

	snapshot := session.Snapshot()
	if err := s.storeSnapshot(snapshot); err != nil {
		log.Printf("Failed to store session snapshot in Redis: %v", err)
	}

	log.Printf("Session %s created (mode=%s, category=%s)", code, cfg.Mode, cfg.Category)
	return snapshot, nil
}

// resolveBank returns the word bank for a session. A category unknown to
// the static bank is looked up among the creator's custom categories and
// merged in; failing that, the bank's default-category fallback applies.
func (s *SessionService) resolveBank(userID uint, category string) *wordbank.Bank {
	if category == "" || s.bank.HasCategory(category) {
		return s.bank
	}

	var custom models.Category
	err := s.db.Where("user_id = ? AND LOWER(name) = ?", userID, category).
		Preload("Words", func(db *gorm.DB) *gorm.DB {
			return db.Order("category_words.order")
		}).
		First(&custom).Error
	if err != nil {
		log.Printf("Category %q not found for user %d, falling back to %q", category, userID, wordbank.DefaultCategory)
		return s.bank
	}

	words := make([]string, len(custom.Words))
	for i, w := range custom.Words {
		words[i] = w.Word
	}
	return s.bank.WithCategory(category, words)
}

// JoinSession adds a player to an open lobby and persists the roster row.
func (s *SessionService) JoinSession(code string, req *JoinSessionRequest) (*JoinResult, error) {
	live, err := s.liveSession(code)
	if err != nil {
		return nil, err
	}

	playerID := s.generatePlayerID()
	snapshot, err := live.session.Join(playerID, req.Name)
	if err != nil {
		return nil, err
	}

	player := snapshot.Player(playerID)
	record := models.SessionPlayer{
		SessionID: live.dbID,
		PlayerID:  playerID,
		Name:      player.Name,
		Lives:     player.Lives,
		Host:      player.Host,
		JoinedAt:  player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("Failed to persist player %s in session %s: %v", playerID, snapshot.Code, err)
	}

	return &JoinResult{PlayerID: playerID, Session: snapshot}, nil
}

// LeaveSession removes a player; the core handles host transfer and
// teardown of an emptied lobby.
func (s *SessionService) LeaveSession(code, playerID string) (game.Snapshot, error) {
	live, err := s.liveSession(code)
	if err != nil {
		return game.Snapshot{}, err
	}
	return live.session.Leave(playerID)
}

// StartSession begins round 1. Only the session's creator may start it.
func (s *SessionService) StartSession(code string, userID uint) (game.Snapshot, error) {
	live, err := s.liveSession(code)
	if err != nil {
		return game.Snapshot{}, err
	}
	if err := s.checkOwnership(live.dbID, userID); err != nil {
		return game.Snapshot{}, err
	}

	snapshot, err := live.session.Start()
	if err != nil {
		return snapshot, err
	}

	now := time.Now()
	if err := s.db.Model(&models.GameSession{}).Where("id = ?", live.dbID).
		Update("started_at", &now).Error; err != nil {
		log.Printf("Failed to record start time for session %s: %v", code, err)
	}

	return snapshot, nil
}

// SubmitWord forwards a player's word to the core, which also advances the
// round if this submission completes it.
func (s *SessionService) SubmitWord(code string, req *SubmitWordRequest) (game.Snapshot, error) {
	live, err := s.liveSession(code)
	if err != nil {
		return game.Snapshot{}, err
	}
	return live.session.SubmitWord(req.PlayerID, req.Word)
}

// GetSessionState returns the latest snapshot, preferring the Redis copy
// so finished sessions stay readable after the live session is gone.
func (s *SessionService) GetSessionState(code string) (*game.Snapshot, error) {
	code = strings.ToLower(code)

	if snapshot := s.loadSnapshot(code); snapshot != nil {
		return snapshot, nil
	}

	live, err := s.liveSession(code)
	if err != nil {
		return nil, err
	}
	snapshot := live.session.Snapshot()
	if err := s.storeSnapshot(snapshot); err != nil {
		log.Printf("Failed to store snapshot for session %s: %v", code, err)
	}
	return &snapshot, nil
}

// Categories lists the joinable static categories plus the user's custom
// ones.
func (s *SessionService) Categories(userID uint) []string {
	names := s.bank.Categories()

	var custom []models.Category
	if err := s.db.Where("user_id = ?", userID).Find(&custom).Error; err == nil {
		for _, c := range custom {
			names = append(names, strings.ToLower(c.Name))
		}
	}
	sort.Strings(names)
	return names
}

func (s *SessionService) liveSession(code string) (*liveSession, error) {
	code = strings.ToLower(code)
	s.mu.RLock()
	live, ok := s.sessions[code]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", code, game.ErrNotFound)
	}
	return live, nil
}

func (s *SessionService) checkOwnership(sessionID, userID uint) error {
	var record models.GameSession
	if err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&record).Error; err != nil {
		return errors.New("unauthorized to control this session")
	}
	return nil
}

// consumeEvents drains one session's ordered event channel: snapshot to
// Redis, broadcast over the hub, mirror to Postgres, and keep the round
// expiry timer aligned with the round the snapshot shows. Exits when the
// core closes the channel.
func (s *SessionService) consumeEvents(live *liveSession) {
	code := live.session.Code()

	for event := range live.session.Events() {
		if err := s.storeSnapshot(event.Session); err != nil {
			log.Printf("Failed to store snapshot for session %s: %v", code, err)
		}
		if s.hub != nil {
			s.hub.BroadcastToSession(code, "session_state", event.Session)
		}

		s.syncDatabase(live, event)

		if event.Resolved != nil {
			s.archiveRound(live, event.Resolved)
		}

		switch {
		case event.Session.Status == game.StatusActive && event.Session.Round != nil:
			s.armTimer(live, event.Session.Round)
		default:
			s.stopTimer(live)
		}

		if event.Session.Status == game.StatusGameEnded {
			s.finishSession(live, event.Session)
		}
	}

	s.stopTimer(live)
	s.mu.Lock()
	delete(s.sessions, code)
	s.mu.Unlock()
	log.Printf("Session %s closed", code)
}

// armTimer schedules round expiry. Re-arming for the same round is a
// no-op; a new round replaces the previous timer.
func (s *SessionService) armTimer(live *liveSession, round *game.RoundSnapshot) {
	live.timerMu.Lock()
	defer live.timerMu.Unlock()

	if live.timerRound == round.Number && live.timer != nil {
		return
	}
	if live.timer != nil {
		live.timer.Stop()
	}

	number := round.Number
	live.timerRound = number
	live.timer = time.AfterFunc(time.Until(round.EndsAt), func() {
		// Stale expiries are rejected by the round-number check inside
		// the core, under the same lock that serializes submissions.
		if _, ok := live.session.ExpireRound(number); ok {
			log.Printf("Round %d expired in session %s", number, live.session.Code())
		}
	})
}

func (s *SessionService) stopTimer(live *liveSession) {
	live.timerMu.Lock()
	defer live.timerMu.Unlock()
	if live.timer != nil {
		live.timer.Stop()
		live.timer = nil
	}
}

// syncDatabase mirrors the snapshot's session status and player rows.
func (s *SessionService) syncDatabase(live *liveSession, event game.Event) {
	snap := event.Session

	updates := map[string]interface{}{
		"status":        string(snap.Status),
		"rounds_played": snap.RoundCount,
	}
	if err := s.db.Model(&models.GameSession{}).Where("id = ?", live.dbID).
		Updates(updates).Error; err != nil {
		log.Printf("Failed to sync session %s: %v", snap.Code, err)
	}

	for _, p := range snap.Players {
		err := s.db.Model(&models.SessionPlayer{}).
			Where("session_id = ? AND player_id = ?", live.dbID, p.ID).
			Updates(map[string]interface{}{
				"score":      p.Score,
				"lives":      p.Lives,
				"host":       p.Host,
				"eliminated": p.Eliminated,
			}).Error
		if err != nil {
			log.Printf("Failed to sync player %s in session %s: %v", p.ID, snap.Code, err)
		}
	}
}

func (s *SessionService) archiveRound(live *liveSession, round *game.RoundSnapshot) {
	submissions, err := json.Marshal(round.Submissions)
	if err != nil {
		log.Printf("Failed to marshal submissions for round %d: %v", round.Number, err)
		return
	}

	duplicateSet := scoring.Duplicates(round.Submissions)
	duplicates := make([]string, 0, len(duplicateSet))
	for word := range duplicateSet {
		duplicates = append(duplicates, word)
	}
	sort.Strings(duplicates)
	duplicatesJSON, _ := json.Marshal(duplicates)

	record := models.RoundResult{
		SessionID:   live.dbID,
		Number:      round.Number,
		Submissions: string(submissions),
		Duplicates:  string(duplicatesJSON),
		StartedAt:   round.StartedAt,
		EndedAt:     time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("Failed to archive round %d: %v", round.Number, err)
	}
}

func (s *SessionService) finishSession(live *liveSession, snap game.Snapshot) {
	live.finishOnce.Do(func() { s.finalizeSession(live, snap) })
}

func (s *SessionService) finalizeSession(live *liveSession, snap game.Snapshot) {
	now := time.Now()
	updates := map[string]interface{}{"ended_at": &now}
	if winner := snap.Player(snap.WinnerID); winner != nil {
		updates["winner_name"] = winner.Name
	}
	if err := s.db.Model(&models.GameSession{}).Where("id = ?", live.dbID).
		Updates(updates).Error; err != nil {
		log.Printf("Failed to finalize session %s: %v", snap.Code, err)
	}

	// Frees the consumer goroutine once the terminal event is drained.
	live.session.Close()
}

func (s *SessionService) storeSnapshot(snapshot game.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	if err := s.redis.Set(context.Background(), "session:"+snapshot.Code, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

func (s *SessionService) loadSnapshot(code string) *game.Snapshot {
	data, err := s.redis.Get(context.Background(), "session:"+code).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting session %s: %v", code, err)
		}
		return nil
	}

	var snapshot game.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		log.Printf("Failed to unmarshal snapshot for session %s: %v", code, err)
		return nil
	}
	return &snapshot
}

func (s *SessionService) generateCode() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:6]
}

func (s *SessionService) generatePlayerID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
