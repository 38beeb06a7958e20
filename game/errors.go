package game

import "errors"

// Error kinds returned by session operations. The boundary maps these to
// HTTP responses; none of them indicate an internal fault.
var (
	ErrClosed           = errors.New("session is not accepting players")
	ErrSessionFull      = errors.New("session is full")
	ErrDuplicateID      = errors.New("player id already in session")
	ErrNotFound         = errors.New("not found")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrInvalidState     = errors.New("operation not valid in current session state")
	ErrPlayerEliminated = errors.New("player has been eliminated")
	ErrWordRejected     = errors.New("word rejected")
)
